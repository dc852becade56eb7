package assessment

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

// setField assigns value to q. Values may be typed Go values or whatever a
// JSON decoder produced for them.
func setField(q *model.Question, field Field, value any) error {
	switch field {
	case FieldText:
		text, ok := value.(string)
		if !ok {
			return badValue(field, value)
		}
		q.Text = text

	case FieldType:
		var typ model.QuestionType
		switch v := value.(type) {
		case model.QuestionType:
			typ = v
		case string:
			typ = model.QuestionType(v)
		}
		if !typ.Valid() {
			return badValue(field, value)
		}
		q.Type = typ

	case FieldRequired:
		required, ok := value.(bool)
		if !ok {
			return badValue(field, value)
		}
		q.Required = required

	case FieldOptions:
		options, ok := toStrings(value)
		if !ok {
			return badValue(field, value)
		}
		q.Options = options

	case FieldMin, FieldMax, FieldMaxLength:
		limit, err := toLimit(value)
		if err == nil && !limit.Finite() {
			err = errors.Errorf("%v is not a finite number", limit.Value)
		}
		if err != nil {
			return errors.Wrapf(model.ErrValidationFailed, "%s: %v", field, err)
		}
		switch field {
		case FieldMin:
			q.Min = limit
		case FieldMax:
			q.Max = limit
		default:
			q.MaxLength = limit
		}

	case FieldConditional:
		cond, ok := toConditional(value)
		if !ok {
			return badValue(field, value)
		}
		if cond != nil && cond.QuestionID != "" && cond.QuestionID == q.ID {
			return errors.Wrapf(model.ErrValidationFailed, "question %s cannot depend on itself", q.ID)
		}
		q.Conditional = cond

	default:
		return errors.Wrapf(model.ErrValidationFailed, "unknown field %q", field)
	}
	return nil
}

func badValue(field Field, value any) error {
	return errors.Wrapf(model.ErrValidationFailed, "invalid value %v (%T) for field %s", value, value, field)
}

func toStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return append(make([]string, 0, len(v)), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// toLimit returns nil (absent) for a nil value.
func toLimit(value any) (*model.Limit, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *model.Limit:
		if v == nil {
			return nil, nil
		}
		c := *v
		return &c, nil
	case model.Limit:
		return &v, nil
	case float64:
		return model.NewLimit(v), nil
	case int:
		return model.NewLimit(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return model.NewLimit(f), nil
	case string:
		l := model.EmptyLimit()
		if err := l.Parse(v); err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, errors.Errorf("unsupported limit %v (%T)", value, value)
	}
}

func toConditional(value any) (*model.Conditional, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case *model.Conditional:
		if v == nil {
			return nil, true
		}
		c := *v
		return &c, true
	case model.Conditional:
		return &v, true
	case map[string]any:
		c := &model.Conditional{}
		if id, ok := v["questionId"]; ok {
			if c.QuestionID, ok = id.(string); !ok {
				return nil, false
			}
		}
		if rv, ok := v["requiredValue"]; ok {
			switch x := rv.(type) {
			case string:
				c.RequiredValue = x
			case float64:
				c.RequiredValue = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				return nil, false
			}
		}
		return c, true
	default:
		return nil, false
	}
}
