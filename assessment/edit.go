// Package assessment holds the logic behind the assessment builder and its
// live preview: structural edits, conditional visibility and answer
// validation. Everything here is pure; persistence lives in package
// database.
package assessment

import (
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

const (
	DefaultSectionTitle = "New Section"
	DefaultQuestionText = "New Question"
	DefaultOptionText   = "New Option"
	DefaultQuestionType = model.ShortText
)

// Field names a question attribute that UpdateQuestion can set.
type Field string

const (
	FieldText        Field = "text"
	FieldType        Field = "type"
	FieldRequired    Field = "required"
	FieldOptions     Field = "options"
	FieldMin         Field = "min"
	FieldMax         Field = "max"
	FieldMaxLength   Field = "maxLength"
	FieldConditional Field = "conditional"
)

var newID = func() string {
	return uuid.Must(uuid.NewV4()).String()
}

func outOfRange(what string, i, n int) error {
	return errors.Wrapf(model.ErrPreconditionFailed, "%s index %d out of range (len %d)", what, i, n)
}

func SetTitle(s model.Structure, title string) model.Structure {
	out := s.Clone()
	out.Title = title
	return out
}

func AddSection(s model.Structure) model.Structure {
	out := s.Clone()
	out.Sections = append(out.Sections, model.Section{
		ID:        newID(),
		Title:     DefaultSectionTitle,
		Questions: []model.Question{},
	})
	return out
}

func DeleteSection(s model.Structure, si int) (model.Structure, error) {
	if si < 0 || si >= len(s.Sections) {
		return s, outOfRange("section", si, len(s.Sections))
	}
	out := s.Clone()
	out.Sections = append(out.Sections[:si:si], out.Sections[si+1:]...)
	return out, nil
}

func SetSectionTitle(s model.Structure, si int, title string) (model.Structure, error) {
	return mutateSection(s, si, func(sec *model.Section) error {
		sec.Title = title
		return nil
	})
}

// AddQuestion appends a question that inherits the type of the section's
// last question.
func AddQuestion(s model.Structure, si int) (model.Structure, error) {
	return mutateSection(s, si, func(sec *model.Section) error {
		typ := DefaultQuestionType
		if n := len(sec.Questions); n > 0 {
			typ = sec.Questions[n-1].Type
		}
		q := model.Question{
			ID:   newID(),
			Type: typ,
			Text: DefaultQuestionText,
		}
		if typ == model.Numeric {
			q.Min = model.EmptyLimit()
			q.Max = model.EmptyLimit()
		}
		sec.Questions = append(sec.Questions, q)
		return nil
	})
}

func DeleteQuestion(s model.Structure, si, qi int) (model.Structure, error) {
	return mutateSection(s, si, func(sec *model.Section) error {
		if qi < 0 || qi >= len(sec.Questions) {
			return outOfRange("question", qi, len(sec.Questions))
		}
		sec.Questions = append(sec.Questions[:qi:qi], sec.Questions[qi+1:]...)
		return nil
	})
}

// UpdateQuestion sets a single field. Switching the type to numeric adds
// empty min/max bounds unless they are already there.
func UpdateQuestion(s model.Structure, si, qi int, field Field, value any) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if err := setField(q, field, value); err != nil {
			return err
		}
		if field == FieldType && q.Type == model.Numeric {
			if q.Min == nil {
				q.Min = model.EmptyLimit()
			}
			if q.Max == nil {
				q.Max = model.EmptyLimit()
			}
		}
		return nil
	})
}

func AddOption(s model.Structure, si, qi int) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if q.Options == nil {
			q.Options = []string{}
		}
		q.Options = append(q.Options, DefaultOptionText)
		return nil
	})
}

func UpdateOption(s model.Structure, si, qi, oi int, value string) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if oi < 0 || oi >= len(q.Options) {
			return outOfRange("option", oi, len(q.Options))
		}
		q.Options[oi] = value
		return nil
	})
}

// DeleteOption removes an option. Removing the last one leaves an empty,
// non-nil list.
func DeleteOption(s model.Structure, si, qi, oi int) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if oi < 0 || oi >= len(q.Options) {
			return outOfRange("option", oi, len(q.Options))
		}
		q.Options = append(q.Options[:oi:oi], q.Options[oi+1:]...)
		return nil
	})
}

// ToggleConditional attaches an empty condition or removes the field
// entirely. Turning it on keeps a condition that is already there.
func ToggleConditional(s model.Structure, si, qi int, on bool) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		switch {
		case !on:
			q.Conditional = nil
		case q.Conditional == nil:
			q.Conditional = &model.Conditional{}
		}
		return nil
	})
}

// SetConditionalSource points the question's condition at another
// question of the same structure.
func SetConditionalSource(s model.Structure, si, qi int, questionID string) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if questionID == q.ID {
			return errors.Wrapf(model.ErrValidationFailed, "question %s cannot depend on itself", q.ID)
		}
		if questionID != "" && !hasQuestion(s, questionID) {
			return errors.Wrapf(model.ErrValidationFailed, "unknown question %s", questionID)
		}
		if q.Conditional == nil {
			q.Conditional = &model.Conditional{}
		}
		q.Conditional.QuestionID = questionID
		return nil
	})
}

func SetConditionalValue(s model.Structure, si, qi int, value string) (model.Structure, error) {
	return mutateQuestion(s, si, qi, func(q *model.Question) error {
		if q.Conditional == nil {
			q.Conditional = &model.Conditional{}
		}
		q.Conditional.RequiredValue = value
		return nil
	})
}

func mutateSection(s model.Structure, si int, fn func(*model.Section) error) (model.Structure, error) {
	if si < 0 || si >= len(s.Sections) {
		return s, outOfRange("section", si, len(s.Sections))
	}
	out := s.Clone()
	if err := fn(&out.Sections[si]); err != nil {
		return s, err
	}
	return out, nil
}

func mutateQuestion(s model.Structure, si, qi int, fn func(*model.Question) error) (model.Structure, error) {
	return mutateSection(s, si, func(sec *model.Section) error {
		if qi < 0 || qi >= len(sec.Questions) {
			return outOfRange("question", qi, len(sec.Questions))
		}
		return fn(&sec.Questions[qi])
	})
}

func hasQuestion(s model.Structure, id string) bool {
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			if q.ID == id {
				return true
			}
		}
	}
	return false
}
