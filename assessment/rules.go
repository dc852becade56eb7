package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/talentflow/model"
)

type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMaxLength RuleKind = "maxLength"
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
)

// Rule is one constraint on an answer.
type Rule struct {
	Kind    RuleKind `json:"kind"`
	Value   float64  `json:"value,omitempty"`
	Message string   `json:"message"`
}

// RuleSet is the compiled set of constraints for a question.
type RuleSet []Rule

type checker func(r Rule, answer any) bool

// checkers report whether the answer satisfies the rule.
var checkers = map[RuleKind]checker{
	RuleRequired:  checkRequired,
	RuleMaxLength: checkMaxLength,
	RuleMin:       checkMin,
	RuleMax:       checkMax,
}

// CompileRules derives the validation rules for q. It is cheap and is
// meant to be called on every validation pass.
func CompileRules(q model.Question) RuleSet {
	var rules RuleSet
	if q.Required {
		rules = append(rules, Rule{Kind: RuleRequired, Message: "This field is required."})
	}
	if q.Type.IsText() && q.MaxLength.IsSet() {
		rules = append(rules, Rule{
			Kind:    RuleMaxLength,
			Value:   math.Trunc(q.MaxLength.Value),
			Message: fmt.Sprintf("Answer must be less than %s characters.", q.MaxLength),
		})
	}
	if q.Type == model.Numeric {
		if q.Min.IsSet() {
			rules = append(rules, Rule{
				Kind:    RuleMin,
				Value:   q.Min.Value,
				Message: fmt.Sprintf("Value must be at least %s.", q.Min),
			})
		}
		if q.Max.IsSet() {
			rules = append(rules, Rule{
				Kind:    RuleMax,
				Value:   q.Max.Value,
				Message: fmt.Sprintf("Value must be no more than %s.", q.Max),
			})
		}
	}
	return rules
}

func (rs RuleSet) Has(kind RuleKind) bool {
	for _, r := range rs {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Check returns the messages of every rule the answer breaks.
func (rs RuleSet) Check(answer any) []string {
	var broken []string
	for _, r := range rs {
		if !checkers[r.Kind](r, answer) {
			broken = append(broken, r.Message)
		}
	}
	return broken
}

// ValidateAnswers checks every visible question of s. Hidden questions
// are skipped, so a hidden required question never blocks a submission.
// The returned error aggregates one *model.FieldError per broken rule.
func ValidateAnswers(s model.Structure, answers model.Answers) error {
	var result *multierror.Error
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			if !IsVisible(q, answers) {
				continue
			}
			for _, msg := range CompileRules(q).Check(answers[q.ID]) {
				result = multierror.Append(result, &model.FieldError{QuestionID: q.ID, Message: msg})
			}
		}
	}
	return result.ErrorOrNil()
}

// FieldErrors groups the messages of a ValidateAnswers error by question.
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	merr, ok := err.(*multierror.Error)
	if !ok {
		if ferr, ok := err.(*model.FieldError); ok {
			out[ferr.QuestionID] = append(out[ferr.QuestionID], ferr.Message)
		}
		return out
	}
	for _, e := range merr.Errors {
		if ferr, ok := e.(*model.FieldError); ok {
			out[ferr.QuestionID] = append(out[ferr.QuestionID], ferr.Message)
		}
	}
	return out
}

func isEmpty(answer any) bool {
	switch v := answer.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case bool:
		// unchecked checkbox groups come through as false
		return !v
	default:
		return false
	}
}

func checkRequired(_ Rule, answer any) bool {
	return !isEmpty(answer)
}

func checkMaxLength(r Rule, answer any) bool {
	s, ok := answer.(string)
	if !ok {
		return true
	}
	return float64(utf8.RuneCountInString(s)) <= r.Value
}

func checkMin(r Rule, answer any) bool {
	if isEmpty(answer) {
		return true
	}
	v, ok := toNumber(answer)
	return ok && v >= r.Value
}

func checkMax(r Rule, answer any) bool {
	if isEmpty(answer) {
		return true
	}
	v, ok := toNumber(answer)
	return ok && v <= r.Value
}

func toNumber(answer any) (float64, bool) {
	switch v := answer.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
