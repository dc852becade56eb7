package assessment

import (
	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/talentflow/model"
)

// Validate checks the structural invariants a structure must hold before
// it is saved.
func Validate(s model.Structure) error {
	var result *multierror.Error
	fail := func(id, msg string) {
		result = multierror.Append(result, &model.FieldError{QuestionID: id, Message: msg})
	}

	sections := map[string]bool{}
	questions := map[string]bool{}
	for _, sec := range s.Sections {
		if sec.ID == "" {
			fail(sec.ID, "section has no id")
		} else if sections[sec.ID] {
			fail(sec.ID, "duplicate section id")
		}
		sections[sec.ID] = true

		for _, q := range sec.Questions {
			if q.ID == "" {
				fail(q.ID, "question has no id")
			} else if questions[q.ID] {
				fail(q.ID, "duplicate question id")
			}
			questions[q.ID] = true

			if !q.Type.Valid() {
				fail(q.ID, "unknown question type "+string(q.Type))
			}
			if q.Type.IsChoice() && len(q.Options) == 0 {
				fail(q.ID, "choice question needs at least one option")
			}
			if !q.Min.Finite() || !q.Max.Finite() || !q.MaxLength.Finite() {
				fail(q.ID, "limits must be finite numbers")
			} else if q.Type == model.Numeric && q.Min.IsSet() && q.Max.IsSet() && q.Min.Value > q.Max.Value {
				fail(q.ID, "min is greater than max")
			}
		}
	}

	// conditionals may point forward, so check them once every id is known
	for _, q := range s.Questions() {
		if q.Conditional == nil {
			continue
		}
		// an empty reference is a condition still being edited
		switch id := q.Conditional.QuestionID; {
		case id == "":
		case id == q.ID:
			fail(q.ID, "question cannot depend on itself")
		case !questions[id]:
			fail(q.ID, "condition references unknown question "+id)
		}
	}

	return result.ErrorOrNil()
}
