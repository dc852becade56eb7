package assessment

import (
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

type Op string

const (
	OpSetTitle             Op = "setTitle"
	OpAddSection           Op = "addSection"
	OpDeleteSection        Op = "deleteSection"
	OpSetSectionTitle      Op = "setSectionTitle"
	OpAddQuestion          Op = "addQuestion"
	OpUpdateQuestion       Op = "updateQuestion"
	OpDeleteQuestion       Op = "deleteQuestion"
	OpAddOption            Op = "addOption"
	OpUpdateOption         Op = "updateOption"
	OpDeleteOption         Op = "deleteOption"
	OpToggleConditional    Op = "toggleConditional"
	OpSetConditionalSource Op = "setConditionalSource"
	OpSetConditionalValue  Op = "setConditionalValue"
)

// Edit is a serialisable builder command. Only the indices relevant to Op
// are read.
type Edit struct {
	Op       Op    `json:"op"`
	Section  int   `json:"section"`
	Question int   `json:"question"`
	Option   int   `json:"option"`
	Field    Field `json:"field,omitempty"`
	Value    any   `json:"value,omitempty"`
	On       bool  `json:"on,omitempty"`
}

// Apply runs e against s.
func Apply(s model.Structure, e Edit) (model.Structure, error) {
	switch e.Op {
	case OpSetTitle:
		title, err := stringValue(e)
		if err != nil {
			return s, err
		}
		return SetTitle(s, title), nil
	case OpAddSection:
		return AddSection(s), nil
	case OpDeleteSection:
		return DeleteSection(s, e.Section)
	case OpSetSectionTitle:
		title, err := stringValue(e)
		if err != nil {
			return s, err
		}
		return SetSectionTitle(s, e.Section, title)
	case OpAddQuestion:
		return AddQuestion(s, e.Section)
	case OpUpdateQuestion:
		return UpdateQuestion(s, e.Section, e.Question, e.Field, e.Value)
	case OpDeleteQuestion:
		return DeleteQuestion(s, e.Section, e.Question)
	case OpAddOption:
		return AddOption(s, e.Section, e.Question)
	case OpUpdateOption:
		value, err := stringValue(e)
		if err != nil {
			return s, err
		}
		return UpdateOption(s, e.Section, e.Question, e.Option, value)
	case OpDeleteOption:
		return DeleteOption(s, e.Section, e.Question, e.Option)
	case OpToggleConditional:
		return ToggleConditional(s, e.Section, e.Question, e.On)
	case OpSetConditionalSource:
		id, err := stringValue(e)
		if err != nil {
			return s, err
		}
		return SetConditionalSource(s, e.Section, e.Question, id)
	case OpSetConditionalValue:
		value, err := stringValue(e)
		if err != nil {
			return s, err
		}
		return SetConditionalValue(s, e.Section, e.Question, value)
	default:
		return s, errors.Wrapf(model.ErrValidationFailed, "unknown edit %q", e.Op)
	}
}

func stringValue(e Edit) (string, error) {
	switch v := e.Value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Wrapf(model.ErrValidationFailed, "%s expects a string value, got %T", e.Op, e.Value)
	}
}
