package model

import "errors"

// Error kinds. Callers wrap these and match them with errors.Is.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTransient          = errors.New("transient storage failure")
)

// FieldError reports a broken rule on a single question.
type FieldError struct {
	QuestionID string
	Message    string
}

func (e *FieldError) Error() string {
	return e.QuestionID + ": " + e.Message
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidationFailed
}
