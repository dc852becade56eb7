package assessment

import "github.com/mbolis/talentflow/model"

// IsVisible reports whether q should be shown for the given answers.
//
// The check is single-hop: the question q depends on is not itself
// checked for visibility, so a question can show up while its dependency
// is hidden as long as a matching answer is present.
func IsVisible(q model.Question, answers model.Answers) bool {
	if q.Conditional == nil {
		return true
	}
	answer, ok := answers[q.Conditional.QuestionID].(string)
	return ok && answer == q.Conditional.RequiredValue
}

// Visibility evaluates IsVisible for every question of s, keyed by ID.
func Visibility(s model.Structure, answers model.Answers) map[string]bool {
	visible := make(map[string]bool)
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			visible[q.ID] = IsVisible(q, answers)
		}
	}
	return visible
}
