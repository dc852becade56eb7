package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	ShortText    QuestionType = "short-text"
	LongText     QuestionType = "long-text"
	Numeric      QuestionType = "numeric"
	FileUpload   QuestionType = "file-upload"
)

var QuestionTypes = []QuestionType{SingleChoice, MultiChoice, ShortText, LongText, Numeric, FileUpload}

func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

func (t QuestionType) IsText() bool {
	return t == ShortText || t == LongText
}

// Structure is the editable schema of an assessment.
type Structure struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Text        string       `json:"text"`
	Required    bool         `json:"required,omitempty"`
	Options     []string     `json:"options"`
	Min         *Limit       `json:"min,omitempty"`
	Max         *Limit       `json:"max,omitempty"`
	MaxLength   *Limit       `json:"maxLength,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
}

// Conditional shows a question only when another question's answer
// equals RequiredValue.
type Conditional struct {
	QuestionID    string `json:"questionId"`
	RequiredValue string `json:"requiredValue"`
}

// Answers maps question IDs to submitted values.
type Answers map[string]any

func NewStructure() Structure {
	return Structure{Title: "New Assessment", Sections: []Section{}}
}

// Clone returns a deep copy sharing no slices or pointers with s. Missing
// section and question lists come back empty, never nil.
func (s Structure) Clone() Structure {
	out := Structure{Title: s.Title, Sections: make([]Section, len(s.Sections))}
	for i, sec := range s.Sections {
		out.Sections[i] = sec.Clone()
	}
	return out
}

func (s Section) Clone() Section {
	out := Section{ID: s.ID, Title: s.Title, Questions: make([]Question, len(s.Questions))}
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append(make([]string, 0, len(q.Options)), q.Options...)
	}
	out.Min = q.Min.clone()
	out.Max = q.Max.clone()
	out.MaxLength = q.MaxLength.clone()
	if q.Conditional != nil {
		c := *q.Conditional
		out.Conditional = &c
	}
	return out
}

// Questions returns every question of the structure in display order.
func (s Structure) Questions() []Question {
	var out []Question
	for _, sec := range s.Sections {
		out = append(out, sec.Questions...)
	}
	return out
}

// Limit is an optional numeric bound. A nil *Limit is absent, a Limit
// that is not Valid is present but empty ("" on the wire).
type Limit struct {
	Value float64
	Valid bool
}

func NewLimit(v float64) *Limit {
	return &Limit{Value: v, Valid: true}
}

func EmptyLimit() *Limit {
	return &Limit{}
}

// IsSet reports whether l carries a usable value.
func (l *Limit) IsSet() bool {
	return l != nil && l.Valid
}

// Finite reports whether l is unset or set to a finite number.
func (l *Limit) Finite() bool {
	return !l.IsSet() || !(math.IsNaN(l.Value) || math.IsInf(l.Value, 0))
}

func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Errorf("limit: %v is not a finite number", v)
	}
	return nil
}

func (l *Limit) clone() *Limit {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func (l *Limit) String() string {
	if !l.IsSet() {
		return ""
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64)
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte(`""`), nil
	}
	return json.Marshal(l.Value)
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*l = Limit{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return l.Parse(s)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "limit")
	}
	if err := finite(v); err != nil {
		return err
	}
	*l = Limit{Value: v, Valid: true}
	return nil
}

// Parse sets l from user input; blank input leaves the limit empty.
func (l *Limit) Parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*l = Limit{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Errorf("limit: %q is not a number", s)
	}
	if err := finite(v); err != nil {
		return err
	}
	*l = Limit{Value: v, Valid: true}
	return nil
}
