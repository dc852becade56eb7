package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitWireForms(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q1","type":"numeric","min":"","max":"20","maxLength":5}`), &q))

	require.NotNil(t, q.Min)
	assert.False(t, q.Min.IsSet())
	assert.True(t, q.Max.IsSet())
	assert.Equal(t, 20.0, q.Max.Value)
	assert.Equal(t, "5", q.MaxLength.String())

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"min":""`)
	assert.Contains(t, string(data), `"max":20`)
}

func TestLimitAbsent(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q1","type":"short-text"}`), &q))
	assert.Nil(t, q.Min)
	assert.False(t, q.Min.IsSet())

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"min"`)
}

func TestLimitRejectsText(t *testing.T) {
	var q Question
	assert.Error(t, json.Unmarshal([]byte(`{"min":"ten"}`), &q))
}

func TestLimitRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		var l Limit
		assert.Error(t, l.Parse(raw), raw)
		assert.False(t, l.IsSet(), raw)
	}

	var q Question
	assert.Error(t, json.Unmarshal([]byte(`{"max":"Inf"}`), &q))
	assert.True(t, NewLimit(3).Finite())
	assert.True(t, EmptyLimit().Finite())
	assert.False(t, (&Limit{Value: math.NaN(), Valid: true}).Finite())
}

func TestLimitZeroIsSet(t *testing.T) {
	var l Limit
	require.NoError(t, l.Parse(" 0 "))
	assert.True(t, l.IsSet())
	assert.Equal(t, "0", l.String())
}

func TestCloneSharesNothing(t *testing.T) {
	s := Structure{Title: "t", Sections: []Section{{
		ID: "s1",
		Questions: []Question{{
			ID:          "q1",
			Type:        SingleChoice,
			Options:     []string{"a"},
			Min:         NewLimit(1),
			Conditional: &Conditional{QuestionID: "q0", RequiredValue: "yes"},
		}},
	}}}

	c := s.Clone()
	c.Sections[0].Questions[0].Options[0] = "b"
	c.Sections[0].Questions[0].Min.Value = 9
	c.Sections[0].Questions[0].Conditional.RequiredValue = "no"
	c.Sections[0].Title = "changed"

	q := s.Sections[0].Questions[0]
	assert.Equal(t, "a", q.Options[0])
	assert.Equal(t, 1.0, q.Min.Value)
	assert.Equal(t, "yes", q.Conditional.RequiredValue)
	assert.Empty(t, s.Sections[0].Title)
	assert.Equal(t, []string{"q1"}, []string{s.Questions()[0].ID})
}

func TestCloneNormalizesMissingLists(t *testing.T) {
	c := Structure{Title: "t", Sections: []Section{{ID: "s1"}}}.Clone()
	assert.NotNil(t, c.Sections[0].Questions)
	assert.NotNil(t, Structure{}.Clone().Sections)
}
