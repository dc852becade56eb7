package submission

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/model"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewStore(db)
}

// scenario stores a job with a two question assessment where q2 only
// shows when q1 is answered "yes".
func scenario(t *testing.T, store *database.Store, title string, candidates ...string) (model.Assessment, []int) {
	t.Helper()
	ctx := context.Background()

	job, err := store.CreateJob(ctx, model.Job{Title: "Backend Engineer"})
	require.NoError(t, err)

	a, err := store.SaveStructure(ctx, job.ID, model.Structure{Title: title, Sections: []model.Section{{
		ID: "s1",
		Questions: []model.Question{
			{ID: "q1", Type: model.ShortText, Text: "Continue?", Required: true},
			{
				ID:          "q2",
				Type:        model.Numeric,
				Text:        "How many?",
				Required:    true,
				Min:         model.NewLimit(0),
				Max:         model.NewLimit(20),
				Conditional: &model.Conditional{QuestionID: "q1", RequiredValue: "yes"},
			},
		},
	}}})
	require.NoError(t, err)

	refs := make([]model.Candidate, len(candidates))
	for i, name := range candidates {
		refs[i] = model.Candidate{Name: name, Email: name + "@example.org", Stage: model.StageApplied, JobID: job.ID, CreatedAt: time.Now()}
	}
	var ids []int
	err = store.InTx(ctx, func(tx *sql.Tx) (err error) {
		ids, err = database.InsertCandidates(ctx, tx, refs)
		return
	})
	require.NoError(t, err)
	return a, ids
}

func pickLast(candidates []model.CandidateRef) model.CandidateRef {
	return candidates[len(candidates)-1]
}

func countRows(t *testing.T, store *database.Store, table string) (n int) {
	t.Helper()
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return
}

func TestSubmitAssignsCandidateAndRecordsTimeline(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a, ids := scenario(t, store, "Go screening", "ada", "max")

	svc := NewService(store, PickerFunc(pickLast))
	res, err := svc.Submit(ctx, a.ID, model.Answers{"q1": "yes", "q2": "11"})
	require.NoError(t, err)
	assert.Equal(t, ids[1], res.CandidateID)
	assert.Equal(t, "max", res.CandidateName)
	assert.NotZero(t, res.ResponseID)

	events, err := store.Timeline(ctx, ids[1])
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAssessmentCompleted, events[0].Type)
	assert.Equal(t, `Completed the "Go screening" assessment.`, events[0].Content)
	assert.Equal(t, "max", events[0].Author)
	assert.Equal(t, a.ID, events[0].AssessmentID)
	assert.Equal(t, res.ResponseID, events[0].ResponseID)

	resp, err := svc.FetchResponse(ctx, res.ResponseID)
	require.NoError(t, err)
	assert.Equal(t, model.Answers{"q1": "yes", "q2": "11"}, resp.Answers)
	assert.Equal(t, a.Structure, resp.Structure)
}

func TestSubmitHiddenQuestionNeedsNoAnswer(t *testing.T) {
	store := newTestStore(t)
	a, _ := scenario(t, store, "Go screening", "ada")

	_, err := NewService(store, nil).Submit(context.Background(), a.ID, model.Answers{"q1": "no"})
	assert.NoError(t, err)
}

func TestSubmitRejectsInvalidAnswers(t *testing.T) {
	store := newTestStore(t)
	a, _ := scenario(t, store, "Go screening", "ada")

	_, err := NewService(store, nil).Submit(context.Background(), a.ID, model.Answers{"q1": "yes", "q2": 21.0})
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	assert.Zero(t, countRows(t, store, "assessment_response"))
	assert.Zero(t, countRows(t, store, "timeline_event"))
}

func TestSubmitWithoutCandidatesWritesNothing(t *testing.T) {
	store := newTestStore(t)
	a, _ := scenario(t, store, "Go screening")

	_, err := NewService(store, nil).Submit(context.Background(), a.ID, model.Answers{"q1": "no"})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	assert.Zero(t, countRows(t, store, "assessment_response"))
	assert.Zero(t, countRows(t, store, "timeline_event"))
}

func TestSubmitRollsBackOnStorageFailure(t *testing.T) {
	store := newTestStore(t)
	a, _ := scenario(t, store, "Go screening", "ada")

	// the response insert succeeds, the timeline insert then fails
	_, err := store.DB().Exec(`DROP TABLE timeline_event`)
	require.NoError(t, err)

	_, err = NewService(store, nil).Submit(context.Background(), a.ID, model.Answers{"q1": "no"})
	assert.ErrorIs(t, err, model.ErrTransient)
	assert.Zero(t, countRows(t, store, "assessment_response"))
}

func TestSubmitUnknownAssessment(t *testing.T) {
	store := newTestStore(t)
	scenario(t, store, "Go screening", "ada")

	_, err := NewService(store, nil).Submit(context.Background(), 999, model.Answers{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSubmitUntitledAssessment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a, ids := scenario(t, store, "", "ada")

	_, err := NewService(store, nil).Submit(ctx, a.ID, model.Answers{"q1": "no"})
	require.NoError(t, err)

	events, err := store.Timeline(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, `Completed the "an assessment" assessment.`, events[0].Content)
}

func TestRandomPickerStaysInRange(t *testing.T) {
	p := NewRandomPicker(1)
	candidates := []model.CandidateRef{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[p.Pick(candidates).ID] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)
}
