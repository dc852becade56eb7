package client_test

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/client"
	"github.com/mbolis/talentflow/config"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
	"github.com/mbolis/talentflow/routes"
)

func init() {
	log.SetOutput(io.Discard)
}

func newTestClient(t *testing.T) (*client.Client, *database.Store) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg, err := config.Parse("talentflow", nil)
	require.NoError(t, err)

	store := database.NewStore(db)
	server := httptest.NewServer(routes.Wire(app.New(store, cfg)))
	t.Cleanup(server.Close)
	return client.New(server.URL + "/api/"), store
}

func insertCandidates(t *testing.T, store *database.Store, jobID int, names ...string) []int {
	t.Helper()
	candidates := make([]model.Candidate, len(names))
	for i, name := range names {
		candidates[i] = model.Candidate{Name: name, Email: name + "@example.org", Stage: model.StageApplied, JobID: jobID, CreatedAt: time.Now()}
	}
	var ids []int
	err := store.InTx(context.Background(), func(tx *sql.Tx) (err error) {
		ids, err = database.InsertCandidates(context.Background(), tx, candidates)
		return
	})
	require.NoError(t, err)
	return ids
}

func TestClientJobs(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	backend, err := c.CreateJob(ctx, "Backend Engineer", "", []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, "backend-engineer", backend.Slug)

	_, err = c.CreateJob(ctx, "backend engineer", "", nil)
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "A job with this title already exists.", apiErr.Message)

	frontend, err := c.CreateJob(ctx, "Frontend Engineer", "", []string{"react"})
	require.NoError(t, err)

	require.NoError(t, c.ReorderJob(ctx, frontend.ID, 0))
	page, err := c.ListJobs(ctx, client.JobQuery{Unpaginated: true})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 2)
	assert.Equal(t, frontend.ID, page.Jobs[0].ID)

	page, err = c.ListJobs(ctx, client.JobQuery{Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	archived := model.JobArchived
	job, err := c.UpdateJob(ctx, backend.ID, database.JobPatch{Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, model.JobArchived, job.Status)

	_, err = c.GetJob(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "react"}, tags)
}

func TestClientAssessmentFlow(t *testing.T) {
	c, store := newTestClient(t)
	ctx := context.Background()

	job, err := c.CreateJob(ctx, "Backend Engineer", "", nil)
	require.NoError(t, err)

	a, err := c.LoadAssessment(ctx, job.ID)
	require.NoError(t, err)
	assert.Zero(t, a.ID)

	s, err := c.ApplyEdit(ctx, a.Structure, assessment.Edit{Op: assessment.OpSetTitle, Value: "Screening"})
	require.NoError(t, err)
	s, err = c.ApplyEdit(ctx, s, assessment.Edit{Op: assessment.OpAddSection})
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)
	s.Sections[0].Questions = []model.Question{
		{ID: "q1", Type: model.ShortText, Text: "Name?", Required: true},
	}

	preview, err := c.Preview(ctx, s, model.Answers{})
	require.NoError(t, err)
	assert.True(t, preview.Visible["q1"])
	assert.NotEmpty(t, preview.Errors["q1"])

	id, err := c.SaveAssessment(ctx, job.ID, s)
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = c.Submit(ctx, id, model.Answers{"q1": "Ada"})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	insertCandidates(t, store, job.ID, "ada")
	_, err = c.Submit(ctx, id, model.Answers{})
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "q1")

	res, err := c.Submit(ctx, id, model.Answers{"q1": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", res.CandidateName)

	structure, answers, err := c.FetchResponse(ctx, res.ResponseID)
	require.NoError(t, err)
	assert.Equal(t, "Screening", structure.Title)
	assert.Equal(t, "Ada", answers["q1"])

	events, err := c.Timeline(ctx, res.CandidateID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventAssessmentCompleted, events[0].Type)
}

func TestClientBoardRoundTrip(t *testing.T) {
	c, store := newTestClient(t)
	ctx := context.Background()

	job, err := c.CreateJob(ctx, "Backend Engineer", "", nil)
	require.NoError(t, err)
	ids := insertCandidates(t, store, job.ID, "zoe", "ada")

	candidates, err := c.ListCandidates(ctx, "")
	require.NoError(t, err)
	board := client.NewBoard(c, candidates)

	require.NoError(t, board.Move(ctx, ids[0], model.StageTech))
	moved, ok := board.Candidate(ids[0])
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", moved.JobTitle)

	err = board.Move(ctx, ids[1], model.Stage("nowhere"))
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	kept, _ := board.Candidate(ids[1])
	assert.Equal(t, model.StageApplied, kept.Stage)

	tech, err := c.ListCandidates(ctx, model.StageTech)
	require.NoError(t, err)
	require.Len(t, tech, 1)
	assert.Equal(t, ids[0], tech[0].ID)

	note, err := board.AddNote(ctx, ids[1], "Great call")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)

	_, err = board.AddNote(ctx, ids[1], "")
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	require.Len(t, board.Timeline(ids[1]), 1)
}

func TestClientTheme(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	theme, err := c.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, database.DefaultTheme, theme)

	require.NoError(t, c.SetTheme(ctx, "vintage-brown"))
	theme, err = c.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "vintage-brown", theme)

	assert.ErrorIs(t, c.SetTheme(ctx, "neon"), model.ErrValidationFailed)
}

func TestClientUnreachable(t *testing.T) {
	c := client.New("http://127.0.0.1:1/api")
	_, err := c.ListTags(context.Background())
	assert.ErrorIs(t, err, model.ErrTransient)
}
