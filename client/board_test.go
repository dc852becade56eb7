package client

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/talentflow/model"
)

// fakeAPI refuses every call while fail is set, or calls whose content or
// stage is listed in failOn. hold, when set, runs before each call answers.
type fakeAPI struct {
	mu     sync.Mutex
	fail   bool
	failOn map[string]bool
	hold   func(key string)
	lastID int
}

func (f *fakeAPI) wait(key string) error {
	if f.hold != nil {
		f.hold(key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.failOn[key] {
		return errors.Wrap(model.ErrTransient, "simulated")
	}
	return nil
}

func (f *fakeAPI) MoveCandidate(ctx context.Context, id int, stage model.Stage) (model.Candidate, error) {
	if err := f.wait(string(stage)); err != nil {
		return model.Candidate{}, err
	}
	return model.Candidate{ID: id, Name: "server", Stage: stage, JobTitle: "Backend Engineer"}, nil
}

func (f *fakeAPI) AddNote(ctx context.Context, candidateID int, content string) (model.TimelineEvent, error) {
	if err := f.wait(content); err != nil {
		return model.TimelineEvent{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID++
	return model.TimelineEvent{ID: 41 + f.lastID, CandidateID: candidateID, Type: model.EventNote, Content: content, Author: "HR Manager"}, nil
}

// holdOn blocks the call for key until release is closed, closing started
// when it begins.
func holdOn(key string) (hold func(string), started, release chan struct{}) {
	started, release = make(chan struct{}), make(chan struct{})
	return func(k string) {
		if k == key {
			close(started)
			<-release
		}
	}, started, release
}

func testCandidates() []model.Candidate {
	return []model.Candidate{
		{ID: 1, Name: "zoe", Stage: model.StageApplied},
		{ID: 2, Name: "ada", Stage: model.StageApplied},
		{ID: 3, Name: "bob", Stage: model.StageHired},
	}
}

func TestBoardColumns(t *testing.T) {
	b := NewBoard(&fakeAPI{}, testCandidates())

	columns := b.Columns()
	assert.Len(t, columns, len(model.Stages))
	require.Len(t, columns[model.StageApplied], 2)
	assert.Equal(t, "ada", columns[model.StageApplied][0].Name)
	assert.Equal(t, "zoe", columns[model.StageApplied][1].Name)
	assert.Len(t, columns[model.StageHired], 1)
	assert.Empty(t, columns[model.StageOffer])
}

func TestBoardMoveIsOptimistic(t *testing.T) {
	hold, started, release := holdOn(string(model.StageTech))
	b := NewBoard(&fakeAPI{hold: hold}, testCandidates())

	done := make(chan error)
	go func() { done <- b.Move(context.Background(), 1, model.StageTech) }()

	<-started
	pending, _ := b.Candidate(1)
	assert.Equal(t, model.StageTech, pending.Stage)

	close(release)
	require.NoError(t, <-done)
	confirmed, _ := b.Candidate(1)
	assert.Equal(t, "server", confirmed.Name)
	assert.Equal(t, "Backend Engineer", confirmed.JobTitle)
}

func TestBoardMoveRollsBack(t *testing.T) {
	b := NewBoard(&fakeAPI{fail: true}, testCandidates())

	err := b.Move(context.Background(), 1, model.StageTech)
	assert.ErrorIs(t, err, model.ErrTransient)

	c, _ := b.Candidate(1)
	assert.Equal(t, model.StageApplied, c.Stage)
	assert.Len(t, b.Columns()[model.StageApplied], 2)
}

func TestBoardMoveUnknownCandidate(t *testing.T) {
	b := NewBoard(&fakeAPI{}, testCandidates())
	assert.ErrorIs(t, b.Move(context.Background(), 99, model.StageTech), model.ErrNotFound)
}

func TestBoardMoveAllReportsEveryFailure(t *testing.T) {
	b := NewBoard(&fakeAPI{fail: true}, testCandidates())

	err := b.MoveAll(context.Background(), model.StageOffer, 1, 2, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move candidate 1")
	assert.Contains(t, err.Error(), "move candidate 2")
	assert.Contains(t, err.Error(), "move candidate 99")
	assert.Empty(t, b.Columns()[model.StageOffer])
}

func TestBoardNotes(t *testing.T) {
	api := &fakeAPI{}
	b := NewBoard(api, testCandidates())
	b.SetTimeline(1, []model.TimelineEvent{{ID: 7, CandidateID: 1, Type: model.EventStageChange, Content: "Moved to Screen"}})

	note, err := b.AddNote(context.Background(), 1, "Strong portfolio")
	require.NoError(t, err)
	assert.Equal(t, 42, note.ID)

	timeline := b.Timeline(1)
	require.Len(t, timeline, 2)
	assert.Equal(t, 42, timeline[0].ID)
	assert.Equal(t, 7, timeline[1].ID)

	api.failOn = map[string]bool{"Lost": true}
	_, err = b.AddNote(context.Background(), 1, "Lost")
	assert.ErrorIs(t, err, model.ErrTransient)
	assert.Len(t, b.Timeline(1), 2)
}

func TestBoardOverlappingNotes(t *testing.T) {
	for _, slowFails := range []bool{false, true} {
		hold, started, release := holdOn("slow")
		api := &fakeAPI{hold: hold, failOn: map[string]bool{"slow": slowFails}}
		b := NewBoard(api, testCandidates())

		done := make(chan error)
		go func() {
			_, err := b.AddNote(context.Background(), 1, "slow")
			done <- err
		}()
		<-started

		_, err := b.AddNote(context.Background(), 1, "fast")
		require.NoError(t, err)
		close(release)
		slowErr := <-done

		var contents []string
		for _, ev := range b.Timeline(1) {
			assert.Positive(t, ev.ID)
			contents = append(contents, ev.Content)
		}
		if slowFails {
			assert.ErrorIs(t, slowErr, model.ErrTransient)
			assert.Equal(t, []string{"fast"}, contents)
		} else {
			assert.NoError(t, slowErr)
			assert.Equal(t, []string{"fast", "slow"}, contents)
		}
	}
}

func TestBoardOverlappingMoves(t *testing.T) {
	hold, started, release := holdOn(string(model.StageTech))
	api := &fakeAPI{hold: hold, failOn: map[string]bool{string(model.StageTech): true}}
	b := NewBoard(api, testCandidates())

	done := make(chan error)
	go func() { done <- b.Move(context.Background(), 1, model.StageTech) }()
	<-started

	require.NoError(t, b.Move(context.Background(), 1, model.StageOffer))
	close(release)
	assert.ErrorIs(t, <-done, model.ErrTransient)

	c, _ := b.Candidate(1)
	assert.Equal(t, model.StageOffer, c.Stage)
}
