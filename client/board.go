package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

// BoardAPI is the part of the API a Board writes through.
type BoardAPI interface {
	MoveCandidate(ctx context.Context, id int, stage model.Stage) (model.Candidate, error)
	AddNote(ctx context.Context, candidateID int, content string) (model.TimelineEvent, error)
}

// Board is a local copy of the candidate pipeline that applies changes
// before the server confirms them and rolls them back when it refuses.
type Board struct {
	api BoardAPI

	mu         sync.Mutex
	candidates map[int]model.Candidate
	moves      map[int]int // optimistic moves started per candidate
	timelines  map[int][]model.TimelineEvent
	pending    int
}

func NewBoard(api BoardAPI, candidates []model.Candidate) *Board {
	b := &Board{
		api:        api,
		candidates: make(map[int]model.Candidate, len(candidates)),
		moves:      map[int]int{},
		timelines:  map[int][]model.TimelineEvent{},
	}
	for _, c := range candidates {
		b.candidates[c.ID] = c
	}
	return b
}

// Columns groups the candidates by stage, each column sorted by name.
// Every stage has a column, possibly empty.
func (b *Board) Columns() map[model.Stage][]model.Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()

	columns := make(map[model.Stage][]model.Candidate, len(model.Stages))
	for _, stage := range model.Stages {
		columns[stage] = []model.Candidate{}
	}
	for _, c := range b.candidates {
		columns[c.Stage] = append(columns[c.Stage], c)
	}
	for _, column := range columns {
		sort.Slice(column, func(i, j int) bool {
			if column[i].Name == column[j].Name {
				return column[i].ID < column[j].ID
			}
			return column[i].Name < column[j].Name
		})
	}
	return columns
}

func (b *Board) Candidate(id int) (model.Candidate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.candidates[id]
	return c, ok
}

// SetTimeline replaces the cached timeline of a candidate.
func (b *Board) SetTimeline(candidateID int, events []model.TimelineEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timelines[candidateID] = append([]model.TimelineEvent{}, events...)
}

// Timeline returns the cached timeline of a candidate, newest first.
func (b *Board) Timeline(candidateID int) []model.TimelineEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.TimelineEvent{}, b.timelines[candidateID]...)
}

// Move drags a candidate to another stage. The local board changes at
// once; if the server refuses the move the previous stage is restored and
// the server error returned. A move started later wins over the outcome
// of an earlier one.
func (b *Board) Move(ctx context.Context, id int, stage model.Stage) error {
	b.mu.Lock()
	previous, ok := b.candidates[id]
	if !ok {
		b.mu.Unlock()
		return errors.Wrapf(model.ErrNotFound, "candidate %d", id)
	}
	if previous.Stage == stage {
		b.mu.Unlock()
		return nil
	}
	moved := previous
	moved.Stage = stage
	b.candidates[id] = moved
	b.moves[id]++
	version := b.moves[id]
	b.mu.Unlock()

	confirmed, err := b.api.MoveCandidate(ctx, id, stage)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.moves[id] == version {
		if err != nil {
			b.candidates[id] = previous
		} else {
			b.candidates[id] = confirmed
		}
	}
	return err
}

// AddNote shows a note on top of the cached timeline until the server
// stores it, then swaps in the stored event. A refused note disappears.
// Pending notes carry negative IDs.
func (b *Board) AddNote(ctx context.Context, candidateID int, content string) (model.TimelineEvent, error) {
	b.mu.Lock()
	b.pending++
	pending := model.TimelineEvent{
		ID:          -b.pending,
		CandidateID: candidateID,
		Type:        model.EventNote,
		Content:     content,
		Author:      "HR Manager",
		Timestamp:   time.Now(),
	}
	b.timelines[candidateID] = append([]model.TimelineEvent{pending}, b.timelines[candidateID]...)
	b.mu.Unlock()

	note, err := b.api.AddNote(ctx, candidateID, content)

	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.timelines[candidateID]
	at := -1
	for i, ev := range events {
		if ev.ID == pending.ID {
			at = i
			break
		}
	}
	if err != nil {
		if at >= 0 {
			b.timelines[candidateID] = append(events[:at:at], events[at+1:]...)
		}
		return model.TimelineEvent{}, err
	}
	if at >= 0 {
		events[at] = note
	}
	return note, nil
}

// MoveAll moves several candidates, keeping the moves the server accepted
// and reporting every refusal.
func (b *Board) MoveAll(ctx context.Context, stage model.Stage, ids ...int) error {
	var errs error
	for _, id := range ids {
		if err := b.Move(ctx, id, stage); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "move candidate %d", id))
		}
	}
	return errs
}
