// Package submission assigns submitted answer sets to candidates.
package submission

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

// Picker chooses the candidate a submission is recorded against.
// candidates is never empty.
type Picker interface {
	Pick(candidates []model.CandidateRef) model.CandidateRef
}

// RandomPicker picks uniformly at random.
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rnd: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(candidates []model.CandidateRef) model.CandidateRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return candidates[p.rnd.Intn(len(candidates))]
}

type PickerFunc func([]model.CandidateRef) model.CandidateRef

func (f PickerFunc) Pick(candidates []model.CandidateRef) model.CandidateRef {
	return f(candidates)
}

type Result struct {
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	ResponseID    int    `json:"responseId"`
}

type Service struct {
	store  *database.Store
	picker Picker
	now    func() time.Time
}

func NewService(store *database.Store, picker Picker) *Service {
	if picker == nil {
		picker = NewRandomPicker(time.Now().UnixNano())
	}
	return &Service{store: store, picker: picker, now: time.Now}
}

// Submit validates answers against the assessment, records them as a
// response of a picked candidate and adds the completion to the
// candidate's timeline. Nothing is written unless every step succeeds.
func (s *Service) Submit(ctx context.Context, assessmentID int, answers model.Answers) (res Result, err error) {
	if answers == nil {
		answers = model.Answers{}
	}

	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		a, err := database.GetAssessment(ctx, tx, assessmentID)
		if err != nil {
			return err
		}
		if err = assessment.ValidateAnswers(a.Structure, answers); err != nil {
			return err
		}

		candidates, err := database.CandidateRefs(ctx, tx)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return errors.Wrap(model.ErrPreconditionFailed, "no candidates to assign the submission to")
		}
		candidate := s.picker.Pick(candidates)

		now := s.now()
		responseID, err := database.PersistResponse(ctx, tx, model.Response{
			AssessmentID: a.ID,
			CandidateID:  candidate.ID,
			Answers:      answers,
			Structure:    a.Structure,
			SubmittedAt:  now,
		})
		if err != nil {
			return err
		}

		_, err = database.AppendTimelineEvent(ctx, tx, model.TimelineEvent{
			CandidateID:  candidate.ID,
			Type:         model.EventAssessmentCompleted,
			Content:      completedContent(a.Structure.Title),
			Author:       candidate.Name,
			AssessmentID: a.ID,
			ResponseID:   responseID,
			Timestamp:    now,
		})
		if err != nil {
			return err
		}

		res = Result{CandidateID: candidate.ID, CandidateName: candidate.Name, ResponseID: responseID}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.WithFields(log.Fields{
		"assessment": assessmentID,
		"candidate":  res.CandidateID,
		"response":   res.ResponseID,
	}).Info("assessment submitted")
	return res, nil
}

// FetchResponse returns a stored response with the structure it was
// answered against.
func (s *Service) FetchResponse(ctx context.Context, responseID int) (model.Response, error) {
	return s.store.FetchResponse(ctx, responseID)
}

func completedContent(title string) string {
	if title == "" {
		title = "an assessment"
	}
	return fmt.Sprintf(`Completed the "%s" assessment.`, title)
}
