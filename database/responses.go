package database

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

// PersistResponse stores a submitted answer set along with the structure
// it was answered against, and returns its ID.
func PersistResponse(ctx context.Context, q Querier, resp model.Response) (int, error) {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return 0, errors.Wrap(err, "encode answers")
	}
	structure, err := json.Marshal(resp.Structure)
	if err != nil {
		return 0, errors.Wrap(err, "encode structure")
	}

	var id int
	err = q.QueryRowContext(ctx, `
		INSERT INTO assessment_response (assessment_id, candidate_id, answers, structure, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		resp.AssessmentID, resp.CandidateID, string(answers), string(structure), resp.SubmittedAt,
	).Scan(&id)
	if err != nil {
		return 0, transient("db.insert_response", err)
	}
	return id, nil
}

func (s *Store) FetchResponse(ctx context.Context, id int) (resp model.Response, err error) {
	var answers, structure string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, assessment_id, candidate_id, answers, structure, submitted_at
		FROM assessment_response
		WHERE id = ?`,
		id,
	).Scan(&resp.ID, &resp.AssessmentID, &resp.CandidateID, &answers, &structure, &resp.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, errors.Wrapf(model.ErrNotFound, "response %d", id)
	}
	if err != nil {
		return resp, transient("db.get_response", err)
	}

	if err = json.Unmarshal([]byte(answers), &resp.Answers); err != nil {
		return resp, errors.Wrap(err, "decode answers")
	}
	if err = json.Unmarshal([]byte(structure), &resp.Structure); err != nil {
		return resp, errors.Wrap(err, "decode structure")
	}
	return resp, nil
}
