package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/talentflow/model"
)

// ClearAll deletes every job, candidate, assessment and their children.
// Settings are kept.
func ClearAll(ctx context.Context, q Querier) error {
	for _, table := range []string{"timeline_event", "assessment_response", "assessment", "candidate", "job"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return transient("db.clear."+table, err)
		}
	}
	return nil
}

// InsertJob stores job as is, with its order and slug already set.
func InsertJob(ctx context.Context, q Querier, job model.Job) (int, error) {
	return insertJob(ctx, q, job)
}

// InsertCandidates stores candidates in one prepared statement and returns
// their IDs in the same order.
func InsertCandidates(ctx context.Context, tx *sql.Tx, candidates []model.Candidate) ([]int, error) {
	stmt, err := tx.PrepareContext(ctx, insertCandidateSQL)
	if err != nil {
		return nil, transient("db.insert_candidate.prepare", err)
	}
	defer stmt.Close()

	ids := make([]int, 0, len(candidates))
	for _, c := range candidates {
		id, err := insertCandidate(ctx, stmt, c)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SaveAssessment upserts the structure of a job without checking it.
func SaveAssessment(ctx context.Context, q Querier, jobID int, structure model.Structure) (int, error) {
	return upsertAssessment(ctx, q, jobID, structure)
}
