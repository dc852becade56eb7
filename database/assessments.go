package database

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/model"
)

// LoadStructure returns the assessment of a job. A job without one gets a
// fresh default structure with no ID.
func (s *Store) LoadStructure(ctx context.Context, jobID int) (model.Assessment, error) {
	a, err := scanAssessment(s.db.QueryRowContext(ctx,
		`SELECT id, job_id, structure FROM assessment WHERE job_id = ?`, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assessment{JobID: jobID, Structure: model.NewStructure()}, nil
	}
	if err != nil {
		return a, transient("db.load_structure", err)
	}
	return a, nil
}

// SaveStructure checks the structure invariants and stores it as the
// assessment of the job, replacing any previous one.
func (s *Store) SaveStructure(ctx context.Context, jobID int, structure model.Structure) (model.Assessment, error) {
	a := model.Assessment{JobID: jobID, Structure: structure}
	if err := assessment.Validate(structure); err != nil {
		return a, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM job WHERE id = ?`, jobID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return a, errors.Wrapf(model.ErrNotFound, "job %d", jobID)
	}
	if err != nil {
		return a, transient("db.save_structure.job", err)
	}

	a.ID, err = upsertAssessment(ctx, s.db, jobID, structure)
	return a, err
}

func upsertAssessment(ctx context.Context, q Querier, jobID int, structure model.Structure) (int, error) {
	data, err := json.Marshal(structure)
	if err != nil {
		return 0, errors.Wrap(err, "encode structure")
	}
	var id int
	err = q.QueryRowContext(ctx, `
		INSERT INTO assessment (job_id, structure) VALUES (?, ?)
		ON CONFLICT (job_id) DO UPDATE SET structure = excluded.structure
		RETURNING id`,
		jobID, string(data),
	).Scan(&id)
	if err != nil {
		return 0, transient("db.save_structure", err)
	}
	return id, nil
}

// GetAssessment loads an assessment by its own ID.
func GetAssessment(ctx context.Context, q Querier, id int) (model.Assessment, error) {
	a, err := scanAssessment(q.QueryRowContext(ctx,
		`SELECT id, job_id, structure FROM assessment WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, errors.Wrapf(model.ErrNotFound, "assessment %d", id)
	}
	if err != nil {
		return a, transient("db.get_assessment", err)
	}
	return a, nil
}

func (s *Store) GetAssessment(ctx context.Context, id int) (model.Assessment, error) {
	return GetAssessment(ctx, s.db, id)
}

func scanAssessment(row *sql.Row) (a model.Assessment, err error) {
	var data string
	if err = row.Scan(&a.ID, &a.JobID, &data); err != nil {
		return
	}
	err = json.Unmarshal([]byte(data), &a.Structure)
	return
}
