package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

const candidateColumns = `c.id, c.name, c.email, c.stage, c.job_id, c.avatar, c.created_at`

func scanCandidate(row interface{ Scan(...any) error }, extra ...any) (c model.Candidate, err error) {
	dest := append([]any{&c.ID, &c.Name, &c.Email, &c.Stage, &c.JobID, &c.Avatar, &c.CreatedAt}, extra...)
	err = row.Scan(dest...)
	return
}

// ListCandidates returns candidates ordered by name, optionally only the
// ones in the given stage.
func (s *Store) ListCandidates(ctx context.Context, stage model.Stage) ([]model.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidate c`
	var args []any
	if stage != "" {
		query += ` WHERE c.stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY c.name, c.id`
	return s.queryCandidates(ctx, "db.list_candidates", query, args...)
}

// SampleCandidates returns up to n candidates picked at random.
func (s *Store) SampleCandidates(ctx context.Context, n int) ([]model.Candidate, error) {
	return s.queryCandidates(ctx, "db.sample_candidates",
		`SELECT `+candidateColumns+` FROM candidate c ORDER BY RANDOM() LIMIT ?`, n)
}

func (s *Store) queryCandidates(ctx context.Context, code, query string, args ...any) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transient(code, err)
	}
	defer rows.Close()

	candidates := []model.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, transient(code+".scan", err)
		}
		candidates = append(candidates, c)
	}
	if err = rows.Err(); err != nil {
		return nil, transient(code+".rows", err)
	}
	return candidates, nil
}

// CandidateRefs lists the id and name of every candidate.
func CandidateRefs(ctx context.Context, q Querier) ([]model.CandidateRef, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM candidate ORDER BY id`)
	if err != nil {
		return nil, transient("db.list_candidate_refs", err)
	}
	defer rows.Close()

	var refs []model.CandidateRef
	for rows.Next() {
		var ref model.CandidateRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, transient("db.list_candidate_refs.scan", err)
		}
		refs = append(refs, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, transient("db.list_candidate_refs.rows", err)
	}
	return refs, nil
}

func (s *Store) ListCandidateRefs(ctx context.Context) ([]model.CandidateRef, error) {
	return CandidateRefs(ctx, s.db)
}

// GetCandidate returns the candidate together with the title of its job.
func (s *Store) GetCandidate(ctx context.Context, id int) (model.Candidate, error) {
	var jobTitle sql.NullString
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+`, j.title
		FROM candidate c
		LEFT OUTER JOIN job j ON (j.id = c.job_id)
		WHERE c.id = ?`,
		id,
	), &jobTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return c, errors.Wrapf(model.ErrNotFound, "candidate %d", id)
	}
	if err != nil {
		return c, transient("db.get_candidate", err)
	}
	c.JobTitle = "N/A"
	if jobTitle.Valid {
		c.JobTitle = jobTitle.String
	}
	return c, nil
}

// MoveCandidate changes the stage of a candidate and records the move on
// its timeline.
func (s *Store) MoveCandidate(ctx context.Context, id int, stage model.Stage) (c model.Candidate, err error) {
	if !stage.Valid() {
		return c, errors.Wrap(model.ErrValidationFailed, "Stage is required.")
	}
	err = s.InTx(ctx, func(tx *sql.Tx) error {
		var old model.Stage
		err := tx.QueryRowContext(ctx, `SELECT stage FROM candidate WHERE id = ?`, id).Scan(&old)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(model.ErrNotFound, "Candidate not found (%d)", id)
		}
		if err != nil {
			return transient("db.move_candidate.get", err)
		}

		if _, err = tx.ExecContext(ctx, `UPDATE candidate SET stage = ? WHERE id = ?`, stage, id); err != nil {
			return transient("db.move_candidate.update", err)
		}
		_, err = AppendTimelineEvent(ctx, tx, model.TimelineEvent{
			CandidateID: id,
			Type:        model.EventStageChange,
			Content:     fmt.Sprintf("Moved from %s to %s", capitalize(string(old)), capitalize(string(stage))),
			Author:      "System",
			Timestamp:   time.Now(),
		})
		if err != nil {
			return err
		}

		c, err = scanCandidate(tx.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidate c WHERE c.id = ?`, id))
		if err != nil {
			return transient("db.move_candidate.reload", err)
		}
		return nil
	})
	return
}

// AddNote appends a note written by the HR team to a candidate's timeline.
func (s *Store) AddNote(ctx context.Context, candidateID int, content string) (model.TimelineEvent, error) {
	if strings.TrimSpace(content) == "" {
		return model.TimelineEvent{}, errors.Wrap(model.ErrValidationFailed, "Note content cannot be empty.")
	}
	if err := s.candidateExists(ctx, s.db, candidateID); err != nil {
		return model.TimelineEvent{}, err
	}
	return AppendTimelineEvent(ctx, s.db, model.TimelineEvent{
		CandidateID: candidateID,
		Type:        model.EventNote,
		Content:     content,
		Author:      "HR Manager",
		Timestamp:   time.Now(),
	})
}

func (s *Store) candidateExists(ctx context.Context, q Querier, id int) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM candidate WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(model.ErrNotFound, "candidate %d", id)
	}
	if err != nil {
		return transient("db.get_candidate", err)
	}
	return nil
}

func insertCandidate(ctx context.Context, stmt *sql.Stmt, c model.Candidate) (int, error) {
	var id int
	err := stmt.QueryRowContext(ctx, c.Name, c.Email, c.Stage, c.JobID, c.Avatar, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, transient("db.insert_candidate", err)
	}
	return id, nil
}

const insertCandidateSQL = `
	INSERT INTO candidate (name, email, stage, job_id, avatar, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id`

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
