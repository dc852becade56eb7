package database

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

var (
	reSpaces  = regexp.MustCompile(`\s+`)
	reNoIdent = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify derives the URL slug of a job title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = reSpaces.ReplaceAllLiteralString(slug, "-")
	return reNoIdent.ReplaceAllLiteralString(slug, "")
}

type JobFilter struct {
	Search      string
	Status      model.JobStatus // empty means all
	Tags        []string        // a job must carry every tag
	Page        int
	PageSize    int
	Unpaginated bool
}

type JobPage struct {
	Jobs       []model.Job `json:"jobs"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page,omitempty"`
	PageSize   int         `json:"pageSize,omitempty"`
}

// JobPatch carries the fields of a partial job update; nil fields are
// left untouched.
type JobPatch struct {
	Title       *string          `json:"title"`
	Status      *model.JobStatus `json:"status"`
	Tags        *[]string        `json:"tags"`
	Description *string          `json:"description"`
}

const jobColumns = `id, title, slug, status, tags, description, sort_order, created_at`

func scanJob(row interface{ Scan(...any) error }) (job model.Job, err error) {
	var tags string
	err = row.Scan(&job.ID, &job.Title, &job.Slug, &job.Status, &tags, &job.Description, &job.Order, &job.CreatedAt)
	if err != nil {
		return
	}
	err = json.Unmarshal([]byte(tags), &job.Tags)
	return
}

func (s *Store) ListJobs(ctx context.Context, filter JobFilter) (JobPage, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += ` AND lower(title) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY sort_order, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return JobPage{}, transient("db.list_jobs", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return JobPage{}, transient("db.list_jobs.scan", err)
		}
		if hasAllTags(job.Tags, filter.Tags) {
			jobs = append(jobs, job)
		}
	}
	if err = rows.Err(); err != nil {
		return JobPage{}, transient("db.list_jobs.rows", err)
	}

	page := JobPage{Jobs: jobs, TotalCount: len(jobs)}
	if filter.Unpaginated {
		return page, nil
	}

	page.Page, page.PageSize = filter.Page, filter.PageSize
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 10
	}
	from := (page.Page - 1) * page.PageSize
	to := from + page.PageSize
	if from > len(jobs) {
		from = len(jobs)
	}
	if to > len(jobs) {
		to = len(jobs)
	}
	page.Jobs = jobs[from:to]
	return page, nil
}

func hasAllTags(tags, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := map[string]bool{}
	for _, t := range tags {
		have[t] = true
	}
	for _, w := range wanted {
		if !have[w] {
			return false
		}
	}
	return true
}

func (s *Store) GetJob(ctx context.Context, id int) (model.Job, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return job, errors.Wrapf(model.ErrNotFound, "job %d", id)
	}
	if err != nil {
		return job, transient("db.get_job", err)
	}
	return job, nil
}

func (s *Store) CreateJob(ctx context.Context, job model.Job) (created model.Job, err error) {
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		return created, errors.Wrap(model.ErrValidationFailed, "Title is required")
	}
	job.Slug = Slugify(job.Title)
	switch job.Status {
	case "":
		job.Status = model.JobActive
	case model.JobActive, model.JobArchived:
	default:
		return created, errors.Wrapf(model.ErrValidationFailed, "unknown status %q", job.Status)
	}
	if job.Tags == nil {
		job.Tags = []string{}
	}
	job.CreatedAt = time.Now()

	err = s.InTx(ctx, func(tx *sql.Tx) error {
		if err := checkSlugFree(ctx, tx, job.Slug, 0, "A job with this title already exists."); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) + 1 FROM job`).Scan(&job.Order); err != nil {
			return transient("db.insert_job.order", err)
		}
		id, err := insertJob(ctx, tx, job)
		if err != nil {
			return err
		}
		job.ID = id
		return nil
	})
	if err != nil {
		return
	}
	return job, nil
}

func insertJob(ctx context.Context, q Querier, job model.Job) (int, error) {
	tags, err := json.Marshal(job.Tags)
	if err != nil {
		return 0, errors.Wrap(err, "encode tags")
	}
	var id int
	err = q.QueryRowContext(ctx, `
		INSERT INTO job (title, slug, status, tags, description, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		job.Title, job.Slug, job.Status, string(tags), job.Description, job.Order, job.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, transient("db.insert_job", err)
	}
	return id, nil
}

func checkSlugFree(ctx context.Context, q Querier, slug string, exceptID int, msg string) error {
	var id int
	err := q.QueryRowContext(ctx, `SELECT id FROM job WHERE slug = ? AND id != ?`, slug, exceptID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return transient("db.check_slug", err)
	default:
		return errors.Wrap(model.ErrValidationFailed, msg)
	}
}

func (s *Store) UpdateJob(ctx context.Context, id int, patch JobPatch) (job model.Job, err error) {
	err = s.InTx(ctx, func(tx *sql.Tx) error {
		current, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(model.ErrNotFound, "job %d", id)
		}
		if err != nil {
			return transient("db.update_job.get", err)
		}

		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return errors.Wrap(model.ErrValidationFailed, "Title is required")
			}
			current.Title = title
			current.Slug = Slugify(title)
			if err := checkSlugFree(ctx, tx, current.Slug, id, "Another job with this title already exists."); err != nil {
				return err
			}
		}
		if patch.Status != nil {
			if *patch.Status != model.JobActive && *patch.Status != model.JobArchived {
				return errors.Wrapf(model.ErrValidationFailed, "unknown status %q", *patch.Status)
			}
			current.Status = *patch.Status
		}
		if patch.Tags != nil {
			current.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.Description != nil {
			current.Description = *patch.Description
		}

		tags, err := json.Marshal(current.Tags)
		if err != nil {
			return errors.Wrap(err, "encode tags")
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE job
			SET title = ?, slug = ?, status = ?, tags = ?, description = ?
			WHERE id = ?`,
			current.Title, current.Slug, current.Status, string(tags), current.Description, id,
		)
		if err != nil {
			return transient("db.update_job", err)
		}
		job = current
		return nil
	})
	return
}

// ReorderJob moves a job to position toIndex (0-based) and renumbers the
// order of every job.
func (s *Store) ReorderJob(ctx context.Context, fromID, toIndex int) error {
	return s.InTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM job ORDER BY sort_order, id`)
		if err != nil {
			return transient("db.reorder_jobs.list", err)
		}
		var ids []int
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return transient("db.reorder_jobs.scan", err)
			}
			ids = append(ids, id)
		}
		rows.Close()

		from := -1
		for i, id := range ids {
			if id == fromID {
				from = i
				break
			}
		}
		if from < 0 {
			return errors.Wrapf(model.ErrNotFound, "Job to move not found (%d)", fromID)
		}
		if toIndex < 0 || toIndex >= len(ids) {
			return errors.Wrapf(model.ErrValidationFailed, "target index %d out of range", toIndex)
		}

		moved := ids[from]
		ids = append(ids[:from], ids[from+1:]...)
		ids = append(ids[:toIndex], append([]int{moved}, ids[toIndex:]...)...)

		stmt, err := tx.PrepareContext(ctx, `UPDATE job SET sort_order = ? WHERE id = ?`)
		if err != nil {
			return transient("db.reorder_jobs.prepare", err)
		}
		defer stmt.Close()
		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, i+1, id); err != nil {
				return transient("db.reorder_jobs.update", err)
			}
		}
		return nil
	})
}

// ListTags returns every distinct job tag, sorted.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT value FROM job, json_each(job.tags)`)
	if err != nil {
		return nil, transient("db.list_tags", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, transient("db.list_tags.scan", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, transient("db.list_tags.rows", err)
	}
	sort.Strings(tags)
	return tags, nil
}
