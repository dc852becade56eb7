package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/talentflow/model"
)

// AppendTimelineEvent stores ev and returns it with its new ID. Events are
// never updated.
func AppendTimelineEvent(ctx context.Context, q Querier, ev model.TimelineEvent) (model.TimelineEvent, error) {
	err := q.QueryRowContext(ctx, `
		INSERT INTO timeline_event (candidate_id, type, content, author, assessment_id, response_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		ev.CandidateID, ev.Type, ev.Content, ev.Author,
		nullID(ev.AssessmentID), nullID(ev.ResponseID), ev.Timestamp,
	).Scan(&ev.ID)
	if err != nil {
		return ev, transient("db.insert_timeline_event", err)
	}
	return ev, nil
}

// Timeline returns the events of a candidate, newest first.
func (s *Store) Timeline(ctx context.Context, candidateID int) ([]model.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, type, content, author, assessment_id, response_id, timestamp
		FROM timeline_event
		WHERE candidate_id = ?
		ORDER BY timestamp DESC, id DESC`,
		candidateID,
	)
	if err != nil {
		return nil, transient("db.get_timeline", err)
	}
	defer rows.Close()

	events := []model.TimelineEvent{}
	for rows.Next() {
		var ev model.TimelineEvent
		var assessmentID, responseID sql.NullInt64
		err = rows.Scan(&ev.ID, &ev.CandidateID, &ev.Type, &ev.Content, &ev.Author, &assessmentID, &responseID, &ev.Timestamp)
		if err != nil {
			return nil, transient("db.get_timeline.scan", err)
		}
		ev.AssessmentID = int(assessmentID.Int64)
		ev.ResponseID = int(responseID.Int64)
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, transient("db.get_timeline.rows", err)
	}
	return events, nil
}

func nullID(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
