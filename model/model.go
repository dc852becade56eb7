package model

import "time"

type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

type Job struct {
	ID          int       `json:"id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Status      JobStatus `json:"status"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

type Candidate struct {
	ID        int       `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Stage     Stage     `json:"stage"`
	JobID     int       `json:"jobId"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// CandidateRef is the minimal view used to assign submissions.
type CandidateRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type EventType string

const (
	EventNote                EventType = "note"
	EventStageChange         EventType = "stage_change"
	EventAssessmentCompleted EventType = "assessment_completed"
)

type TimelineEvent struct {
	ID           int       `json:"id,omitempty"`
	CandidateID  int       `json:"candidateId"`
	Type         EventType `json:"type"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	AssessmentID int       `json:"assessmentId,omitempty"`
	ResponseID   int       `json:"responseId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type Assessment struct {
	ID        int       `json:"id,omitempty"`
	JobID     int       `json:"jobId"`
	Structure Structure `json:"structure"`
}

// Response is one respondent's submitted answers. It is never updated
// once stored.
type Response struct {
	ID           int       `json:"id"`
	AssessmentID int       `json:"assessmentId"`
	CandidateID  int       `json:"candidateId"`
	Answers      Answers   `json:"responses"`
	Structure    Structure `json:"structure"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
