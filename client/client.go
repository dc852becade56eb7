// Package client is a typed client of the TalentFlow HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/model"
)

type Client struct {
	baseURL string
	client  *http.Client
}

// New constructs a client for the API mounted at baseURL, e.g.
// http://localhost:8080/api.
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: 30 * time.Second}}
}

// APIError is a non 2xx reply. It matches the model error kind of its
// status code.
type APIError struct {
	Status  int
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return target == model.ErrValidationFailed
	case http.StatusNotFound:
		return target == model.ErrNotFound
	case http.StatusPreconditionFailed:
		return target == model.ErrPreconditionFailed
	}
	return e.Status >= 500 && target == model.ErrTransient
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(model.ErrTransient, "%s %s: %s", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(model.ErrTransient, "read %s %s: %s", method, path, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decode %s %s", method, path)
}

// JobQuery selects the jobs listed by ListJobs. The zero value lists the
// first page of every job.
type JobQuery struct {
	Search      string
	Status      model.JobStatus
	Tags        []string
	Page        int
	PageSize    int
	Unpaginated bool
}

func (q JobQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Unpaginated {
		v.Set("unpaginated", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListJobs(ctx context.Context, q JobQuery) (page database.JobPage, err error) {
	err = c.do(ctx, http.MethodGet, "/jobs"+q.encode(), nil, &page)
	return
}

func (c *Client) CreateJob(ctx context.Context, title, description string, tags []string) (job model.Job, err error) {
	in := map[string]any{"title": title, "description": description, "tags": tags}
	err = c.do(ctx, http.MethodPost, "/jobs", in, &job)
	return
}

func (c *Client) GetJob(ctx context.Context, id int) (job model.Job, err error) {
	err = c.do(ctx, http.MethodGet, "/jobs/"+strconv.Itoa(id), nil, &job)
	return
}

func (c *Client) UpdateJob(ctx context.Context, id int, patch database.JobPatch) (job model.Job, err error) {
	err = c.do(ctx, http.MethodPatch, "/jobs/"+strconv.Itoa(id), patch, &job)
	return
}

func (c *Client) ReorderJob(ctx context.Context, fromID, toIndex int) error {
	return c.do(ctx, http.MethodPatch, "/jobs/reorder", map[string]int{"fromId": fromID, "toIndex": toIndex}, nil)
}

func (c *Client) ListTags(ctx context.Context) (tags []string, err error) {
	err = c.do(ctx, http.MethodGet, "/tags", nil, &tags)
	return
}

func (c *Client) ListCandidates(ctx context.Context, stage model.Stage) (candidates []model.Candidate, err error) {
	path := "/candidates"
	if stage != "" {
		path += "?stage=" + url.QueryEscape(string(stage))
	}
	err = c.do(ctx, http.MethodGet, path, nil, &candidates)
	return
}

func (c *Client) SampleCandidates(ctx context.Context) (candidates []model.Candidate, err error) {
	err = c.do(ctx, http.MethodGet, "/candidates/sample", nil, &candidates)
	return
}

func (c *Client) GetCandidate(ctx context.Context, id int) (candidate model.Candidate, err error) {
	err = c.do(ctx, http.MethodGet, "/candidates/"+strconv.Itoa(id), nil, &candidate)
	return
}

func (c *Client) MoveCandidate(ctx context.Context, id int, stage model.Stage) (candidate model.Candidate, err error) {
	err = c.do(ctx, http.MethodPatch, "/candidates/"+strconv.Itoa(id), map[string]model.Stage{"stage": stage}, &candidate)
	return
}

func (c *Client) AddNote(ctx context.Context, candidateID int, content string) (note model.TimelineEvent, err error) {
	err = c.do(ctx, http.MethodPost, "/candidates/"+strconv.Itoa(candidateID)+"/notes", map[string]string{"content": content}, &note)
	return
}

func (c *Client) Timeline(ctx context.Context, candidateID int) (events []model.TimelineEvent, err error) {
	err = c.do(ctx, http.MethodGet, "/candidates/"+strconv.Itoa(candidateID)+"/timeline", nil, &events)
	return
}

func (c *Client) LoadAssessment(ctx context.Context, jobID int) (a model.Assessment, err error) {
	err = c.do(ctx, http.MethodGet, "/assessments/"+strconv.Itoa(jobID), nil, &a)
	return
}

// SaveAssessment stores s as the assessment of the job and returns the
// assessment ID.
func (c *Client) SaveAssessment(ctx context.Context, jobID int, s model.Structure) (int, error) {
	var out struct {
		ID int `json:"id"`
	}
	err := c.do(ctx, http.MethodPut, "/assessments/"+strconv.Itoa(jobID), s, &out)
	return out.ID, err
}

func (c *Client) ApplyEdit(ctx context.Context, s model.Structure, e assessment.Edit) (out model.Structure, err error) {
	in := map[string]any{"structure": s, "edit": e}
	err = c.do(ctx, http.MethodPost, "/assessments/edits", in, &out)
	return
}

type Preview struct {
	Visible map[string]bool               `json:"visible"`
	Rules   map[string]assessment.RuleSet `json:"rules"`
	Errors  map[string][]string           `json:"errors"`
}

func (c *Client) Preview(ctx context.Context, s model.Structure, answers model.Answers) (p Preview, err error) {
	in := map[string]any{"structure": s, "responses": answers}
	err = c.do(ctx, http.MethodPost, "/assessments/preview", in, &p)
	return
}

type SubmitResult struct {
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	ResponseID    int    `json:"responseId"`
}

func (c *Client) Submit(ctx context.Context, assessmentID int, answers model.Answers) (res SubmitResult, err error) {
	in := map[string]any{"responses": answers}
	err = c.do(ctx, http.MethodPost, "/assessments/"+strconv.Itoa(assessmentID)+"/submit", in, &res)
	return
}

// FetchResponse returns a stored answer set and the structure it was
// answered against.
func (c *Client) FetchResponse(ctx context.Context, responseID int) (model.Structure, model.Answers, error) {
	var out struct {
		Structure model.Structure `json:"structure"`
		Answers   model.Answers   `json:"responses"`
	}
	err := c.do(ctx, http.MethodGet, "/assessment-responses/"+strconv.Itoa(responseID), nil, &out)
	return out.Structure, out.Answers, err
}

func (c *Client) Theme(ctx context.Context) (string, error) {
	var out struct {
		Theme string `json:"theme"`
	}
	err := c.do(ctx, http.MethodGet, "/settings/theme", nil, &out)
	return out.Theme, err
}

func (c *Client) SetTheme(ctx context.Context, theme string) error {
	return c.do(ctx, http.MethodPut, "/settings/theme", map[string]string{"theme": theme}, nil)
}
