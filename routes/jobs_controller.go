package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/httpx"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

func ListJobs(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.JobFilter{
			Search:      query.Get("search"),
			Unpaginated: query.Get("unpaginated") == "true",
			Page:        queryInt(r, "page", 1),
			PageSize:    queryInt(r, "pageSize", 10),
		}
		if status := query.Get("status"); status != "" && status != "all" {
			filter.Status = model.JobStatus(status)
		}
		if tags := query.Get("tags"); tags != "" {
			filter.Tags = strings.Split(tags, ",")
		}

		page, err := app.ListJobs(r.Context(), filter)
		if err != nil {
			httpx.LogError(w, r, "list_jobs", err)
			return
		}
		render.JSON(w, r, page)
	}
}

type jobRequest struct {
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func CreateJob(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jobRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		job, err := app.CreateJob(r.Context(), model.Job{
			Title:       req.Title,
			Tags:        req.Tags,
			Description: req.Description,
		})
		if err != nil {
			httpx.LogError(w, r, "create_job", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, job)
	}
}

func GetJob(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		job, err := app.GetJob(r.Context(), jobID)
		if err != nil {
			httpx.LogError(w, r, "get_job", err)
			return
		}
		render.JSON(w, r, job)
	}
}

func UpdateJob(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		var patch database.JobPatch
		if err := render.DecodeJSON(r.Body, &patch); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		job, err := app.UpdateJob(r.Context(), jobID, patch)
		if err != nil {
			httpx.LogError(w, r, "update_job", err)
			return
		}
		render.JSON(w, r, job)
	}
}

type reorderRequest struct {
	FromID  int `json:"fromId"`
	ToIndex int `json:"toIndex"`
}

func ReorderJobs(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.ReorderJob(r.Context(), req.FromID, req.ToIndex); err != nil {
			httpx.LogError(w, r, "reorder_jobs", err)
			return
		}
		render.JSON(w, r, success{true})
	}
}

func ListTags(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := app.ListTags(r.Context())
		if err != nil {
			httpx.LogError(w, r, "list_tags", err)
			return
		}
		render.JSON(w, r, tags)
	}
}
