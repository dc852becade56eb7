package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/httpx"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

const sampleSize = 10

func ListCandidates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage := r.URL.Query().Get("stage")
		if stage == "all" {
			stage = ""
		}

		candidates, err := app.ListCandidates(r.Context(), model.Stage(stage))
		if err != nil {
			httpx.LogError(w, r, "list_candidates", err)
			return
		}
		render.JSON(w, r, candidates)
	}
}

func SampleCandidates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := app.SampleCandidates(r.Context(), sampleSize)
		if err != nil {
			httpx.LogError(w, r, "sample_candidates", err)
			return
		}
		render.JSON(w, r, candidates)
	}
}

func GetCandidate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		candidate, err := app.GetCandidate(r.Context(), candidateID)
		if err != nil {
			httpx.LogError(w, r, "get_candidate", err)
			return
		}
		render.JSON(w, r, candidate)
	}
}

type stageRequest struct {
	Stage model.Stage `json:"stage"`
}

func UpdateCandidateStage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		var req stageRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		candidate, err := app.MoveCandidate(r.Context(), candidateID, req.Stage)
		if err != nil {
			httpx.LogError(w, r, "move_candidate", err)
			return
		}
		render.JSON(w, r, candidate)
	}
}

type noteRequest struct {
	Content string `json:"content"`
}

func AddNote(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		var req noteRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		note, err := app.AddNote(r.Context(), candidateID, req.Content)
		if err != nil {
			httpx.LogError(w, r, "add_note", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, note)
	}
}

func GetTimeline(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, ok := urlParamID(w, r, "id")
		if !ok {
			return
		}

		events, err := app.Timeline(r.Context(), candidateID)
		if err != nil {
			httpx.LogError(w, r, "get_timeline", err)
			return
		}
		render.JSON(w, r, events)
	}
}
