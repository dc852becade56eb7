package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/httpx"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

func GetAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := urlParamID(w, r, "jobId")
		if !ok {
			return
		}

		a, err := app.LoadStructure(r.Context(), jobID)
		if err != nil {
			httpx.LogError(w, r, "load_structure", err)
			return
		}
		render.JSON(w, r, a)
	}
}

type saveResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

func SaveAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := urlParamID(w, r, "jobId")
		if !ok {
			return
		}

		var structure model.Structure
		if err := render.DecodeJSON(r.Body, &structure); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		a, err := app.SaveStructure(r.Context(), jobID, structure)
		if err != nil {
			httpx.LogError(w, r, "save_structure", err)
			return
		}
		render.JSON(w, r, saveResponse{Success: true, ID: a.ID})
	}
}

type editRequest struct {
	Structure model.Structure `json:"structure"`
	Edit      assessment.Edit `json:"edit"`
}

// ApplyEdit runs one builder command against the posted structure and
// returns the result. Nothing is stored.
func ApplyEdit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		structure, err := assessment.Apply(req.Structure, req.Edit)
		if err != nil {
			httpx.LogError(w, r, "apply_edit."+string(req.Edit.Op), err)
			return
		}
		render.JSON(w, r, structure)
	}
}

type previewRequest struct {
	Structure model.Structure `json:"structure"`
	Answers   model.Answers   `json:"responses"`
}

type previewResponse struct {
	Visible map[string]bool               `json:"visible"`
	Rules   map[string]assessment.RuleSet `json:"rules"`
	Errors  map[string][]string           `json:"errors"`
}

// Preview reports, for the posted structure and answers, which questions
// are shown, their rules and the rules the answers currently break.
func Preview(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req previewRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		resp := previewResponse{
			Visible: assessment.Visibility(req.Structure, req.Answers),
			Rules:   map[string]assessment.RuleSet{},
			Errors:  assessment.FieldErrors(assessment.ValidateAnswers(req.Structure, req.Answers)),
		}
		for _, q := range req.Structure.Questions() {
			if rules := assessment.CompileRules(q); len(rules) > 0 {
				resp.Rules[q.ID] = rules
			}
		}
		render.JSON(w, r, resp)
	}
}

type submitRequest struct {
	Answers model.Answers `json:"responses"`
}

type submitResponse struct {
	Success       bool   `json:"success"`
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	ResponseID    int    `json:"responseId"`
}

func SubmitAssessment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assessmentID, ok := urlParamID(w, r, "assessmentId")
		if !ok {
			return
		}

		var req submitRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		res, err := app.Submissions.Submit(r.Context(), assessmentID, req.Answers)
		if err != nil {
			httpx.LogError(w, r, "submit_assessment", err)
			return
		}
		render.JSON(w, r, submitResponse{
			Success:       true,
			CandidateID:   res.CandidateID,
			CandidateName: res.CandidateName,
			ResponseID:    res.ResponseID,
		})
	}
}

type responseView struct {
	Structure model.Structure `json:"structure"`
	Answers   model.Answers   `json:"responses"`
}

func GetAssessmentResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseID, ok := urlParamID(w, r, "responseId")
		if !ok {
			return
		}

		resp, err := app.Submissions.FetchResponse(r.Context(), responseID)
		if err != nil {
			httpx.LogError(w, r, "get_response", err)
			return
		}
		render.JSON(w, r, responseView{Structure: resp.Structure, Answers: resp.Answers})
	}
}
