package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/httpx"
	"github.com/mbolis/talentflow/log"
)

type themeBody struct {
	Theme string `json:"theme"`
}

func GetTheme(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme, err := app.Theme(r.Context())
		if err != nil {
			httpx.LogError(w, r, "get_theme", err)
			return
		}
		render.JSON(w, r, themeBody{theme})
	}
}

func SetTheme(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body themeBody
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.SetTheme(r.Context(), body.Theme); err != nil {
			httpx.LogError(w, r, "set_theme", err)
			return
		}
		render.JSON(w, r, body)
	}
}
