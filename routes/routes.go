package routes

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(middlewares.Simulate(app.Simulate, rand.New(rand.NewSource(time.Now().UnixNano()))))

	api.Route("/jobs", func(r chi.Router) {
		r.Get("/", ListJobs(app))
		r.Post("/", CreateJob(app))
		r.Patch("/reorder", ReorderJobs(app))
		r.Get(`/{id:^\d+$}`, GetJob(app))
		r.Patch(`/{id:^\d+$}`, UpdateJob(app))
	})
	api.Get("/tags", ListTags(app))

	api.Route("/candidates", func(r chi.Router) {
		r.Get("/", ListCandidates(app))
		r.Get("/sample", SampleCandidates(app))
		r.Get(`/{id:^\d+$}`, GetCandidate(app))
		r.Patch(`/{id:^\d+$}`, UpdateCandidateStage(app))
		r.Post(`/{id:^\d+$}/notes`, AddNote(app))
		r.Get(`/{id:^\d+$}/timeline`, GetTimeline(app))
	})

	api.Route("/assessments", func(r chi.Router) {
		r.Post("/edits", ApplyEdit(app))
		r.Post("/preview", Preview(app))
		r.Get(`/{jobId:^\d+$}`, GetAssessment(app))
		r.Put(`/{jobId:^\d+$}`, SaveAssessment(app))
		r.Post(`/{assessmentId:^\d+$}/submit`, SubmitAssessment(app))
	})
	api.Get(`/assessment-responses/{responseId:^\d+$}`, GetAssessmentResponse(app))

	api.Get("/settings/theme", GetTheme(app))
	api.Put("/settings/theme", SetTheme(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
