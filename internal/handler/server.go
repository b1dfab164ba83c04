// Package handler implements the HTTP adapter the map front end drives.
// All handlers are methods on Server. They decode the request, call the
// planning session and encode the result; no planning rules live here.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/service"
	"github.com/pkordes/visa-planner/internal/visa"
)

// PlannerServicer defines the session operations the handlers depend on.
// It is declared here, in the consumer, so handler tests can inject a mock
// without a store or a visa upstream.
type PlannerServicer interface {
	State() service.State
	SelectNationality(ctx context.Context, code string) (service.State, error)
	Click(ctx context.Context, in service.ClickInput) (service.ClickResult, error)
	RemoveAt(ctx context.Context, index int) (service.State, error)
	Move(ctx context.Context, from, to int) (service.State, error)
	Update(ctx context.Context, index int, patch domain.CountryPatch) (service.State, error)
	Undo(ctx context.Context) (service.State, error)
	Reset(ctx context.Context) (service.State, error)
	Plan(ctx context.Context) (service.State, error)
	CancelPlanning(ctx context.Context) (service.State, error)
	Save(ctx context.Context) (service.State, error)
	RefreshVisa(ctx context.Context) (service.State, error)
	VisaFreeDestinations() ([]string, error)
	Export() (domain.ExportDocument, error)
	ShareText() (string, error)
	ShareQR(size int) ([]byte, error)
	GeometryCategory(id string, visaFreeOnly bool) service.Category
	ResolveNationality(ctx context.Context, code string) visa.Result
	ResolveCountry(ctx context.Context, passport, destination string) (domain.VisaRequirement, *visa.ServiceError)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	planner PlannerServicer
	log     *slog.Logger
}

// NewServer constructs the Server. A nil logger falls back to slog.Default.
func NewServer(planner PlannerServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{planner: planner, log: log}
}

// Routes registers every endpoint on a fresh chi router. Cross-cutting
// middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/nationalities", s.ListNationalities)
	r.Get("/countries/{geographyId}", s.GetCountry)
	r.Get("/geometries/{geographyId}/category", s.GetGeometryCategory)

	r.Route("/visa/{passport}", func(r chi.Router) {
		r.Get("/", s.GetVisaRequirements)
		r.Get("/{destination}", s.GetVisaRequirement)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Put("/nationality", s.PutNationality)
		r.Post("/clicks", s.PostClick)

		r.Delete("/route/{index}", s.DeleteRouteEntry)
		r.Patch("/route/{index}", s.PatchRouteEntry)
		r.Post("/route/moves", s.PostMove)

		r.Post("/undo", s.PostUndo)
		r.Post("/reset", s.PostReset)
		r.Post("/plan", s.PostPlan)
		r.Delete("/plan", s.DeletePlan)
		r.Post("/save", s.PostSave)

		r.Post("/visa/refresh", s.PostVisaRefresh)
		r.Get("/visa-free", s.GetVisaFree)

		r.Get("/export", s.GetExport)
		r.Get("/share", s.GetShare)
		r.Get("/share.png", s.GetShareQR)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("no route for "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", r.Method+" is not allowed on "+r.URL.Path))
	})
	return r
}
