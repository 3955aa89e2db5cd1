// Package handler implements the HTTP handlers for the Travelsia API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (health.go, itinerary.go, activity.go, etc.) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/service"
)

// ItineraryServicer defines the itinerary operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type ItineraryServicer interface {
	Create(ctx context.Context, in service.CreateItineraryInput) (*domain.Itinerary, error)
	CreateFromPlanRequest(ctx context.Context, planRequestID uuid.UUID, title string) (*domain.Itinerary, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) (domain.Page[domain.ItinerarySnapshot], error)
	ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error)
	UpdateInfo(ctx context.Context, id uuid.UUID, in service.UpdateInfoInput) (*domain.Itinerary, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddActivity(ctx context.Context, id uuid.UUID, dayNumber int, in service.ActivityInput) (*domain.Itinerary, error)
	UpdateActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID, in service.ActivityUpdateInput) (*domain.Itinerary, error)
	RemoveActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error)
	ConfirmActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error)
	CancelActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error)
	Publish(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
	Archive(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)

	FinancialSummary(ctx context.Context, id uuid.UUID) (domain.FinancialSummary, error)
	ValidateIntegrity(ctx context.Context, id uuid.UUID) (domain.IntegrityReport, error)
	OccupancyReport(ctx context.Context, id uuid.UUID) ([]domain.DayOccupancy, error)
	SuggestFreeSlots(ctx context.Context, id uuid.UUID, in service.FreeSlotsInput) ([]domain.TimeSlot, error)
	Export(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error)
}

// PlanRequestServicer defines the plan request operations the handlers depend on.
type PlanRequestServicer interface {
	Create(ctx context.Context, in service.CreatePlanRequestInput) (*domain.PlanRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
	Complete(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	itineraries ItineraryServicer
	plans       PlanRequestServicer
	log         *slog.Logger
	validate    *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(itineraries ItineraryServicer, plans PlanRequestServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		itineraries: itineraries,
		plans:       plans,
		log:         log,
		validate:    newValidator(),
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the chi router serving the whole API. Cross-cutting
// middleware (request id, logging, CORS) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/plan-requests", func(r chi.Router) {
		r.Post("/", s.CreatePlanRequest)
		r.Route("/{planRequestID}", func(r chi.Router) {
			r.Get("/", s.GetPlanRequest)
			r.Post("/complete", s.CompletePlanRequest)
			r.Get("/itineraries", s.ListPlanRequestItineraries)
		})
	})

	r.Route("/itineraries", func(r chi.Router) {
		r.Post("/", s.CreateItinerary)
		r.Get("/", s.ListItineraries)
		r.Post("/from-plan/{planRequestID}", s.CreateItineraryFromPlan)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetItinerary)
			r.Patch("/", s.UpdateItinerary)
			r.Delete("/", s.DeleteItinerary)
			r.Post("/publish", s.PublishItinerary)
			r.Post("/archive", s.ArchiveItinerary)

			r.Get("/financial-summary", s.GetFinancialSummary)
			r.Get("/integrity", s.GetIntegrity)
			r.Get("/occupancy", s.GetOccupancy)
			r.Get("/export", s.GetExport)

			r.Route("/days/{day}", func(r chi.Router) {
				r.Post("/free-slots", s.SuggestFreeSlots)
				r.Post("/activities", s.AddActivity)
				r.Route("/activities/{activityID}", func(r chi.Router) {
					r.Patch("/", s.UpdateActivity)
					r.Delete("/", s.RemoveActivity)
					r.Post("/confirm", s.ConfirmActivity)
					r.Post("/cancel", s.CancelActivity)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed", nil))
	})
	return r
}
