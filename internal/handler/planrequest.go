package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/service"
)

// CreatePlanRequestRequest is the body of POST /plan-requests.
type CreatePlanRequestRequest struct {
	OwnerID        uuid.UUID          `json:"owner_id" validate:"required"`
	Destination    string             `json:"destination" validate:"required,max=200"`
	Latitude       *float64           `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64           `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	StartDate      openapi_types.Date `json:"start_date" validate:"required"`
	EndDate        openapi_types.Date `json:"end_date" validate:"required"`
	BudgetAmount   *decimal.Decimal   `json:"budget_amount" validate:"required"`
	BudgetCurrency string             `json:"budget_currency" validate:"required,len=3"`
	Interests      []string           `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}

// CreatePlanRequest handles POST /plan-requests.
func (s *Server) CreatePlanRequest(w http.ResponseWriter, r *http.Request) {
	var body CreatePlanRequestRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	pr, err := s.plans.Create(r.Context(), service.CreatePlanRequestInput{
		OwnerID:        body.OwnerID,
		Destination:    body.Destination,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
		StartDate:      body.StartDate.Time,
		EndDate:        body.EndDate.Time,
		BudgetAmount:   *body.BudgetAmount,
		BudgetCurrency: body.BudgetCurrency,
		Interests:      body.Interests,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePlanRequest(w, r, http.StatusCreated, pr)
}

// GetPlanRequest handles GET /plan-requests/{planRequestID}.
func (s *Server) GetPlanRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "planRequestID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pr, err := s.plans.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePlanRequest(w, r, http.StatusOK, pr)
}

// CompletePlanRequest handles POST /plan-requests/{planRequestID}/complete.
func (s *Server) CompletePlanRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "planRequestID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pr, err := s.plans.Complete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePlanRequest(w, r, http.StatusOK, pr)
}

// ListPlanRequestItineraries handles GET /plan-requests/{planRequestID}/itineraries.
func (s *Server) ListPlanRequestItineraries(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "planRequestID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.itineraries.ListByPlanRequest(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]domain.ItinerarySummaryView, 0, len(items))
	for _, it := range items {
		out = append(out, domain.NewItinerarySummaryView(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writePlanRequest(w http.ResponseWriter, r *http.Request, status int, pr *domain.PlanRequest) {
	view, err := domain.NewPlanRequestView(pr, requestLanguage(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}
