package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/service"
)

// CreateItineraryRequest is the body of POST /itineraries.
type CreateItineraryRequest struct {
	OwnerID      uuid.UUID          `json:"owner_id" validate:"required"`
	Title        string             `json:"title" validate:"required,max=200"`
	Description  string             `json:"description" validate:"max=2000"`
	StartDate    openapi_types.Date `json:"start_date" validate:"required"`
	EndDate      openapi_types.Date `json:"end_date" validate:"required"`
	BaseCurrency string             `json:"base_currency" validate:"required,len=3"`
}

// CreateFromPlanRequest is the optional body of POST /itineraries/from-plan/{planRequestID}.
type CreateFromPlanRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// UpdateItineraryRequest is the body of PATCH /itineraries/{id}.
// Omitted fields are left unchanged.
type UpdateItineraryRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ItineraryListResponse is the body of GET /itineraries.
type ItineraryListResponse struct {
	Data       []domain.ItinerarySummaryView `json:"data"`
	Pagination Pagination                    `json:"pagination"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// CreateItinerary handles POST /itineraries.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var body CreateItineraryRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	it, err := s.itineraries.Create(r.Context(), service.CreateItineraryInput{
		OwnerID:      body.OwnerID,
		Title:        body.Title,
		Description:  body.Description,
		StartDate:    body.StartDate.Time,
		EndDate:      body.EndDate.Time,
		BaseCurrency: body.BaseCurrency,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusCreated, it)
}

// CreateItineraryFromPlan handles POST /itineraries/from-plan/{planRequestID}.
func (s *Server) CreateItineraryFromPlan(w http.ResponseWriter, r *http.Request) {
	planRequestID, err := uuidParam(r, "planRequestID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body CreateFromPlanRequest
	if !s.decode(w, r, &body, true) {
		return
	}
	it, err := s.itineraries.CreateFromPlanRequest(r.Context(), planRequestID, body.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusCreated, it)
}

// ListItineraries handles GET /itineraries?owner_id=&page=&limit=.
// Results are ordered most recently updated first.
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	owner, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		requestError(w, "owner_id query parameter must be a valid UUID", nil)
		return
	}
	page, err := intQuery(r, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.itineraries.ListByOwner(r.Context(), owner, domain.NewPagination(page, limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := make([]domain.ItinerarySummaryView, 0, len(result.Items))
	for _, snap := range result.Items {
		data = append(data, domain.NewItinerarySummaryView(snap))
	}
	writeJSON(w, http.StatusOK, ItineraryListResponse{
		Data:       data,
		Pagination: Pagination{Page: result.Page, Limit: result.Limit, Total: result.Total},
	})
}

// GetItinerary handles GET /itineraries/{id}.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.itineraries.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusOK, it)
}

// UpdateItinerary handles PATCH /itineraries/{id}.
func (s *Server) UpdateItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body UpdateItineraryRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	it, err := s.itineraries.UpdateInfo(r.Context(), id, service.UpdateInfoInput{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusOK, it)
}

// DeleteItinerary handles DELETE /itineraries/{id}.
func (s *Server) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.itineraries.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishItinerary handles POST /itineraries/{id}/publish.
func (s *Server) PublishItinerary(w http.ResponseWriter, r *http.Request) {
	s.itineraryCommand(w, r, s.itineraries.Publish)
}

// ArchiveItinerary handles POST /itineraries/{id}/archive.
func (s *Server) ArchiveItinerary(w http.ResponseWriter, r *http.Request) {
	s.itineraryCommand(w, r, s.itineraries.Archive)
}

// itineraryCommand runs a body-less state change on the itinerary named by {id}.
func (s *Server) itineraryCommand(w http.ResponseWriter, r *http.Request, run func(context.Context, uuid.UUID) (*domain.Itinerary, error)) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := run(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusOK, it)
}

func (s *Server) writeItinerary(w http.ResponseWriter, r *http.Request, status int, it *domain.Itinerary) {
	view, err := domain.NewItineraryView(it, requestLanguage(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}
