package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/service"
)

// AddActivityRequest is the body of POST /itineraries/{id}/days/{day}/activities.
// start_time and end_time take "HH:MM" on the day's date or a full
// "2006-01-02T15:04" instant.
type AddActivityRequest struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Description  string           `json:"description" validate:"max=2000"`
	Type         string           `json:"type" validate:"max=20"`
	PlaceLabel   string           `json:"place_label" validate:"required,max=200"`
	Latitude     *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	StartTime    string           `json:"start_time" validate:"required"`
	EndTime      string           `json:"end_time" validate:"required"`
	CostAmount   *decimal.Decimal `json:"cost_amount"`
	CostCurrency string           `json:"cost_currency" validate:"omitempty,len=3"`
	State        string           `json:"state" validate:"max=20"`
	Metadata     json.RawMessage  `json:"metadata"`
}

// UpdateActivityRequest is the body of PATCH .../activities/{activityID}.
// Omitted fields are left unchanged.
type UpdateActivityRequest struct {
	Title        *string          `json:"title" validate:"omitempty,max=200"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	StartTime    *string          `json:"start_time"`
	EndTime      *string          `json:"end_time"`
	CostAmount   *decimal.Decimal `json:"cost_amount"`
	CostCurrency *string          `json:"cost_currency" validate:"omitempty,len=3"`
}

// FreeSlotsRequest is the body of POST /itineraries/{id}/days/{day}/free-slots.
type FreeSlotsRequest struct {
	DurationMinutes   int        `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	ExcludeActivityID *uuid.UUID `json:"exclude_activity_id"`
}

// AddActivity handles POST /itineraries/{id}/days/{day}/activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	p, err := parseActivityPath(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body AddActivityRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	in := service.ActivityInput{
		Title:        body.Title,
		Description:  body.Description,
		Type:         body.Type,
		PlaceLabel:   body.PlaceLabel,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		CostCurrency: body.CostCurrency,
		State:        body.State,
		Metadata:     body.Metadata,
	}
	if body.CostAmount != nil {
		in.CostAmount = *body.CostAmount
	}
	it, err := s.itineraries.AddActivity(r.Context(), p.itineraryID, p.day, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusCreated, it)
}

// UpdateActivity handles PATCH /itineraries/{id}/days/{day}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	p, err := parseActivityPath(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body UpdateActivityRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	it, err := s.itineraries.UpdateActivity(r.Context(), p.itineraryID, p.day, p.activityID, service.ActivityUpdateInput{
		Title:        body.Title,
		Description:  body.Description,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		CostAmount:   body.CostAmount,
		CostCurrency: body.CostCurrency,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusOK, it)
}

// RemoveActivity handles DELETE /itineraries/{id}/days/{day}/activities/{activityID}.
func (s *Server) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	s.activityCommand(w, r, s.itineraries.RemoveActivity)
}

// ConfirmActivity handles POST .../activities/{activityID}/confirm.
func (s *Server) ConfirmActivity(w http.ResponseWriter, r *http.Request) {
	s.activityCommand(w, r, s.itineraries.ConfirmActivity)
}

// CancelActivity handles POST .../activities/{activityID}/cancel.
func (s *Server) CancelActivity(w http.ResponseWriter, r *http.Request) {
	s.activityCommand(w, r, s.itineraries.CancelActivity)
}

func (s *Server) activityCommand(w http.ResponseWriter, r *http.Request, run func(context.Context, uuid.UUID, int, uuid.UUID) (*domain.Itinerary, error)) {
	p, err := parseActivityPath(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := run(r.Context(), p.itineraryID, p.day, p.activityID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeItinerary(w, r, http.StatusOK, it)
}

// SuggestFreeSlots handles POST /itineraries/{id}/days/{day}/free-slots.
func (s *Server) SuggestFreeSlots(w http.ResponseWriter, r *http.Request) {
	p, err := parseActivityPath(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body FreeSlotsRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	in := service.FreeSlotsInput{DayNumber: p.day, DurationMinutes: body.DurationMinutes}
	if body.ExcludeActivityID != nil {
		in.ExcludeActivityID = *body.ExcludeActivityID
	}
	slots, err := s.itineraries.SuggestFreeSlots(r.Context(), p.itineraryID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewFreeSlotViews(slots))
}
