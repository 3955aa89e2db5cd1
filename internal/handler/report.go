package handler

import (
	"net/http"

	"github.com/Travelsia/Backend/internal/domain"
)

// GetFinancialSummary handles GET /itineraries/{id}/financial-summary.
// The budget block is present only when the itinerary came from a plan request.
func (s *Server) GetFinancialSummary(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.itineraries.FinancialSummary(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewFinancialSummaryView(summary, requestLanguage(r)))
}

// GetIntegrity handles GET /itineraries/{id}/integrity.
// Stored overlaps come back as valid=false rather than a load error.
func (s *Server) GetIntegrity(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.itineraries.ValidateIntegrity(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetOccupancy handles GET /itineraries/{id}/occupancy.
func (s *Server) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.itineraries.OccupancyReport(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewDayOccupancyViews(report))
}
