package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Travelsia/Backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"itinerary_id", "itinerary_title", "base_currency", "state",
	"day_number", "day_date",
	"activity_id", "activity_title", "activity_type", "activity_state",
	"place", "starts_at", "ends_at", "cost_amount",
}

// GetExport handles GET /itineraries/{id}/export.
// It returns one row per activity, with itinerary and day fields repeated.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		requestError(w, fmt.Sprintf("unsupported export format %q", format), map[string]any{"format": "oneof=csv json"})
		return
	}

	rows, err := s.itineraries.Export(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}

	if format == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.csv"`, id))
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(csvRecord(r))
	}
	w.Flush()
	return &buf
}

// csvRecord encodes an ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func csvRecord(r domain.ExportRow) []string {
	return []string{
		r.ItineraryID,
		r.ItineraryTitle,
		r.BaseCurrency,
		r.State,
		strconv.Itoa(r.DayNumber),
		r.DayDate,
		r.ActivityID,
		r.ActivityTitle,
		r.ActivityType,
		r.ActivityState,
		r.Place,
		formatOptionalTime(r.StartsAt),
		formatOptionalTime(r.EndsAt),
		r.CostAmount,
	}
}

// formatOptionalTime returns the local wall-clock form of t, or "" if t is nil.
// Activity times carry no zone, so no offset is written.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
