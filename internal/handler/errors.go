package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Travelsia/Backend/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code, a human-readable
// message and, for structured domain errors, the entities involved.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func errorBody(code, message string, details map[string]any) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// statusMapping pairs a sentinel with its HTTP status and error code. Order
// matters: the first sentinel err matches wins.
var statusMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrDayNotFound, http.StatusNotFound, "day_not_found"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrScheduleConflict, http.StatusConflict, "schedule_conflict"},
	{domain.ErrCurrencyMismatch, http.StatusConflict, "currency_mismatch"},
	{domain.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{domain.ErrItineraryLocked, http.StatusConflict, "itinerary_locked"},
	{domain.ErrAlreadyPublished, http.StatusConflict, "already_published"},
	{domain.ErrCannotPublishArchived, http.StatusConflict, "cannot_publish_archived"},
	{domain.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
	{domain.ErrNegativeResult, http.StatusUnprocessableEntity, "negative_result"},
	{domain.ErrEmptyItinerary, http.StatusUnprocessableEntity, "empty_itinerary"},
}

// writeError maps err to a status and body. Unmapped errors become a 500 with
// a generic message and are logged with the request id.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large", nil))
		return
	}
	if errors.Is(err, errBadRequest) {
		requestError(w, strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "), nil)
		return
	}
	for _, m := range statusMapping {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, errorBody(m.code, unwrapMessage(err), errorDetails(err)))
			return
		}
	}
	s.log.ErrorContext(r.Context(), "unhandled error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error", nil))
}

// requestError reports a body or parameter rejected before reaching the service layer.
func requestError(w http.ResponseWriter, message string, details map[string]any) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", message, details))
}

// errorDetails exposes the fields of structured domain errors.
func errorDetails(err error) map[string]any {
	var conflict *domain.ScheduleConflictError
	if errors.As(err, &conflict) {
		return map[string]any{
			"day_number":              conflict.DayNumber,
			"activity_id":             conflict.CandidateID,
			"conflicting_activity_id": conflict.ConflictID,
			"conflicting_title":       conflict.ConflictTitle,
			"conflicting_starts_at":   conflict.ConflictSlot.Start(),
			"conflicting_ends_at":     conflict.ConflictSlot.End(),
		}
	}
	var mismatch *domain.CurrencyMismatchError
	if errors.As(err, &mismatch) {
		return map[string]any{"expected": mismatch.Expected, "actual": mismatch.Actual}
	}
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return map[string]any{
			"activity_id": transition.ActivityID,
			"from":        transition.From,
			"to":          transition.To,
		}
	}
	return nil
}

// unwrapMessage strips the "pkg.Type.Method: " call-site prefixes that layers
// add while wrapping, leaving the domain's own message.
// e.g. "service.ItineraryService.Get: repo.ItineraryRepo.GetByID: not found" -> "not found"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || !isCallSite(head) {
			return msg
		}
		msg = rest
	}
}

// isCallSite reports whether s looks like "service.ItineraryService.Create".
func isCallSite(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	switch parts[0] {
	case "service", "repo":
		return parts[1] != "" && parts[2] != "" && !strings.ContainsAny(s, " \t")
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
