package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested itinerary, day, activity or plan
// request does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails structural validation
// (missing field, malformed amount, inverted interval, unknown enum value).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// Structural validation failures. Each wraps ErrValidation so callers that only
// care about the class can test errors.Is(err, ErrValidation).
var (
	ErrMissingField    = fmt.Errorf("%w: missing field", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidCurrency = fmt.Errorf("%w: invalid currency", ErrValidation)
	ErrInvalidInterval = fmt.Errorf("%w: invalid interval", ErrValidation)
	ErrInvalidState    = fmt.Errorf("%w: invalid state", ErrValidation)
	ErrInvalidScalar   = fmt.Errorf("%w: invalid scalar", ErrValidation)
)

// Invariant violations raised by mutators. The aggregate is never modified
// when one of these is returned.
var (
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrNegativeResult   = errors.New("negative result")

	// ErrDayNotFound wraps ErrNotFound so a generic 404 mapping still applies.
	ErrDayNotFound = fmt.Errorf("day %w", ErrNotFound)
)

// State machine violations.
var (
	ErrIllegalTransition     = errors.New("illegal transition")
	ErrItineraryLocked       = errors.New("itinerary locked")
	ErrAlreadyPublished      = errors.New("itinerary already published")
	ErrCannotPublishArchived = errors.New("cannot publish archived itinerary")
)

// ErrEmptyItinerary is returned when a per-day average is requested for a
// date range that resolves to zero days.
var ErrEmptyItinerary = errors.New("empty itinerary")

// ErrConcurrentModification is returned by the repository when a save is based
// on a stale version of the itinerary.
var ErrConcurrentModification = errors.New("concurrent modification")

// ScheduleConflictError reports which existing activity blocks a candidate.
type ScheduleConflictError struct {
	DayNumber     int
	CandidateID   uuid.UUID
	ConflictID    uuid.UUID
	ConflictTitle string
	ConflictSlot  TimeSlot
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: day %d: overlaps %q (%s)",
		ErrScheduleConflict, e.DayNumber, e.ConflictTitle, e.ConflictSlot)
}

func (e *ScheduleConflictError) Unwrap() error { return ErrScheduleConflict }

func newScheduleConflict(dayNumber int, candidate uuid.UUID, conflict *Activity) *ScheduleConflictError {
	return &ScheduleConflictError{
		DayNumber:     dayNumber,
		CandidateID:   candidate,
		ConflictID:    conflict.ID(),
		ConflictTitle: conflict.Title(),
		ConflictSlot:  conflict.TimeSlot(),
	}
}

// CurrencyMismatchError names both currencies involved in a rejected operation.
type CurrencyMismatchError struct {
	Expected string
	Actual   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", ErrCurrencyMismatch, e.Expected, e.Actual)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }

// TransitionError describes a rejected activity state change.
type TransitionError struct {
	ActivityID uuid.UUID
	From       ActivityState
	To         ActivityState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: activity %s cannot move from %s to %s", ErrIllegalTransition, e.ActivityID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }
