package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
)

// ---- helpers ---------------------------------------------------------------

var tripStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func slotOn(t *testing.T, date time.Time, start, end string) domain.TimeSlot {
	t.Helper()
	s, err := domain.ParseTimeSlot(date, start, end)
	require.NoError(t, err)
	return s
}

func slot(t *testing.T, start, end string) domain.TimeSlot {
	t.Helper()
	return slotOn(t, tripStart, start, end)
}

func money(t *testing.T, amount, currency string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(amount, currency)
	require.NoError(t, err)
	return m
}

func place(t *testing.T, label string) domain.Place {
	t.Helper()
	p, err := domain.NewPlace(label, nil, nil)
	require.NoError(t, err)
	return p
}

func activity(t *testing.T, title string, s domain.TimeSlot, cost domain.Money) *domain.Activity {
	t.Helper()
	a, err := domain.NewActivity(domain.ActivityParams{
		Title:    title,
		Type:     domain.ActivityTypeVisit,
		Place:    place(t, "Old Town"),
		TimeSlot: s,
		Cost:     cost,
	})
	require.NoError(t, err)
	return a
}

func usdActivity(t *testing.T, title, start, end, amount string) *domain.Activity {
	t.Helper()
	return activity(t, title, slot(t, start, end), money(t, amount, "USD"))
}

func dates(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

// newItinerary returns a 3-day USD itinerary starting on tripStart.
func newItinerary(t *testing.T) *domain.Itinerary {
	t.Helper()
	it, err := domain.NewItinerary(domain.NewItineraryParams{
		OwnerID:      uuid.New(),
		Title:        "Lisbon long weekend",
		Dates:        dates(t, "2025-06-01", "2025-06-03"),
		BaseCurrency: "USD",
	})
	require.NoError(t, err)
	return it
}
