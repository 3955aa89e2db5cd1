package repo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/repo"
	"github.com/Travelsia/Backend/testutil"
)

// newTestRepos returns both repositories sharing one transaction that is rolled
// back when the test finishes.
func newTestRepos(t *testing.T) (repo.ItineraryRepo, repo.PlanRequestRepo) {
	t.Helper()
	tx := testutil.BeginTx(t)
	return repo.NewItineraryRepo(tx), repo.NewPlanRequestRepo(tx)
}

func TestItineraryRepo_Create_GetByID_RoundTrip(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	it := itineraryFixture(t)
	require.NoError(t, r.Create(ctx, it))
	assert.Equal(t, 1, it.Version())

	got, err := r.GetByID(ctx, it.ID())
	require.NoError(t, err)

	assert.Equal(t, it.ID(), got.ID())
	assert.Equal(t, it.Title(), got.Title())
	assert.Equal(t, "USD", got.BaseCurrency())
	assert.Equal(t, domain.ItineraryDraft, got.State())
	assert.Equal(t, 1, got.Version())
	assert.Equal(t, it.DayCount(), got.DayCount())
	assert.Equal(t, it.ActivitySummary(), got.ActivitySummary())

	wantTotal, err := it.TotalCost()
	require.NoError(t, err)
	gotTotal, err := got.TotalCost()
	require.NoError(t, err)
	assert.True(t, wantTotal.Equal(gotTotal), "total mismatch: %s vs %s", wantTotal, gotTotal)

	day1, ok := got.Day(1)
	require.True(t, ok)
	acts := day1.Activities()
	require.Len(t, acts, 2)
	assert.Equal(t, "Castle tour", acts[0].Title(), "activities load in start order")
	lat, lng, ok := acts[0].Place().Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 38.7139, lat, 1e-9)
	assert.InDelta(t, -9.1334, lng, 1e-9)
	assert.JSONEq(t, `{"guide":"Ana"}`, string(acts[0].Metadata()))
	assert.True(t, acts[0].TimeSlot().Start().Equal(at(t, "2025-06-01T09:00:00")))
	assert.Equal(t, domain.ActivityConfirmed, acts[0].State())
	assert.Nil(t, acts[1].Metadata())
}

func TestItineraryRepo_GetByID_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryRepo_GetSnapshot_KeepsStoredOverlap(t *testing.T) {
	tx := testutil.BeginTx(t)
	r := repo.NewItineraryRepo(tx)
	ctx := context.Background()

	it := itineraryFixture(t)
	require.NoError(t, r.Create(ctx, it))
	day1, ok := it.Day(1)
	require.True(t, ok)

	_, err := tx.Exec(ctx, `
		INSERT INTO activities (id, day_id, title, type, place_label, start_time, end_time, cost_amount, cost_currency)
		VALUES ($1, $2, 'Double booked', 'VISIT', 'Baixa', $3, $4, 0, 'USD')`,
		uuid.New(), day1.ID(), at(t, "2025-06-01T10:00:00"), at(t, "2025-06-01T11:00:00"))
	require.NoError(t, err)

	_, err = r.GetByID(ctx, it.ID())
	assert.ErrorIs(t, err, domain.ErrScheduleConflict)

	rec, days, err := r.GetSnapshot(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, it.ID(), rec.ID)
	require.Len(t, days, 3)
	assert.Len(t, days[0].Activities, 3)

	report, err := domain.AuditItinerary(days)
	require.NoError(t, err)
	assert.False(t, report.Valid)
}

func TestItineraryRepo_GetSnapshot_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	_, _, err := r.GetSnapshot(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryRepo_Save_ReplacesChildren(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	it := itineraryFixture(t)
	require.NoError(t, r.Create(ctx, it))

	day1, _ := it.Day(1)
	removed := day1.Activities()[1].ID()
	require.NoError(t, it.RemoveActivity(1, removed))
	require.NoError(t, it.AddActivity(3, activityFixture(t, "Fado night", "2025-06-03T20:00:00", "2025-06-03T22:00:00", "45")))
	require.NoError(t, it.Retitle("Lisbon, revised"))
	require.NoError(t, it.Publish())

	require.NoError(t, r.Save(ctx, it))
	assert.Equal(t, 2, it.Version())

	got, err := r.GetByID(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, "Lisbon, revised", got.Title())
	assert.Equal(t, domain.ItineraryPublished, got.State())
	assert.Equal(t, 2, got.Version())

	d1, _ := got.Day(1)
	assert.Nil(t, d1.Activity(removed))
	d3, _ := got.Day(3)
	require.Len(t, d3.Activities(), 1)
	assert.Equal(t, "Fado night", d3.Activities()[0].Title())
}

func TestItineraryRepo_Save_StaleVersion(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	it := itineraryFixture(t)
	require.NoError(t, r.Create(ctx, it))

	stale, err := r.GetByID(ctx, it.ID())
	require.NoError(t, err)

	require.NoError(t, it.Retitle("First writer"))
	require.NoError(t, r.Save(ctx, it))

	require.NoError(t, stale.Retitle("Second writer"))
	err = r.Save(ctx, stale)

	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 1, stale.Version(), "version untouched on conflict")

	got, err := r.GetByID(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, "First writer", got.Title())
}

func TestItineraryRepo_Save_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	err := r.Save(context.Background(), itineraryFixture(t))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryRepo_ListByOwner_Paginates(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	for range 3 {
		it := itineraryFixture(t, withOwner(owner))
		require.NoError(t, r.Create(ctx, it))
	}
	require.NoError(t, r.Create(ctx, itineraryFixture(t)), "other owner")

	page, limit := 1, 2
	items, total, err := r.ListByOwner(ctx, owner, domain.NewPagination(&page, &limit))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)
	for _, s := range items {
		assert.Equal(t, owner, s.OwnerID)
	}

	page = 2
	items, _, err = r.ListByOwner(ctx, owner, domain.NewPagination(&page, &limit))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestItineraryRepo_ListByPlanRequest(t *testing.T) {
	r, prs := newTestRepos(t)
	ctx := context.Background()

	pr := planRequestFixture(t)
	require.NoError(t, prs.Create(ctx, pr))

	it, err := domain.NewItineraryFromPlanRequest(pr, "")
	require.NoError(t, err)
	require.NoError(t, r.Create(ctx, it))
	require.NoError(t, r.Create(ctx, itineraryFixture(t)), "unrelated itinerary")

	items, err := r.ListByPlanRequest(ctx, pr.ID())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, it.ID(), items[0].ID)
	assert.Equal(t, pr.ID(), items[0].PlanRequestID)
	assert.Equal(t, "Trip to Lisbon", items[0].Title)
}

func TestItineraryRepo_Delete(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	it := itineraryFixture(t)
	require.NoError(t, r.Create(ctx, it))

	require.NoError(t, r.Delete(ctx, it.ID()))

	_, err := r.GetByID(ctx, it.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryRepo_Delete_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- helpers ----------------------------------------------------------------

type itineraryOption func(*domain.NewItineraryParams)

func withOwner(id uuid.UUID) itineraryOption {
	return func(p *domain.NewItineraryParams) { p.OwnerID = id }
}

// itineraryFixture returns a 3-day USD itinerary with a confirmed, geotagged
// activity and a proposed one on day 1.
func itineraryFixture(t *testing.T, opts ...itineraryOption) *domain.Itinerary {
	t.Helper()
	p := domain.NewItineraryParams{
		OwnerID:      uuid.New(),
		Title:        "Lisbon long weekend",
		Description:  "Three days by the Tagus",
		Dates:        datesFixture(t, "2025-06-01", "2025-06-03"),
		BaseCurrency: "USD",
	}
	for _, o := range opts {
		o(&p)
	}
	it, err := domain.NewItinerary(p)
	require.NoError(t, err)

	lat, lng := 38.7139, -9.1334
	castle, err := domain.NewPlace("Castelo de S. Jorge", &lat, &lng)
	require.NoError(t, err)
	slot, err := domain.NewTimeSlot(at(t, "2025-06-01T09:00:00"), at(t, "2025-06-01T11:30:00"))
	require.NoError(t, err)
	tour, err := domain.NewActivity(domain.ActivityParams{
		Title:    "Castle tour",
		Type:     domain.ActivityTypeVisit,
		Place:    castle,
		TimeSlot: slot,
		Cost:     moneyFixture(t, "15.50", "USD"),
		Metadata: json.RawMessage(`{"guide":"Ana"}`),
	})
	require.NoError(t, err)
	require.NoError(t, it.AddActivity(1, tour))
	require.NoError(t, it.ConfirmActivity(1, tour.ID()))

	require.NoError(t, it.AddActivity(1, activityFixture(t, "Lunch", "2025-06-01T12:00:00", "2025-06-01T13:00:00", "22")))
	return it
}

func activityFixture(t *testing.T, title, start, end, amount string) *domain.Activity {
	t.Helper()
	slot, err := domain.NewTimeSlot(at(t, start), at(t, end))
	require.NoError(t, err)
	a, err := domain.NewActivity(domain.ActivityParams{
		Title:    title,
		Type:     domain.ActivityTypeMeal,
		Place:    placeFixture(t, "Baixa"),
		TimeSlot: slot,
		Cost:     moneyFixture(t, amount, "USD"),
	})
	require.NoError(t, err)
	return a
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02T15:04:05", s)
	require.NoError(t, err)
	return v
}
