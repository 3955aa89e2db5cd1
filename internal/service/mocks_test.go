package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/repo"
)

// mockItineraryRepo is a hand-written test double for repo.ItineraryRepo.
// Each method is a function field; set only the ones your test needs.
type mockItineraryRepo struct {
	create            func(ctx context.Context, it *domain.Itinerary) error
	save              func(ctx context.Context, it *domain.Itinerary) error
	getByID           func(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
	getSnapshot       func(ctx context.Context, id uuid.UUID) (domain.ItinerarySnapshot, []domain.DaySnapshot, error)
	listByOwner       func(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) ([]domain.ItinerarySnapshot, int, error)
	listByPlanRequest func(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error)
	delete            func(ctx context.Context, id uuid.UUID) error
}

func (m *mockItineraryRepo) Create(ctx context.Context, it *domain.Itinerary) error {
	return m.create(ctx, it)
}
func (m *mockItineraryRepo) Save(ctx context.Context, it *domain.Itinerary) error {
	return m.save(ctx, it)
}
func (m *mockItineraryRepo) GetSnapshot(ctx context.Context, id uuid.UUID) (domain.ItinerarySnapshot, []domain.DaySnapshot, error) {
	return m.getSnapshot(ctx, id)
}
func (m *mockItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	return m.getByID(ctx, id)
}
func (m *mockItineraryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) ([]domain.ItinerarySnapshot, int, error) {
	return m.listByOwner(ctx, ownerID, p)
}
func (m *mockItineraryRepo) ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error) {
	return m.listByPlanRequest(ctx, planRequestID)
}
func (m *mockItineraryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockPlanRequestRepo is a hand-written test double for repo.PlanRequestRepo.
type mockPlanRequestRepo struct {
	create       func(ctx context.Context, pr *domain.PlanRequest) error
	getByID      func(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
	updateStatus func(ctx context.Context, pr *domain.PlanRequest) error
}

func (m *mockPlanRequestRepo) Create(ctx context.Context, pr *domain.PlanRequest) error {
	return m.create(ctx, pr)
}
func (m *mockPlanRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanRequestRepo) UpdateStatus(ctx context.Context, pr *domain.PlanRequest) error {
	return m.updateStatus(ctx, pr)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.ItineraryRepo   = (*mockItineraryRepo)(nil)
	_ repo.PlanRequestRepo = (*mockPlanRequestRepo)(nil)
)

// ---- helpers ---------------------------------------------------------------

// storedItinerary backs a mockItineraryRepo with one in-memory itinerary and
// counts saves, bumping the version the way the Postgres repo does.
type storedItinerary struct {
	it    *domain.Itinerary
	saves int
}

func (s *storedItinerary) repo() *mockItineraryRepo {
	return &mockItineraryRepo{
		getByID: func(_ context.Context, id uuid.UUID) (*domain.Itinerary, error) {
			if s.it == nil || s.it.ID() != id {
				return nil, domain.ErrNotFound
			}
			return s.it, nil
		},
		getSnapshot: func(_ context.Context, id uuid.UUID) (domain.ItinerarySnapshot, []domain.DaySnapshot, error) {
			if s.it == nil || s.it.ID() != id {
				return domain.ItinerarySnapshot{}, nil, domain.ErrNotFound
			}
			set := s.it.Snapshot()
			return set.Itinerary, nestDays(set), nil
		},
		save: func(_ context.Context, it *domain.Itinerary) error {
			s.saves++
			it.SetVersion(it.Version() + 1)
			return nil
		},
	}
}

// nestDays regroups a SaveSet the way the Postgres repo returns rows.
func nestDays(set domain.SaveSet) []domain.DaySnapshot {
	days := make([]domain.DaySnapshot, len(set.Days))
	for i, d := range set.Days {
		days[i] = d
		for _, a := range set.Activities {
			if a.DayID == d.ID {
				days[i].Activities = append(days[i].Activities, a)
			}
		}
	}
	return days
}

func notFoundPlans() *mockPlanRequestRepo {
	return &mockPlanRequestRepo{
		getByID: func(context.Context, uuid.UUID) (*domain.PlanRequest, error) {
			return nil, domain.ErrNotFound
		},
	}
}

var tripStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newItinerary(t *testing.T) *domain.Itinerary {
	t.Helper()
	dates, err := domain.ParseDateRange("2025-06-01", "2025-06-03")
	require.NoError(t, err)
	it, err := domain.NewItinerary(domain.NewItineraryParams{
		OwnerID:      uuid.New(),
		Title:        "Lisbon long weekend",
		Dates:        dates,
		BaseCurrency: "USD",
	})
	require.NoError(t, err)
	it.SetVersion(1)
	return it
}

func newPlanRequest(t *testing.T, budget string) *domain.PlanRequest {
	t.Helper()
	dest, err := domain.NewPlace("Lisbon", nil, nil)
	require.NoError(t, err)
	dates, err := domain.ParseDateRange("2025-06-01", "2025-06-03")
	require.NoError(t, err)
	money, err := domain.ParseMoney(budget, "USD")
	require.NoError(t, err)
	pr, err := domain.NewPlanRequest(domain.PlanRequestParams{
		OwnerID:     uuid.New(),
		Destination: dest,
		Dates:       dates,
		Budget:      money,
	})
	require.NoError(t, err)
	return pr
}
