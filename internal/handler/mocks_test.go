package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/handler"
	"github.com/Travelsia/Backend/internal/service"
)

// mockItineraryServicer is a test double for handler.ItineraryServicer.
// Set only the method fields your test needs.
type mockItineraryServicer struct {
	create                func(ctx context.Context, in service.CreateItineraryInput) (*domain.Itinerary, error)
	createFromPlanRequest func(ctx context.Context, planRequestID uuid.UUID, title string) (*domain.Itinerary, error)
	get                   func(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
	listByOwner           func(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) (domain.Page[domain.ItinerarySnapshot], error)
	listByPlanRequest     func(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error)
	updateInfo            func(ctx context.Context, id uuid.UUID, in service.UpdateInfoInput) (*domain.Itinerary, error)
	delete                func(ctx context.Context, id uuid.UUID) error
	addActivity           func(ctx context.Context, id uuid.UUID, day int, in service.ActivityInput) (*domain.Itinerary, error)
	updateActivity        func(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID, in service.ActivityUpdateInput) (*domain.Itinerary, error)
	activityCommand       func(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID) (*domain.Itinerary, error)
	stateCommand          func(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
	financialSummary      func(ctx context.Context, id uuid.UUID) (domain.FinancialSummary, error)
	validateIntegrity     func(ctx context.Context, id uuid.UUID) (domain.IntegrityReport, error)
	occupancyReport       func(ctx context.Context, id uuid.UUID) ([]domain.DayOccupancy, error)
	suggestFreeSlots      func(ctx context.Context, id uuid.UUID, in service.FreeSlotsInput) ([]domain.TimeSlot, error)
	export                func(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error)

	// lastCommand records which of the shared command methods ran.
	lastCommand string
}

func (m *mockItineraryServicer) Create(ctx context.Context, in service.CreateItineraryInput) (*domain.Itinerary, error) {
	return m.create(ctx, in)
}
func (m *mockItineraryServicer) CreateFromPlanRequest(ctx context.Context, planRequestID uuid.UUID, title string) (*domain.Itinerary, error) {
	return m.createFromPlanRequest(ctx, planRequestID, title)
}
func (m *mockItineraryServicer) Get(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	return m.get(ctx, id)
}
func (m *mockItineraryServicer) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) (domain.Page[domain.ItinerarySnapshot], error) {
	return m.listByOwner(ctx, ownerID, p)
}
func (m *mockItineraryServicer) ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error) {
	return m.listByPlanRequest(ctx, planRequestID)
}
func (m *mockItineraryServicer) UpdateInfo(ctx context.Context, id uuid.UUID, in service.UpdateInfoInput) (*domain.Itinerary, error) {
	return m.updateInfo(ctx, id, in)
}
func (m *mockItineraryServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockItineraryServicer) AddActivity(ctx context.Context, id uuid.UUID, day int, in service.ActivityInput) (*domain.Itinerary, error) {
	return m.addActivity(ctx, id, day, in)
}
func (m *mockItineraryServicer) UpdateActivity(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID, in service.ActivityUpdateInput) (*domain.Itinerary, error) {
	return m.updateActivity(ctx, id, day, activityID, in)
}
func (m *mockItineraryServicer) RemoveActivity(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID) (*domain.Itinerary, error) {
	m.lastCommand = "remove"
	return m.activityCommand(ctx, id, day, activityID)
}
func (m *mockItineraryServicer) ConfirmActivity(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID) (*domain.Itinerary, error) {
	m.lastCommand = "confirm"
	return m.activityCommand(ctx, id, day, activityID)
}
func (m *mockItineraryServicer) CancelActivity(ctx context.Context, id uuid.UUID, day int, activityID uuid.UUID) (*domain.Itinerary, error) {
	m.lastCommand = "cancel"
	return m.activityCommand(ctx, id, day, activityID)
}
func (m *mockItineraryServicer) Publish(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	m.lastCommand = "publish"
	return m.stateCommand(ctx, id)
}
func (m *mockItineraryServicer) Archive(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	m.lastCommand = "archive"
	return m.stateCommand(ctx, id)
}
func (m *mockItineraryServicer) FinancialSummary(ctx context.Context, id uuid.UUID) (domain.FinancialSummary, error) {
	return m.financialSummary(ctx, id)
}
func (m *mockItineraryServicer) ValidateIntegrity(ctx context.Context, id uuid.UUID) (domain.IntegrityReport, error) {
	return m.validateIntegrity(ctx, id)
}
func (m *mockItineraryServicer) OccupancyReport(ctx context.Context, id uuid.UUID) ([]domain.DayOccupancy, error) {
	return m.occupancyReport(ctx, id)
}
func (m *mockItineraryServicer) SuggestFreeSlots(ctx context.Context, id uuid.UUID, in service.FreeSlotsInput) ([]domain.TimeSlot, error) {
	return m.suggestFreeSlots(ctx, id, in)
}
func (m *mockItineraryServicer) Export(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, id)
}

// mockPlanRequestServicer is a test double for handler.PlanRequestServicer.
type mockPlanRequestServicer struct {
	create   func(ctx context.Context, in service.CreatePlanRequestInput) (*domain.PlanRequest, error)
	get      func(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
	complete func(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
}

func (m *mockPlanRequestServicer) Create(ctx context.Context, in service.CreatePlanRequestInput) (*domain.PlanRequest, error) {
	return m.create(ctx, in)
}
func (m *mockPlanRequestServicer) Get(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	return m.get(ctx, id)
}
func (m *mockPlanRequestServicer) Complete(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	return m.complete(ctx, id)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ItineraryServicer   = (*mockItineraryServicer)(nil)
	_ handler.PlanRequestServicer = (*mockPlanRequestServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(itineraries handler.ItineraryServicer, plans handler.PlanRequestServicer) http.Handler {
	return handler.NewServer(itineraries, plans, nil).Routes()
}

// do sends a request through h and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// itineraryFixture returns a three-day USD itinerary starting 2025-06-01 with
// one confirmed activity on day 1.
func itineraryFixture(t *testing.T) *domain.Itinerary {
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

	require.NoError(t, it.AddActivity(1, activityFixture(t, "Castle tour", "09:00", "11:30", "40")))
	return it
}

func activityFixture(t *testing.T, title, start, end, amount string) *domain.Activity {
	t.Helper()
	place, err := domain.NewPlace("Lisbon", nil, nil)
	require.NoError(t, err)
	slot, err := domain.ParseTimeSlot(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start, end)
	require.NoError(t, err)
	cost, err := domain.ParseMoney(amount, "USD")
	require.NoError(t, err)
	a, err := domain.NewActivity(domain.ActivityParams{
		Title:    title,
		Type:     domain.ActivityTypeVisit,
		Place:    place,
		TimeSlot: slot,
		Cost:     cost,
		State:    domain.ActivityConfirmed,
	})
	require.NoError(t, err)
	return a
}

func planRequestFixture(t *testing.T) *domain.PlanRequest {
	t.Helper()
	dest, err := domain.NewPlace("Lisbon", nil, nil)
	require.NoError(t, err)
	dates, err := domain.ParseDateRange("2025-06-01", "2025-06-03")
	require.NoError(t, err)
	budget, err := domain.ParseMoney("1500.50", "USD")
	require.NoError(t, err)
	pr, err := domain.NewPlanRequest(domain.PlanRequestParams{
		OwnerID:     uuid.New(),
		Destination: dest,
		Dates:       dates,
		Budget:      budget,
		Interests:   []string{"food", "museums"},
	})
	require.NoError(t, err)
	return pr
}
