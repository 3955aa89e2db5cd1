package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
)

func TestGetFinancialSummary_200_WithBudget(t *testing.T) {
	it := itineraryFixture(t)
	budget, err := domain.ParseMoney("100", "USD")
	require.NoError(t, err)
	summary, err := domain.CostCalculator{}.FinancialSummary(it, &budget)
	require.NoError(t, err)
	svc := &mockItineraryServicer{
		financialSummary: func(_ context.Context, _ uuid.UUID) (domain.FinancialSummary, error) { return summary, nil },
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodGet, "/itineraries/"+it.ID().String()+"/financial-summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.FinancialSummaryView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "40.00", resp.Total.Amount)
	assert.Equal(t, "USD", resp.Total.Currency)
	assert.Equal(t, "40.00", resp.CostByType[domain.ActivityTypeVisit].Amount)
	require.NotNil(t, resp.Budget)
	assert.Equal(t, "60.00", resp.Budget.Remaining.Amount)
	assert.Equal(t, "40.00", resp.Budget.UtilizationPercent)
	assert.False(t, resp.Budget.Exceeded)
}

func TestGetFinancialSummary_200_NoBudget(t *testing.T) {
	it := itineraryFixture(t)
	summary, err := domain.CostCalculator{}.FinancialSummary(it, nil)
	require.NoError(t, err)
	svc := &mockItineraryServicer{
		financialSummary: func(_ context.Context, _ uuid.UUID) (domain.FinancialSummary, error) { return summary, nil },
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodGet, "/itineraries/"+it.ID().String()+"/financial-summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotContains(t, resp, "budget")
}

func TestGetIntegrity_200(t *testing.T) {
	svc := &mockItineraryServicer{
		validateIntegrity: func(_ context.Context, _ uuid.UUID) (domain.IntegrityReport, error) {
			return domain.IntegrityReport{Valid: true, Issues: []domain.IntegrityIssue{}}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodGet, "/itineraries/"+uuid.NewString()+"/integrity", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"issues":[]}`, rec.Body.String())
}

func TestGetOccupancy_200(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := &mockItineraryServicer{
		occupancyReport: func(_ context.Context, _ uuid.UUID) ([]domain.DayOccupancy, error) {
			return []domain.DayOccupancy{
				{DayNumber: 1, Date: start.Truncate(24 * time.Hour), Occupied: true, EarliestStart: start,
					LatestEnd: start.Add(150 * time.Minute), OccupiedMinutes: 150, ActivityCount: 1},
				{DayNumber: 2, Date: start.Add(24 * time.Hour).Truncate(24 * time.Hour)},
			}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodGet, "/itineraries/"+uuid.NewString()+"/occupancy", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []domain.DayOccupancyView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "2025-06-01", resp[0].Date)
	assert.Equal(t, 150, resp[0].OccupiedMinutes)
	require.NotNil(t, resp[0].EarliestStart)
	assert.True(t, start.Equal(*resp[0].EarliestStart))
	assert.False(t, resp[1].Occupied)
	assert.Nil(t, resp[1].EarliestStart)
}

func TestRequestLanguage_LocalizesDisplay(t *testing.T) {
	it := itineraryFixture(t)
	svc := &mockItineraryServicer{
		get: func(_ context.Context, _ uuid.UUID) (*domain.Itinerary, error) { return it, nil },
	}
	h := newHTTPHandler(svc, nil)

	display := func(lang string) string {
		req := newRequest(http.MethodGet, "/itineraries/"+it.ID().String())
		if lang != "" {
			req.Header.Set("Accept-Language", lang)
		}
		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp domain.ItineraryView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp.TotalCost.Display
	}

	english := display("")
	assert.Contains(t, english, "40.00")
	assert.Equal(t, english, display("xx-unknown"))
	assert.NotEmpty(t, display("de-DE,de;q=0.9"))
}
