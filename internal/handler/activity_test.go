package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/service"
)

func activitiesPath(id uuid.UUID, day string) string {
	return "/itineraries/" + id.String() + "/days/" + day + "/activities"
}

// ---- POST .../days/{day}/activities ----------------------------------------

func TestAddActivity_201(t *testing.T) {
	fixture := itineraryFixture(t)
	var gotDay int
	var got service.ActivityInput
	svc := &mockItineraryServicer{
		addActivity: func(_ context.Context, _ uuid.UUID, day int, in service.ActivityInput) (*domain.Itinerary, error) {
			gotDay, got = day, in
			return fixture, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(fixture.ID(), "2"), map[string]any{
		"title":         "Fado night",
		"type":          "visit",
		"place_label":   "Alfama",
		"start_time":    "20:00",
		"end_time":      "22:30",
		"cost_amount":   "35.5",
		"cost_currency": "USD",
		"metadata":      map[string]any{"booking": "F-77"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, gotDay)
	assert.Equal(t, "Fado night", got.Title)
	assert.Equal(t, "visit", got.Type)
	assert.Equal(t, "20:00", got.StartTime)
	assert.Equal(t, "35.5", got.CostAmount.String())
	assert.JSONEq(t, `{"booking":"F-77"}`, string(got.Metadata))
}

func TestAddActivity_201_NoCost(t *testing.T) {
	svc := &mockItineraryServicer{
		addActivity: func(_ context.Context, _ uuid.UUID, _ int, in service.ActivityInput) (*domain.Itinerary, error) {
			assert.True(t, in.CostAmount.IsZero())
			assert.Empty(t, in.CostCurrency)
			return itineraryFixture(t), nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(uuid.New(), "1"), map[string]any{
		"title":       "Walk",
		"place_label": "Baixa",
		"start_time":  "07:00",
		"end_time":    "08:00",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddActivity_409_ScheduleConflict(t *testing.T) {
	existing := activityFixture(t, "Castle tour", "09:00", "11:30", "40")
	candidate := uuid.New()
	svc := &mockItineraryServicer{
		addActivity: func(_ context.Context, _ uuid.UUID, _ int, _ service.ActivityInput) (*domain.Itinerary, error) {
			return nil, &domain.ScheduleConflictError{
				DayNumber:     1,
				CandidateID:   candidate,
				ConflictID:    existing.ID(),
				ConflictTitle: existing.Title(),
				ConflictSlot:  existing.TimeSlot(),
			}
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(uuid.New(), "1"), map[string]any{
		"title":       "Brunch",
		"place_label": "Chiado",
		"start_time":  "10:00",
		"end_time":    "11:00",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "schedule_conflict", resp.Error.Code)
	assert.Equal(t, existing.ID().String(), resp.Error.Details["conflicting_activity_id"])
	assert.Equal(t, "Castle tour", resp.Error.Details["conflicting_title"])
	assert.Equal(t, candidate.String(), resp.Error.Details["activity_id"])
	assert.EqualValues(t, 1, resp.Error.Details["day_number"])
	assert.Equal(t, existing.TimeSlot().Start().Format(time.RFC3339), resp.Error.Details["conflicting_starts_at"])
}

func TestAddActivity_409_CurrencyMismatch(t *testing.T) {
	svc := &mockItineraryServicer{
		addActivity: func(_ context.Context, _ uuid.UUID, _ int, _ service.ActivityInput) (*domain.Itinerary, error) {
			return nil, &domain.CurrencyMismatchError{Expected: "USD", Actual: "EUR"}
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(uuid.New(), "1"), map[string]any{
		"title":         "Tram",
		"place_label":   "Line 28",
		"start_time":    "10:00",
		"end_time":      "11:00",
		"cost_amount":   3,
		"cost_currency": "EUR",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "currency_mismatch", resp.Error.Code)
	assert.Equal(t, "USD", resp.Error.Details["expected"])
	assert.Equal(t, "EUR", resp.Error.Details["actual"])
}

func TestAddActivity_404_DayNotFound(t *testing.T) {
	svc := &mockItineraryServicer{
		addActivity: func(_ context.Context, _ uuid.UUID, day int, _ service.ActivityInput) (*domain.Itinerary, error) {
			return nil, fmt.Errorf("%w: %d", domain.ErrDayNotFound, day)
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(uuid.New(), "9"), map[string]any{
		"title":       "Walk",
		"place_label": "Baixa",
		"start_time":  "07:00",
		"end_time":    "08:00",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "day_not_found", decodeError(t, rec).Error.Code)
}

func TestAddActivity_422_BadDayParam(t *testing.T) {
	for _, day := range []string{"0", "-1", "first"} {
		t.Run(day, func(t *testing.T) {
			rec := do(t, newHTTPHandler(&mockItineraryServicer{}, nil), http.MethodPost, activitiesPath(uuid.New(), day), map[string]any{
				"title": "Walk", "place_label": "Baixa", "start_time": "07:00", "end_time": "08:00",
			})
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestAddActivity_422_MissingTimes(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockItineraryServicer{}, nil), http.MethodPost, activitiesPath(uuid.New(), "1"),
		map[string]any{"title": "Walk", "place_label": "Baixa"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeError(t, rec).Error.Details
	assert.Equal(t, "required", details["start_time"])
	assert.Equal(t, "required", details["end_time"])
}

// ---- PATCH .../activities/{activityID} -------------------------------------

func TestUpdateActivity_200_PartialPatch(t *testing.T) {
	activityID := uuid.New()
	svc := &mockItineraryServicer{
		updateActivity: func(_ context.Context, _ uuid.UUID, day int, id uuid.UUID, in service.ActivityUpdateInput) (*domain.Itinerary, error) {
			assert.Equal(t, 1, day)
			assert.Equal(t, activityID, id)
			require.NotNil(t, in.EndTime)
			assert.Equal(t, "12:00", *in.EndTime)
			assert.Nil(t, in.StartTime)
			assert.Nil(t, in.CostAmount)
			return itineraryFixture(t), nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPatch, activitiesPath(uuid.New(), "1")+"/"+activityID.String(),
		map[string]any{"end_time": "12:00"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateActivity_422_BadActivityID(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockItineraryServicer{}, nil), http.MethodPatch, activitiesPath(uuid.New(), "1")+"/nope",
		map[string]any{"title": "x"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "activityID")
}

// ---- DELETE / confirm / cancel ----------------------------------------------

func TestActivityCommands_RouteToService(t *testing.T) {
	cases := []struct {
		method, suffix, want string
	}{
		{http.MethodDelete, "", "remove"},
		{http.MethodPost, "/confirm", "confirm"},
		{http.MethodPost, "/cancel", "cancel"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			activityID := uuid.New()
			svc := &mockItineraryServicer{
				activityCommand: func(_ context.Context, _ uuid.UUID, day int, id uuid.UUID) (*domain.Itinerary, error) {
					assert.Equal(t, 3, day)
					assert.Equal(t, activityID, id)
					return itineraryFixture(t), nil
				},
			}

			rec := do(t, newHTTPHandler(svc, nil), tc.method, activitiesPath(uuid.New(), "3")+"/"+activityID.String()+tc.suffix, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, svc.lastCommand)
		})
	}
}

func TestConfirmActivity_409_IllegalTransition(t *testing.T) {
	activityID := uuid.New()
	svc := &mockItineraryServicer{
		activityCommand: func(_ context.Context, _ uuid.UUID, _ int, id uuid.UUID) (*domain.Itinerary, error) {
			return nil, &domain.TransitionError{ActivityID: id, From: domain.ActivityCancelled, To: domain.ActivityConfirmed}
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, activitiesPath(uuid.New(), "1")+"/"+activityID.String()+"/confirm", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "illegal_transition", resp.Error.Code)
	assert.Equal(t, "CANCELLED", resp.Error.Details["from"])
	assert.Equal(t, "CONFIRMED", resp.Error.Details["to"])
}

// ---- POST .../days/{day}/free-slots ----------------------------------------

func TestSuggestFreeSlots_200(t *testing.T) {
	exclude := uuid.New()
	slot, err := domain.ParseTimeSlot(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "12:00", "23:00")
	require.NoError(t, err)
	svc := &mockItineraryServicer{
		suggestFreeSlots: func(_ context.Context, _ uuid.UUID, in service.FreeSlotsInput) ([]domain.TimeSlot, error) {
			assert.Equal(t, service.FreeSlotsInput{DayNumber: 1, DurationMinutes: 90, ExcludeActivityID: exclude}, in)
			return []domain.TimeSlot{slot}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), http.MethodPost, "/itineraries/"+uuid.NewString()+"/days/1/free-slots",
		map[string]any{"duration_minutes": 90, "exclude_activity_id": exclude})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []domain.FreeSlotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 660, resp[0].DurationMinutes)
}

func TestSuggestFreeSlots_422_ZeroDuration(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockItineraryServicer{}, nil), http.MethodPost, "/itineraries/"+uuid.NewString()+"/days/1/free-slots",
		map[string]any{"duration_minutes": 0})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
