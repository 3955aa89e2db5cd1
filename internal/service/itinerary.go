package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/repo"
)

// ItineraryService implements the itinerary use cases. Every mutation follows
// the same shape: load the whole aggregate, apply one domain operation, save
// the aggregate back under its version.
type ItineraryService struct {
	itineraries repo.ItineraryRepo
	plans       repo.PlanRequestRepo
}

// NewItineraryService constructs an ItineraryService backed by the provided repos.
func NewItineraryService(itineraries repo.ItineraryRepo, plans repo.PlanRequestRepo) *ItineraryService {
	return &ItineraryService{itineraries: itineraries, plans: plans}
}

// CreateItineraryInput carries the fields needed to create an itinerary directly.
type CreateItineraryInput struct {
	OwnerID      uuid.UUID
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	BaseCurrency string
}

// Create builds a new DRAFT itinerary with one empty day per date and persists it.
// Returns domain.ErrValidation (or one of its children) for invalid input.
func (s *ItineraryService) Create(ctx context.Context, in CreateItineraryInput) (_ *domain.Itinerary, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.Create")
	defer func() { endSpan(span, err) }()

	dates, err := domain.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	it, err := domain.NewItinerary(domain.NewItineraryParams{
		OwnerID:      in.OwnerID,
		Title:        in.Title,
		Description:  in.Description,
		Dates:        dates,
		BaseCurrency: in.BaseCurrency,
	})
	if err != nil {
		return nil, err
	}
	if err := s.itineraries.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}
	span.SetAttributes(attribute.String("itinerary.id", it.ID().String()))
	return it, nil
}

// CreateFromPlanRequest derives an itinerary from a stored plan request and
// marks a pending request as draft_generated. An empty title defaults to
// "Trip to <destination>".
func (s *ItineraryService) CreateFromPlanRequest(ctx context.Context, planRequestID uuid.UUID, title string) (_ *domain.Itinerary, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.CreateFromPlanRequest",
		attribute.String("plan_request.id", planRequestID.String()))
	defer func() { endSpan(span, err) }()

	pr, err := s.plans.GetByID(ctx, planRequestID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.CreateFromPlanRequest: %w", err)
	}
	it, err := domain.NewItineraryFromPlanRequest(pr, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	if err := s.itineraries.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.CreateFromPlanRequest: %w", err)
	}
	if pr.Status() == domain.PlanRequestPending {
		if err := pr.MarkDraftGenerated(); err != nil {
			return nil, err
		}
		if err := s.plans.UpdateStatus(ctx, pr); err != nil {
			return nil, fmt.Errorf("service.ItineraryService.CreateFromPlanRequest: %w", err)
		}
	}
	span.SetAttributes(attribute.String("itinerary.id", it.ID().String()))
	return it, nil
}

// Get returns the full aggregate. Returns domain.ErrNotFound if it does not exist.
func (s *ItineraryService) Get(ctx context.Context, id uuid.UUID) (_ *domain.Itinerary, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.Get", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	return it, nil
}

// ListByOwner returns one page of the owner's itineraries, most recently updated first.
func (s *ItineraryService) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) (_ domain.Page[domain.ItinerarySnapshot], err error) {
	ctx, span := startSpan(ctx, "ItineraryService.ListByOwner", attribute.String("owner.id", ownerID.String()))
	defer func() { endSpan(span, err) }()

	if ownerID == uuid.Nil {
		return domain.Page[domain.ItinerarySnapshot]{}, fmt.Errorf("%w: owner_id is required", domain.ErrMissingField)
	}
	items, total, err := s.itineraries.ListByOwner(ctx, ownerID, p)
	if err != nil {
		return domain.Page[domain.ItinerarySnapshot]{}, fmt.Errorf("service.ItineraryService.ListByOwner: %w", err)
	}
	return domain.NewPage(items, total, p), nil
}

// ListByPlanRequest returns every itinerary derived from the plan request.
// Returns domain.ErrNotFound if the plan request does not exist.
func (s *ItineraryService) ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) (_ []domain.ItinerarySnapshot, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.ListByPlanRequest",
		attribute.String("plan_request.id", planRequestID.String()))
	defer func() { endSpan(span, err) }()

	if _, err := s.plans.GetByID(ctx, planRequestID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListByPlanRequest: %w", err)
	}
	items, err := s.itineraries.ListByPlanRequest(ctx, planRequestID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListByPlanRequest: %w", err)
	}
	if items == nil {
		items = []domain.ItinerarySnapshot{}
	}
	return items, nil
}

// UpdateInfoInput changes the title and/or description. Nil fields are left alone.
type UpdateInfoInput struct {
	Title       *string
	Description *string
}

// UpdateInfo retitles and/or re-describes the itinerary.
// Returns domain.ErrItineraryLocked once the itinerary is archived.
func (s *ItineraryService) UpdateInfo(ctx context.Context, id uuid.UUID, in UpdateInfoInput) (*domain.Itinerary, error) {
	return s.mutate(ctx, "UpdateInfo", id, func(it *domain.Itinerary) error {
		if in.Title != nil {
			if err := it.Retitle(*in.Title); err != nil {
				return err
			}
		}
		if in.Description != nil {
			return it.Redescribe(*in.Description)
		}
		return nil
	})
}

// Delete removes the itinerary with its days and activities.
func (s *ItineraryService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "ItineraryService.Delete", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	if err := s.itineraries.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	return nil
}

// ActivityInput describes a new activity. StartTime and EndTime accept a full
// instant ("2025-06-01T09:00") or a bare "HH:MM" placed on the day's date.
// CostCurrency defaults to the itinerary's base currency and State to PROPOSED.
type ActivityInput struct {
	Title        string
	Description  string
	Type         string
	PlaceLabel   string
	Latitude     *float64
	Longitude    *float64
	StartTime    string
	EndTime      string
	CostAmount   decimal.Decimal
	CostCurrency string
	State        string
	Metadata     json.RawMessage
}

// AddActivity builds an activity from in and adds it to day dayNumber.
// Returns a *domain.ScheduleConflictError when it overlaps an active activity.
func (s *ItineraryService) AddActivity(ctx context.Context, id uuid.UUID, dayNumber int, in ActivityInput) (*domain.Itinerary, error) {
	return s.mutate(ctx, "AddActivity", id, func(it *domain.Itinerary) error {
		day, ok := it.Day(dayNumber)
		if !ok {
			return fmt.Errorf("%w: %d", domain.ErrDayNotFound, dayNumber)
		}
		a, err := buildActivity(in, day.Date(), it.BaseCurrency())
		if err != nil {
			return err
		}
		return it.AddActivity(dayNumber, a)
	})
}

func buildActivity(in ActivityInput, date time.Time, baseCurrency string) (*domain.Activity, error) {
	kind := domain.ActivityTypeOther
	if strings.TrimSpace(in.Type) != "" {
		var err error
		if kind, err = domain.ParseActivityType(in.Type); err != nil {
			return nil, err
		}
	}
	state := domain.ActivityProposed
	if strings.TrimSpace(in.State) != "" {
		var err error
		if state, err = domain.ParseActivityState(in.State); err != nil {
			return nil, err
		}
	}
	place, err := domain.NewPlace(in.PlaceLabel, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	slot, err := domain.ParseTimeSlot(date, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	currency := in.CostCurrency
	if strings.TrimSpace(currency) == "" {
		currency = baseCurrency
	}
	cost, err := domain.NewMoney(in.CostAmount, currency)
	if err != nil {
		return nil, err
	}
	return domain.NewActivity(domain.ActivityParams{
		Title:       in.Title,
		Description: in.Description,
		Type:        kind,
		Place:       place,
		TimeSlot:    slot,
		Cost:        cost,
		State:       state,
		Metadata:    in.Metadata,
	})
}

// ActivityUpdateInput is a partial update. A single time bound keeps the
// activity's other bound; CostCurrency defaults to the base currency.
type ActivityUpdateInput struct {
	Title        *string
	Description  *string
	StartTime    *string
	EndTime      *string
	CostAmount   *decimal.Decimal
	CostCurrency *string
}

// UpdateActivity applies in to one activity. A changed time slot is checked
// against the rest of the day before anything is written.
func (s *ItineraryService) UpdateActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID, in ActivityUpdateInput) (*domain.Itinerary, error) {
	return s.mutate(ctx, "UpdateActivity", id, func(it *domain.Itinerary) error {
		day, ok := it.Day(dayNumber)
		if !ok {
			return fmt.Errorf("%w: %d", domain.ErrDayNotFound, dayNumber)
		}
		current := day.Activity(activityID)
		if current == nil {
			return fmt.Errorf("%w: activity %s on day %d", domain.ErrNotFound, activityID, dayNumber)
		}
		patch, err := buildPatch(in, current, day.Date(), it.BaseCurrency())
		if err != nil {
			return err
		}
		return it.UpdateActivity(dayNumber, activityID, patch)
	})
}

func buildPatch(in ActivityUpdateInput, current *domain.Activity, date time.Time, baseCurrency string) (domain.ActivityPatch, error) {
	patch := domain.ActivityPatch{Title: in.Title, Description: in.Description}

	if in.StartTime != nil || in.EndTime != nil {
		start := current.TimeSlot().Start().Format(time.DateTime)
		end := current.TimeSlot().End().Format(time.DateTime)
		if in.StartTime != nil {
			start = *in.StartTime
		}
		if in.EndTime != nil {
			end = *in.EndTime
		}
		slot, err := domain.ParseTimeSlot(date, start, end)
		if err != nil {
			return domain.ActivityPatch{}, err
		}
		patch.TimeSlot = &slot
	}

	if in.CostAmount != nil || in.CostCurrency != nil {
		amount := current.Cost().Amount()
		if in.CostAmount != nil {
			amount = *in.CostAmount
		}
		currency := baseCurrency
		if in.CostCurrency != nil && strings.TrimSpace(*in.CostCurrency) != "" {
			currency = *in.CostCurrency
		}
		cost, err := domain.NewMoney(amount, currency)
		if err != nil {
			return domain.ActivityPatch{}, err
		}
		patch.Cost = &cost
	}
	return patch, nil
}

// RemoveActivity deletes one activity from a day.
func (s *ItineraryService) RemoveActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error) {
	return s.mutate(ctx, "RemoveActivity", id, func(it *domain.Itinerary) error {
		return it.RemoveActivity(dayNumber, activityID)
	})
}

// ConfirmActivity moves a PROPOSED activity to CONFIRMED. Allowed on archived itineraries.
func (s *ItineraryService) ConfirmActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error) {
	return s.mutate(ctx, "ConfirmActivity", id, func(it *domain.Itinerary) error {
		return it.ConfirmActivity(dayNumber, activityID)
	})
}

// CancelActivity moves a PROPOSED or CONFIRMED activity to CANCELLED.
func (s *ItineraryService) CancelActivity(ctx context.Context, id uuid.UUID, dayNumber int, activityID uuid.UUID) (*domain.Itinerary, error) {
	return s.mutate(ctx, "CancelActivity", id, func(it *domain.Itinerary) error {
		return it.CancelActivity(dayNumber, activityID)
	})
}

// Publish moves a DRAFT itinerary to PUBLISHED.
func (s *ItineraryService) Publish(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	return s.mutate(ctx, "Publish", id, func(it *domain.Itinerary) error {
		return it.Publish()
	})
}

// Archive moves the itinerary to ARCHIVED. Archiving twice succeeds.
func (s *ItineraryService) Archive(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	return s.mutate(ctx, "Archive", id, func(it *domain.Itinerary) error {
		it.Archive()
		return nil
	})
}

// mutate loads the itinerary, applies fn and saves the result. Nothing is saved
// when fn fails.
func (s *ItineraryService) mutate(ctx context.Context, op string, id uuid.UUID, fn func(*domain.Itinerary) error) (_ *domain.Itinerary, err error) {
	ctx, span := startSpan(ctx, "ItineraryService."+op, itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.%s: %w", op, err)
	}
	if err := fn(it); err != nil {
		return nil, err
	}
	if err := s.itineraries.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.%s: %w", op, err)
	}
	span.SetAttributes(attribute.Int("itinerary.version", it.Version()))
	return it, nil
}

// FinancialSummary reports totals, per-day and per-type costs. When the
// itinerary came from a plan request that still exists, its budget is
// included as the spending limit.
func (s *ItineraryService) FinancialSummary(ctx context.Context, id uuid.UUID) (_ domain.FinancialSummary, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.FinancialSummary", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("service.ItineraryService.FinancialSummary: %w", err)
	}

	var budget *domain.Money
	if prID := it.PlanRequestID(); prID != uuid.Nil {
		pr, err := s.plans.GetByID(ctx, prID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return domain.FinancialSummary{}, fmt.Errorf("service.ItineraryService.FinancialSummary: %w", err)
		default:
			b := pr.Budget()
			budget = &b
		}
	}
	return domain.CostCalculator{}.FinancialSummary(it, budget)
}

// ValidateIntegrity audits the stored rows for overlapping activities. It reads
// snapshots rather than the aggregate, which would refuse to load an overlap.
func (s *ItineraryService) ValidateIntegrity(ctx context.Context, id uuid.UUID) (_ domain.IntegrityReport, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.ValidateIntegrity", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	_, days, err := s.itineraries.GetSnapshot(ctx, id)
	if err != nil {
		return domain.IntegrityReport{}, fmt.Errorf("service.ItineraryService.ValidateIntegrity: %w", err)
	}
	report, err := domain.AuditItinerary(days)
	if err != nil {
		return domain.IntegrityReport{}, fmt.Errorf("service.ItineraryService.ValidateIntegrity: %w", err)
	}
	span.SetAttributes(attribute.Bool("integrity.valid", report.Valid))
	return report, nil
}

// OccupancyReport returns one occupancy line per day.
func (s *ItineraryService) OccupancyReport(ctx context.Context, id uuid.UUID) (_ []domain.DayOccupancy, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.OccupancyReport", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.OccupancyReport: %w", err)
	}
	return domain.OverlapValidator{}.OccupancyReport(it), nil
}

// FreeSlotsInput asks for gaps on one day long enough for DurationMinutes.
// ExcludeActivityID, when set, is treated as absent (used when moving it).
type FreeSlotsInput struct {
	DayNumber         int
	DurationMinutes   int
	ExcludeActivityID uuid.UUID
}

// SuggestFreeSlots lists the free intervals of the day's 06:00-23:00 window.
func (s *ItineraryService) SuggestFreeSlots(ctx context.Context, id uuid.UUID, in FreeSlotsInput) (_ []domain.TimeSlot, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.SuggestFreeSlots", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration_minutes must be positive", domain.ErrValidation)
	}
	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.SuggestFreeSlots: %w", err)
	}
	day, ok := it.Day(in.DayNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrDayNotFound, in.DayNumber)
	}
	duration := time.Duration(in.DurationMinutes) * time.Minute
	return domain.OverlapValidator{}.FreeSlots(day, duration, in.ExcludeActivityID), nil
}

// Export flattens the itinerary into one row per activity.
func (s *ItineraryService) Export(ctx context.Context, id uuid.UUID) (_ []domain.ExportRow, err error) {
	ctx, span := startSpan(ctx, "ItineraryService.Export", itineraryAttr(id))
	defer func() { endSpan(span, err) }()

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Export: %w", err)
	}
	rows := domain.ExportRows(it)
	span.SetAttributes(attribute.Int("export.rows", len(rows)))
	return rows, nil
}

func itineraryAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("itinerary.id", id.String())
}
