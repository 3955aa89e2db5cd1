package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Travelsia/Backend/internal/domain"
	"github.com/Travelsia/Backend/internal/repo"
)

// PlanRequestService implements the plan request use cases.
type PlanRequestService struct {
	repo repo.PlanRequestRepo
}

// NewPlanRequestService constructs a PlanRequestService backed by the provided repo.
func NewPlanRequestService(r repo.PlanRequestRepo) *PlanRequestService {
	return &PlanRequestService{repo: r}
}

// CreatePlanRequestInput carries the traveller's trip constraints.
type CreatePlanRequestInput struct {
	OwnerID        uuid.UUID
	Destination    string
	Latitude       *float64
	Longitude      *float64
	StartDate      time.Time
	EndDate        time.Time
	BudgetAmount   decimal.Decimal
	BudgetCurrency string
	Interests      []string
}

// Create validates the input through the domain constructors and persists a
// pending plan request.
func (s *PlanRequestService) Create(ctx context.Context, in CreatePlanRequestInput) (_ *domain.PlanRequest, err error) {
	ctx, span := startSpan(ctx, "PlanRequestService.Create")
	defer func() { endSpan(span, err) }()

	destination, err := domain.NewPlace(in.Destination, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	dates, err := domain.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	budget, err := domain.NewMoney(in.BudgetAmount, in.BudgetCurrency)
	if err != nil {
		return nil, err
	}
	pr, err := domain.NewPlanRequest(domain.PlanRequestParams{
		OwnerID:     in.OwnerID,
		Destination: destination,
		Dates:       dates,
		Budget:      budget,
		Interests:   in.Interests,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, fmt.Errorf("service.PlanRequestService.Create: %w", err)
	}
	span.SetAttributes(attribute.String("plan_request.id", pr.ID().String()))
	return pr, nil
}

// Get returns domain.ErrNotFound if no plan request with that id exists.
func (s *PlanRequestService) Get(ctx context.Context, id uuid.UUID) (_ *domain.PlanRequest, err error) {
	ctx, span := startSpan(ctx, "PlanRequestService.Get", attribute.String("plan_request.id", id.String()))
	defer func() { endSpan(span, err) }()

	pr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.PlanRequestService.Get: %w", err)
	}
	return pr, nil
}

// Complete marks the plan request completed.
// Returns domain.ErrIllegalTransition if it already is.
func (s *PlanRequestService) Complete(ctx context.Context, id uuid.UUID) (_ *domain.PlanRequest, err error) {
	ctx, span := startSpan(ctx, "PlanRequestService.Complete", attribute.String("plan_request.id", id.String()))
	defer func() { endSpan(span, err) }()

	pr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.PlanRequestService.Complete: %w", err)
	}
	if err := pr.MarkCompleted(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, pr); err != nil {
		return nil, fmt.Errorf("service.PlanRequestService.Complete: %w", err)
	}
	return pr, nil
}
