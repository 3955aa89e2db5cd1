package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanRequestStatus tracks how far a plan request has progressed.
type PlanRequestStatus string

const (
	PlanRequestPending        PlanRequestStatus = "pending"
	PlanRequestDraftGenerated PlanRequestStatus = "draft_generated"
	PlanRequestCompleted      PlanRequestStatus = "completed"
)

func (s PlanRequestStatus) Valid() bool {
	switch s {
	case PlanRequestPending, PlanRequestDraftGenerated, PlanRequestCompleted:
		return true
	}
	return false
}

// PlanRequest is a traveller's request for a trip plan: where, when, and how much.
type PlanRequest struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	destination Place
	dates       DateRange
	budget      Money
	interests   []string
	status      PlanRequestStatus
	createdAt   time.Time
	updatedAt   time.Time
}

type PlanRequestParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Destination Place
	Dates       DateRange
	Budget      Money
	Interests   []string
}

// NewPlanRequest validates p and returns a pending plan request.
// The budget must be strictly positive.
func NewPlanRequest(p PlanRequestParams) (*PlanRequest, error) {
	if p.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: plan request owner is required", ErrMissingField)
	}
	if p.Destination.Label() == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrMissingField)
	}
	if p.Dates.IsZero() {
		return nil, fmt.Errorf("%w: travel dates are required", ErrInvalidInterval)
	}
	if p.Budget.Currency() == "" {
		return nil, fmt.Errorf("%w: budget is required", ErrInvalidCurrency)
	}
	if !p.Budget.Amount().IsPositive() {
		return nil, fmt.Errorf("%w: budget must be greater than zero", ErrInvalidAmount)
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	pr := &PlanRequest{
		id:          id,
		ownerID:     p.OwnerID,
		destination: p.Destination,
		dates:       p.Dates,
		budget:      p.Budget,
		status:      PlanRequestPending,
	}
	for _, in := range p.Interests {
		if err := pr.addInterest(in); err != nil {
			return nil, err
		}
	}
	pr.createdAt = now()
	pr.updatedAt = pr.createdAt
	return pr, nil
}

func (pr *PlanRequest) ID() uuid.UUID             { return pr.id }
func (pr *PlanRequest) OwnerID() uuid.UUID        { return pr.ownerID }
func (pr *PlanRequest) Destination() Place        { return pr.destination }
func (pr *PlanRequest) Dates() DateRange          { return pr.dates }
func (pr *PlanRequest) Budget() Money             { return pr.budget }
func (pr *PlanRequest) Interests() []string       { return slices.Clone(pr.interests) }
func (pr *PlanRequest) Status() PlanRequestStatus { return pr.status }
func (pr *PlanRequest) CreatedAt() time.Time      { return pr.createdAt }
func (pr *PlanRequest) UpdatedAt() time.Time      { return pr.updatedAt }

// CanBeModified reports whether the request is still pending.
func (pr *PlanRequest) CanBeModified() bool { return pr.status == PlanRequestPending }

// MarkDraftGenerated is legal only from pending.
func (pr *PlanRequest) MarkDraftGenerated() error {
	if pr.status != PlanRequestPending {
		return fmt.Errorf("%w: plan request %s is %s, want %s",
			ErrIllegalTransition, pr.id, pr.status, PlanRequestPending)
	}
	pr.status = PlanRequestDraftGenerated
	pr.updatedAt = now()
	return nil
}

func (pr *PlanRequest) MarkCompleted() error {
	if pr.status == PlanRequestCompleted {
		return fmt.Errorf("%w: plan request %s is already completed", ErrIllegalTransition, pr.id)
	}
	pr.status = PlanRequestCompleted
	pr.updatedAt = now()
	return nil
}

// AddInterest appends a trimmed interest unless it is already present.
func (pr *PlanRequest) AddInterest(interest string) error {
	if err := pr.addInterest(interest); err != nil {
		return err
	}
	pr.updatedAt = now()
	return nil
}

func (pr *PlanRequest) addInterest(interest string) error {
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return fmt.Errorf("%w: interest cannot be empty", ErrMissingField)
	}
	if !slices.Contains(pr.interests, interest) {
		pr.interests = append(pr.interests, interest)
	}
	return nil
}

func (pr *PlanRequest) RemoveInterest(interest string) {
	if i := slices.Index(pr.interests, strings.TrimSpace(interest)); i >= 0 {
		pr.interests = slices.Delete(pr.interests, i, i+1)
		pr.updatedAt = now()
	}
}

// BudgetPerDay splits the budget evenly over the requested dates.
func (pr *PlanRequest) BudgetPerDay() (Money, error) {
	return pr.budget.DivideBy(pr.dates.Days())
}

// PlanRequestSnapshot is the flat persisted form of a PlanRequest.
type PlanRequestSnapshot struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Destination    string
	StartDate      time.Time
	EndDate        time.Time
	BudgetAmount   decimal.Decimal
	BudgetCurrency string
	Interests      []string
	Status         PlanRequestStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (pr *PlanRequest) Snapshot() PlanRequestSnapshot {
	return PlanRequestSnapshot{
		ID:             pr.id,
		OwnerID:        pr.ownerID,
		Destination:    pr.destination.Label(),
		StartDate:      pr.dates.Start(),
		EndDate:        pr.dates.End(),
		BudgetAmount:   pr.budget.Amount(),
		BudgetCurrency: pr.budget.Currency(),
		Interests:      pr.Interests(),
		Status:         pr.status,
		CreatedAt:      pr.createdAt,
		UpdatedAt:      pr.updatedAt,
	}
}

// LoadPlanRequest rebuilds a PlanRequest from storage, re-running validation.
func LoadPlanRequest(s PlanRequestSnapshot) (*PlanRequest, error) {
	dest, err := NewPlace(s.Destination, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load plan request %s: %w", s.ID, err)
	}
	dates, err := NewDateRange(s.StartDate, s.EndDate)
	if err != nil {
		return nil, fmt.Errorf("load plan request %s: %w", s.ID, err)
	}
	budget, err := NewMoney(s.BudgetAmount, s.BudgetCurrency)
	if err != nil {
		return nil, fmt.Errorf("load plan request %s: %w", s.ID, err)
	}
	if !s.Status.Valid() {
		return nil, fmt.Errorf("load plan request %s: %w: status %q", s.ID, ErrInvalidState, s.Status)
	}
	pr, err := NewPlanRequest(PlanRequestParams{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Destination: dest,
		Dates:       dates,
		Budget:      budget,
		Interests:   s.Interests,
	})
	if err != nil {
		return nil, fmt.Errorf("load plan request %s: %w", s.ID, err)
	}
	pr.status = s.Status
	pr.createdAt = s.CreatedAt
	pr.updatedAt = s.UpdatedAt
	return pr, nil
}
