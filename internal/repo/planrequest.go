package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Travelsia/Backend/internal/domain"
)

// PlanRequestRepo defines the persistence operations for plan requests.
type PlanRequestRepo interface {
	// Create inserts a new plan request.
	Create(ctx context.Context, pr *domain.PlanRequest) error

	// GetByID returns domain.ErrNotFound if no request with that id exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)

	// UpdateStatus persists the status and updated_at of pr.
	UpdateStatus(ctx context.Context, pr *domain.PlanRequest) error
}

type pgPlanRequestRepo struct {
	db db
}

// NewPlanRequestRepo constructs a PlanRequestRepo backed by the provided db connection.
func NewPlanRequestRepo(db db) PlanRequestRepo {
	return &pgPlanRequestRepo{db: db}
}

const planRequestColumns = `id, owner_id, destination, start_date, end_date,
	budget_amount, budget_currency, interests, status, created_at, updated_at`

func (r *pgPlanRequestRepo) Create(ctx context.Context, pr *domain.PlanRequest) error {
	const q = `
		INSERT INTO plan_requests (` + planRequestColumns + `)
		VALUES (@id, @owner_id, @destination, @start_date, @end_date,
		        @budget_amount, @budget_currency, @interests, @status, @created_at, @updated_at)`

	s := pr.Snapshot()
	interests := s.Interests
	if interests == nil {
		interests = []string{}
	}
	args := pgx.NamedArgs{
		"id":              s.ID,
		"owner_id":        s.OwnerID,
		"destination":     s.Destination,
		"start_date":      s.StartDate,
		"end_date":        s.EndDate,
		"budget_amount":   toNumeric(s.BudgetAmount),
		"budget_currency": s.BudgetCurrency,
		"interests":       interests,
		"status":          string(s.Status),
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.PlanRequestRepo.Create: %w", err)
	}
	return nil
}

func (r *pgPlanRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	const q = `SELECT ` + planRequestColumns + ` FROM plan_requests WHERE id = @id`

	s, err := scanPlanRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRequestRepo.GetByID: %w", err)
	}
	pr, err := domain.LoadPlanRequest(s)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRequestRepo.GetByID: %w", err)
	}
	return pr, nil
}

func (r *pgPlanRequestRepo) UpdateStatus(ctx context.Context, pr *domain.PlanRequest) error {
	const q = `
		UPDATE plan_requests
		SET status = @status, updated_at = @updated_at
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":         pr.ID(),
		"status":     string(pr.Status()),
		"updated_at": pr.UpdatedAt(),
	})
	if err != nil {
		return fmt.Errorf("repo.PlanRequestRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRequestRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func scanPlanRequest(s scanner) (domain.PlanRequestSnapshot, error) {
	var (
		out       domain.PlanRequestSnapshot
		id, owner pgtype.UUID
		start     pgtype.Date
		end       pgtype.Date
		amount    pgtype.Numeric
		status    string
	)
	err := s.Scan(&id, &owner, &out.Destination, &start, &end,
		&amount, &out.BudgetCurrency, &out.Interests, &status, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanRequestSnapshot{}, domain.ErrNotFound
		}
		return domain.PlanRequestSnapshot{}, err
	}
	out.ID = uuid.UUID(id.Bytes)
	out.OwnerID = uuid.UUID(owner.Bytes)
	out.StartDate = start.Time
	out.EndDate = end.Time
	out.Status = domain.PlanRequestStatus(status)
	if out.BudgetAmount, err = fromNumeric(amount); err != nil {
		return domain.PlanRequestSnapshot{}, fmt.Errorf("budget_amount: %w", err)
	}
	return out, nil
}
