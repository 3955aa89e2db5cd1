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

// ItineraryRepo defines the persistence operations for the itinerary aggregate.
// The aggregate is always written as a whole: the itinerary row, every day row
// and every activity row in one transaction.
type ItineraryRepo interface {
	// Create inserts it and its days and activities, then sets its version to 1.
	Create(ctx context.Context, it *domain.Itinerary) error

	// Save overwrites the stored aggregate. The stored version must equal
	// it.Version(); otherwise domain.ErrConcurrentModification is returned and
	// nothing is written. On success the version is incremented on it.
	Save(ctx context.Context, it *domain.Itinerary) error

	// GetByID loads the full aggregate. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)

	// GetSnapshot reads the stored rows without rebuilding the aggregate, so
	// rows that break an invariant can still be audited.
	GetSnapshot(ctx context.Context, id uuid.UUID) (domain.ItinerarySnapshot, []domain.DaySnapshot, error)

	// ListByOwner returns one page of itinerary rows, most recently updated first,
	// and the total number of rows for the owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) ([]domain.ItinerarySnapshot, int, error)

	// ListByPlanRequest returns every itinerary derived from a plan request.
	ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error)

	// Delete removes the itinerary; days and activities cascade.
	// Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const itineraryColumns = `id, plan_request_id, owner_id, title, description, start_date, end_date,
	base_currency, state, version, created_at, updated_at`

func (r *pgItineraryRepo) Create(ctx context.Context, it *domain.Itinerary) error {
	const q = `
		INSERT INTO itineraries (` + itineraryColumns + `)
		VALUES (@id, @plan_request_id, @owner_id, @title, @description, @start_date, @end_date,
		        @base_currency, @state, 1, @created_at, @updated_at)`

	set := it.Snapshot()
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, itineraryArgs(set.Itinerary)); err != nil {
			return err
		}
		return writeChildren(ctx, tx, set)
	})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Create: %w", err)
	}
	it.SetVersion(1)
	return nil
}

func (r *pgItineraryRepo) Save(ctx context.Context, it *domain.Itinerary) error {
	const update = `
		UPDATE itineraries
		SET title         = @title,
		    description   = @description,
		    state         = @state,
		    updated_at    = @updated_at,
		    version       = version + 1
		WHERE id = @id AND version = @version
		RETURNING version`
	const exists = `SELECT EXISTS (SELECT 1 FROM itineraries WHERE id = @id)`
	const clear = `DELETE FROM days WHERE itinerary_id = @id`

	set := it.Snapshot()
	var next int
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, update, itineraryArgs(set.Itinerary)).Scan(&next)
		if errors.Is(err, pgx.ErrNoRows) {
			var found bool
			if err := tx.QueryRow(ctx, exists, pgx.NamedArgs{"id": set.Itinerary.ID}).Scan(&found); err != nil {
				return err
			}
			if !found {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%w: itinerary %s is no longer at version %d",
				domain.ErrConcurrentModification, set.Itinerary.ID, set.Itinerary.Version)
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, clear, pgx.NamedArgs{"id": set.Itinerary.ID}); err != nil {
			return err
		}
		return writeChildren(ctx, tx, set)
	})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Save: %w", err)
	}
	it.SetVersion(next)
	return nil
}

func itineraryArgs(s domain.ItinerarySnapshot) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":              s.ID,
		"plan_request_id": nullableUUID(s.PlanRequestID),
		"owner_id":        s.OwnerID,
		"title":           s.Title,
		"description":     s.Description,
		"start_date":      s.StartDate,
		"end_date":        s.EndDate,
		"base_currency":   s.BaseCurrency,
		"state":           string(s.State),
		"version":         s.Version,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
}

// writeChildren queues every day insert followed by every activity insert in a
// single batch so foreign keys resolve in order.
func writeChildren(ctx context.Context, tx pgx.Tx, set domain.SaveSet) error {
	const insertDay = `
		INSERT INTO days (id, itinerary_id, date, number)
		VALUES (@id, @itinerary_id, @date, @number)`
	const insertActivity = `
		INSERT INTO activities (id, day_id, title, description, type, place_label, latitude, longitude,
		                        start_time, end_time, cost_amount, cost_currency, state, metadata)
		VALUES (@id, @day_id, @title, @description, @type, @place_label, @latitude, @longitude,
		        @start_time, @end_time, @cost_amount, @cost_currency, @state, @metadata)`

	b := &pgx.Batch{}
	for _, d := range set.Days {
		b.Queue(insertDay, pgx.NamedArgs{
			"id":           d.ID,
			"itinerary_id": d.ItineraryID,
			"date":         d.Date,
			"number":       d.Number,
		})
	}
	for _, a := range set.Activities {
		var metadata []byte
		if len(a.Metadata) > 0 {
			metadata = a.Metadata
		}
		b.Queue(insertActivity, pgx.NamedArgs{
			"id":            a.ID,
			"day_id":        a.DayID,
			"title":         a.Title,
			"description":   a.Description,
			"type":          string(a.Type),
			"place_label":   a.PlaceLabel,
			"latitude":      a.Latitude,
			"longitude":     a.Longitude,
			"start_time":    a.Start,
			"end_time":      a.End,
			"cost_amount":   toNumeric(a.CostAmount),
			"cost_currency": a.CostCurrency,
			"state":         string(a.State),
			"metadata":      metadata,
		})
	}
	if b.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, b).Close()
}

func (r *pgItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	rec, days, err := r.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	it, err := domain.LoadItinerary(rec, days)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return it, nil
}

func (r *pgItineraryRepo) GetSnapshot(ctx context.Context, id uuid.UUID) (domain.ItinerarySnapshot, []domain.DaySnapshot, error) {
	const qItinerary = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = @id`
	const qDays = `
		SELECT id, itinerary_id, date, number
		FROM days
		WHERE itinerary_id = @id
		ORDER BY number`
	const qActivities = `
		SELECT a.id, a.day_id, a.title, a.description, a.type, a.place_label, a.latitude, a.longitude,
		       a.start_time, a.end_time, a.cost_amount, a.cost_currency, a.state, a.metadata
		FROM activities a
		JOIN days d ON d.id = a.day_id
		WHERE d.itinerary_id = @id
		ORDER BY a.start_time, a.end_time`

	args := pgx.NamedArgs{"id": id}
	rec, err := scanItinerary(r.db.QueryRow(ctx, qItinerary, args))
	if err != nil {
		return domain.ItinerarySnapshot{}, nil, fmt.Errorf("repo.ItineraryRepo.GetSnapshot: %w", err)
	}

	days, err := collect(ctx, r.db, qDays, args, scanDay)
	if err != nil {
		return domain.ItinerarySnapshot{}, nil, fmt.Errorf("repo.ItineraryRepo.GetSnapshot: days: %w", err)
	}
	activities, err := collect(ctx, r.db, qActivities, args, scanActivity)
	if err != nil {
		return domain.ItinerarySnapshot{}, nil, fmt.Errorf("repo.ItineraryRepo.GetSnapshot: activities: %w", err)
	}

	index := make(map[uuid.UUID]int, len(days))
	for i, d := range days {
		index[d.ID] = i
	}
	for _, a := range activities {
		if i, ok := index[a.DayID]; ok {
			days[i].Activities = append(days[i].Activities, a)
		}
	}
	return rec, days, nil
}

func (r *pgItineraryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.Pagination) ([]domain.ItinerarySnapshot, int, error) {
	const qCount = `SELECT count(*) FROM itineraries WHERE owner_id = @owner_id`
	const qPage = `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE owner_id = @owner_id
		ORDER BY updated_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int
	if err := r.db.QueryRow(ctx, qCount, pgx.NamedArgs{"owner_id": ownerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: count: %w", err)
	}
	items, err := collect(ctx, r.db, qPage, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	}, scanItinerary)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: %w", err)
	}
	return items, total, nil
}

func (r *pgItineraryRepo) ListByPlanRequest(ctx context.Context, planRequestID uuid.UUID) ([]domain.ItinerarySnapshot, error) {
	const q = `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE plan_request_id = @plan_request_id
		ORDER BY created_at`

	items, err := collect(ctx, r.db, q, pgx.NamedArgs{"plan_request_id": planRequestID}, scanItinerary)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByPlanRequest: %w", err)
	}
	return items, nil
}

func (r *pgItineraryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM itineraries WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// collect runs q and maps every row with scan.
func collect[T any](ctx context.Context, conn db, q string, args pgx.NamedArgs, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := conn.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func scanItinerary(s scanner) (domain.ItinerarySnapshot, error) {
	var (
		out         domain.ItinerarySnapshot
		id, owner   pgtype.UUID
		planRequest pgtype.UUID
		start, end  pgtype.Date
		state       string
	)
	err := s.Scan(&id, &planRequest, &owner, &out.Title, &out.Description, &start, &end,
		&out.BaseCurrency, &state, &out.Version, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ItinerarySnapshot{}, domain.ErrNotFound
		}
		return domain.ItinerarySnapshot{}, err
	}
	out.ID = uuid.UUID(id.Bytes)
	out.OwnerID = uuid.UUID(owner.Bytes)
	out.PlanRequestID = fromNullableUUID(planRequest)
	out.StartDate = start.Time
	out.EndDate = end.Time
	out.State = domain.ItineraryState(state)
	return out, nil
}

func scanDay(s scanner) (domain.DaySnapshot, error) {
	var (
		out           domain.DaySnapshot
		id, itinerary pgtype.UUID
		date          pgtype.Date
	)
	if err := s.Scan(&id, &itinerary, &date, &out.Number); err != nil {
		return domain.DaySnapshot{}, err
	}
	out.ID = uuid.UUID(id.Bytes)
	out.ItineraryID = uuid.UUID(itinerary.Bytes)
	out.Date = date.Time
	return out, nil
}

func scanActivity(s scanner) (domain.ActivitySnapshot, error) {
	var (
		out         domain.ActivitySnapshot
		id, day     pgtype.UUID
		kind, state string
		lat, lng    pgtype.Float8
		start, end  pgtype.Timestamp
		amount      pgtype.Numeric
		metadata    []byte
	)
	err := s.Scan(&id, &day, &out.Title, &out.Description, &kind, &out.PlaceLabel, &lat, &lng,
		&start, &end, &amount, &out.CostCurrency, &state, &metadata)
	if err != nil {
		return domain.ActivitySnapshot{}, err
	}
	out.ID = uuid.UUID(id.Bytes)
	out.DayID = uuid.UUID(day.Bytes)
	out.Type = domain.ActivityType(kind)
	out.State = domain.ActivityState(state)
	out.Start = start.Time
	out.End = end.Time
	if lat.Valid && lng.Valid {
		out.Latitude, out.Longitude = &lat.Float64, &lng.Float64
	}
	if len(metadata) > 0 {
		out.Metadata = metadata
	}
	if out.CostAmount, err = fromNumeric(amount); err != nil {
		return domain.ActivitySnapshot{}, fmt.Errorf("cost_amount: %w", err)
	}
	return out, nil
}
