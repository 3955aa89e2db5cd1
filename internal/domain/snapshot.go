package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItinerarySnapshot holds the flat fields of an itinerary row.
type ItinerarySnapshot struct {
	ID            uuid.UUID
	PlanRequestID uuid.UUID
	OwnerID       uuid.UUID
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	BaseCurrency  string
	State         ItineraryState
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DaySnapshot holds the flat fields of a day row. Activities is only read by
// LoadItinerary; Snapshot leaves it empty and lists activities separately.
type DaySnapshot struct {
	ID          uuid.UUID
	ItineraryID uuid.UUID
	Date        time.Time
	Number      int
	Activities  []ActivitySnapshot
}

// ActivitySnapshot holds the flat fields of an activity row.
type ActivitySnapshot struct {
	ID           uuid.UUID
	DayID        uuid.UUID
	Title        string
	Description  string
	Type         ActivityType
	PlaceLabel   string
	Latitude     *float64
	Longitude    *float64
	Start        time.Time
	End          time.Time
	CostAmount   decimal.Decimal
	CostCurrency string
	State        ActivityState
	Metadata     json.RawMessage
}

// SaveSet is everything needed to persist an itinerary in one transaction.
type SaveSet struct {
	Itinerary  ItinerarySnapshot
	Days       []DaySnapshot
	Activities []ActivitySnapshot
}

// Snapshot flattens the aggregate for persistence.
func (it *Itinerary) Snapshot() SaveSet {
	set := SaveSet{
		Itinerary: ItinerarySnapshot{
			ID:            it.id,
			PlanRequestID: it.planRequestID,
			OwnerID:       it.ownerID,
			Title:         it.title,
			Description:   it.description,
			StartDate:     it.dates.Start(),
			EndDate:       it.dates.End(),
			BaseCurrency:  it.baseCurrency,
			State:         it.state,
			Version:       it.version,
			CreatedAt:     it.createdAt,
			UpdatedAt:     it.updatedAt,
		},
		Days: make([]DaySnapshot, 0, len(it.days)),
	}
	for _, d := range it.days {
		set.Days = append(set.Days, DaySnapshot{ID: d.id, ItineraryID: it.id, Date: d.date, Number: d.number})
		for _, a := range d.activities {
			set.Activities = append(set.Activities, a.snapshot(d.id))
		}
	}
	return set
}

func (a *Activity) snapshot(dayID uuid.UUID) ActivitySnapshot {
	s := ActivitySnapshot{
		ID:           a.id,
		DayID:        dayID,
		Title:        a.title,
		Description:  a.description,
		Type:         a.kind,
		PlaceLabel:   a.place.label,
		Start:        a.slot.start,
		End:          a.slot.end,
		CostAmount:   a.cost.amount,
		CostCurrency: a.cost.currency,
		State:        a.state,
		Metadata:     cloneRaw(a.metadata),
	}
	if lat, lng, ok := a.place.Coordinates(); ok {
		s.Latitude, s.Longitude = &lat, &lng
	}
	return s
}

// LoadItinerary rebuilds an itinerary from storage and re-checks every
// invariant. Stored data that breaks one fails to load.
func LoadItinerary(rec ItinerarySnapshot, days []DaySnapshot) (*Itinerary, error) {
	it, err := loadItinerary(rec, days)
	if err != nil {
		return nil, fmt.Errorf("load itinerary %s: %w", rec.ID, err)
	}
	return it, nil
}

func loadItinerary(rec ItinerarySnapshot, days []DaySnapshot) (*Itinerary, error) {
	if !rec.State.Valid() {
		return nil, fmt.Errorf("%w: itinerary state %q", ErrInvalidState, rec.State)
	}
	dates, err := NewDateRange(rec.StartDate, rec.EndDate)
	if err != nil {
		return nil, err
	}
	it, err := NewItinerary(NewItineraryParams{
		ID:            rec.ID,
		OwnerID:       rec.OwnerID,
		PlanRequestID: rec.PlanRequestID,
		Title:         rec.Title,
		Description:   rec.Description,
		Dates:         dates,
		BaseCurrency:  rec.BaseCurrency,
	})
	if err != nil {
		return nil, err
	}
	if len(days) != dates.Days() {
		return nil, fmt.Errorf("%w: %d days stored for a %d-day range", ErrValidation, len(days), dates.Days())
	}

	sorted := slices.Clone(days)
	slices.SortFunc(sorted, func(a, b DaySnapshot) int { return a.Number - b.Number })
	expected := dates.Dates()
	it.days = make([]*Day, 0, len(sorted))
	for i, ds := range sorted {
		if ds.Number != i+1 {
			return nil, fmt.Errorf("%w: day numbers must run 1..%d, found %d", ErrValidation, len(sorted), ds.Number)
		}
		if !dateOnly(ds.Date).Equal(expected[i]) {
			return nil, fmt.Errorf("%w: day %d has date %s, want %s", ErrValidation,
				ds.Number, ds.Date.Format(DateLayout), expected[i].Format(DateLayout))
		}
		d, err := NewDay(ds.ID, ds.Date, ds.Number)
		if err != nil {
			return nil, err
		}
		for _, as := range ds.Activities {
			a, err := loadActivity(as)
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", ds.Number, err)
			}
			if err := it.checkCurrency(a.cost); err != nil {
				return nil, fmt.Errorf("activity %s: %w", a.id, err)
			}
			if err := d.AddActivity(a); err != nil {
				return nil, err
			}
		}
		it.days = append(it.days, d)
	}

	it.state = rec.State
	it.version = rec.Version
	it.createdAt = rec.CreatedAt
	it.updatedAt = rec.UpdatedAt
	return it, nil
}

func loadActivity(s ActivitySnapshot) (*Activity, error) {
	place, err := NewPlace(s.PlaceLabel, s.Latitude, s.Longitude)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", s.ID, err)
	}
	slot, err := NewTimeSlot(s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", s.ID, err)
	}
	cost, err := NewMoney(s.CostAmount, s.CostCurrency)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", s.ID, err)
	}
	if !s.State.Valid() {
		return nil, fmt.Errorf("activity %s: %w: state %q", s.ID, ErrInvalidState, s.State)
	}
	return NewActivity(ActivityParams{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Type:        s.Type,
		Place:       place,
		TimeSlot:    slot,
		Cost:        cost,
		State:       s.State,
		Metadata:    s.Metadata,
	})
}

// AuditItinerary runs ValidateIntegrity over stored day rows. Unlike
// LoadItinerary it accepts overlapping activities so they can be reported;
// every other field must still be valid.
func AuditItinerary(days []DaySnapshot) (IntegrityReport, error) {
	sorted := slices.Clone(days)
	slices.SortFunc(sorted, func(a, b DaySnapshot) int { return a.Number - b.Number })

	it := &Itinerary{days: make([]*Day, 0, len(sorted))}
	for _, ds := range sorted {
		d, err := NewDay(ds.ID, ds.Date, ds.Number)
		if err != nil {
			return IntegrityReport{}, err
		}
		for _, as := range ds.Activities {
			a, err := loadActivity(as)
			if err != nil {
				return IntegrityReport{}, fmt.Errorf("day %d: %w", ds.Number, err)
			}
			d.activities = append(d.activities, a)
		}
		d.sortActivities()
		it.days = append(it.days, d)
	}
	return OverlapValidator{}.ValidateIntegrity(it), nil
}
