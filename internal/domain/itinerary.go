// Package domain holds the itinerary aggregate, its value objects and the
// read-only cost and overlap services. It has no knowledge of storage or HTTP.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItineraryState is the lifecycle state of an itinerary.
//
//	DRAFT -> PUBLISHED -> ARCHIVED
//	DRAFT -> ARCHIVED
type ItineraryState string

const (
	ItineraryDraft     ItineraryState = "DRAFT"
	ItineraryPublished ItineraryState = "PUBLISHED"
	ItineraryArchived  ItineraryState = "ARCHIVED"
)

func (s ItineraryState) Valid() bool {
	switch s {
	case ItineraryDraft, ItineraryPublished, ItineraryArchived:
		return true
	}
	return false
}

// ParseItineraryState accepts any casing of a known state.
func ParseItineraryState(s string) (ItineraryState, error) {
	st := ItineraryState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown itinerary state %q", ErrInvalidState, s)
	}
	return st, nil
}

// now stamps created and updated times.
var now = func() time.Time { return time.Now().UTC() }

// PlanRequestReader is the read side of a plan request consumed by
// NewItineraryFromPlanRequest.
type PlanRequestReader interface {
	ID() uuid.UUID
	OwnerID() uuid.UUID
	Destination() Place
	Dates() DateRange
	Budget() Money
}

// Itinerary is the aggregate root of a trip plan. It owns one Day per calendar
// date of its range and is the only way to change those days and their activities.
type Itinerary struct {
	id            uuid.UUID
	planRequestID uuid.UUID
	ownerID       uuid.UUID
	title         string
	description   string
	dates         DateRange
	baseCurrency  string
	state         ItineraryState
	days          []*Day
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewItineraryParams carries constructor input for NewItinerary.
// PlanRequestID may be uuid.Nil for an itinerary created from scratch.
type NewItineraryParams struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	PlanRequestID uuid.UUID
	Title         string
	Description   string
	Dates         DateRange
	BaseCurrency  string
}

// NewItinerary validates p and returns a DRAFT itinerary with one empty Day per
// date of the range, numbered from 1 in chronological order.
func NewItinerary(p NewItineraryParams) (*Itinerary, error) {
	if p.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: itinerary owner is required", ErrMissingField)
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: itinerary title is required", ErrMissingField)
	}
	if p.Dates.IsZero() {
		return nil, fmt.Errorf("%w: itinerary date range is required", ErrInvalidInterval)
	}
	cur, err := NormalizeCurrency(p.BaseCurrency)
	if err != nil {
		return nil, err
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	ts := now()
	it := &Itinerary{
		id:            id,
		planRequestID: p.PlanRequestID,
		ownerID:       p.OwnerID,
		title:         title,
		description:   strings.TrimSpace(p.Description),
		dates:         p.Dates,
		baseCurrency:  cur,
		state:         ItineraryDraft,
		createdAt:     ts,
		updatedAt:     ts,
	}
	for i, date := range p.Dates.Dates() {
		day, err := NewDay(uuid.Nil, date, i+1)
		if err != nil {
			return nil, err
		}
		it.days = append(it.days, day)
	}
	return it, nil
}

// NewItineraryFromPlanRequest derives a DRAFT itinerary from a plan request.
// An empty title defaults to "Trip to <destination>"; the base currency is the
// currency of the request budget.
func NewItineraryFromPlanRequest(pr PlanRequestReader, title string) (*Itinerary, error) {
	if pr == nil {
		return nil, fmt.Errorf("%w: plan request is required", ErrMissingField)
	}
	dest := pr.Destination().Label()
	if strings.TrimSpace(title) == "" {
		title = "Trip to " + dest
	}
	return NewItinerary(NewItineraryParams{
		OwnerID:       pr.OwnerID(),
		PlanRequestID: pr.ID(),
		Title:         title,
		Description:   "Itinerary generated for a trip to " + dest,
		Dates:         pr.Dates(),
		BaseCurrency:  pr.Budget().Currency(),
	})
}

func (it *Itinerary) ID() uuid.UUID            { return it.id }
func (it *Itinerary) PlanRequestID() uuid.UUID { return it.planRequestID }
func (it *Itinerary) OwnerID() uuid.UUID       { return it.ownerID }
func (it *Itinerary) Title() string            { return it.title }
func (it *Itinerary) Description() string      { return it.description }
func (it *Itinerary) Dates() DateRange         { return it.dates }
func (it *Itinerary) BaseCurrency() string     { return it.baseCurrency }
func (it *Itinerary) State() ItineraryState    { return it.state }
func (it *Itinerary) Version() int             { return it.version }
func (it *Itinerary) CreatedAt() time.Time     { return it.createdAt }
func (it *Itinerary) UpdatedAt() time.Time     { return it.updatedAt }
func (it *Itinerary) DayCount() int            { return len(it.days) }

// SetVersion records the version the repository persisted.
func (it *Itinerary) SetVersion(v int) { it.version = v }

// CanBeModified reports whether content changes are allowed.
func (it *Itinerary) CanBeModified() bool {
	return it.state == ItineraryDraft || it.state == ItineraryPublished
}

// Days returns deep copies of the days in number order. Changes to the copies
// do not reach the itinerary.
func (it *Itinerary) Days() []*Day {
	out := make([]*Day, len(it.days))
	for i, d := range it.days {
		out[i] = d.clone()
	}
	return out
}

// Day returns a copy of the day with the given ordinal.
func (it *Itinerary) Day(number int) (*Day, bool) {
	d := it.day(number)
	if d == nil {
		return nil, false
	}
	return d.clone(), true
}

// DayByDate returns a copy of the day on the calendar date of t.
func (it *Itinerary) DayByDate(t time.Time) (*Day, bool) {
	date := dateOnly(t)
	for _, d := range it.days {
		if d.date.Equal(date) {
			return d.clone(), true
		}
	}
	return nil, false
}

func (it *Itinerary) day(number int) *Day {
	for _, d := range it.days {
		if d.number == number {
			return d
		}
	}
	return nil
}

func (it *Itinerary) touch() { it.updatedAt = now() }

func (it *Itinerary) checkModifiable() error {
	if !it.CanBeModified() {
		return fmt.Errorf("%w: itinerary %s is %s", ErrItineraryLocked, it.id, it.state)
	}
	return nil
}

func (it *Itinerary) lookupDay(number int) (*Day, error) {
	d := it.day(number)
	if d == nil {
		return nil, fmt.Errorf("%w: %d", ErrDayNotFound, number)
	}
	return d, nil
}

func (it *Itinerary) checkCurrency(m Money) error {
	if m.Currency() != it.baseCurrency {
		return &CurrencyMismatchError{Expected: it.baseCurrency, Actual: m.Currency()}
	}
	return nil
}

// AddActivity stores a copy of a on the day with the given ordinal.
func (it *Itinerary) AddActivity(dayNumber int, a *Activity) error {
	if err := it.checkModifiable(); err != nil {
		return err
	}
	d, err := it.lookupDay(dayNumber)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("%w: activity is required", ErrMissingField)
	}
	if err := it.checkCurrency(a.cost); err != nil {
		return err
	}
	if err := d.AddActivity(a.clone()); err != nil {
		return err
	}
	it.touch()
	return nil
}

// RemoveActivity deletes an activity from the day with the given ordinal.
func (it *Itinerary) RemoveActivity(dayNumber int, activityID uuid.UUID) error {
	if err := it.checkModifiable(); err != nil {
		return err
	}
	d, err := it.lookupDay(dayNumber)
	if err != nil {
		return err
	}
	if err := d.RemoveActivity(activityID); err != nil {
		return err
	}
	it.touch()
	return nil
}

// UpdateActivity applies patch to an activity. A cost in another currency is
// rejected with *CurrencyMismatchError.
func (it *Itinerary) UpdateActivity(dayNumber int, activityID uuid.UUID, patch ActivityPatch) error {
	if err := it.checkModifiable(); err != nil {
		return err
	}
	d, err := it.lookupDay(dayNumber)
	if err != nil {
		return err
	}
	if patch.Cost != nil {
		if err := it.checkCurrency(*patch.Cost); err != nil {
			return err
		}
	}
	if err := d.UpdateActivity(activityID, patch); err != nil {
		return err
	}
	it.touch()
	return nil
}

// ConfirmActivity confirms a proposed activity. Allowed in every itinerary state.
func (it *Itinerary) ConfirmActivity(dayNumber int, activityID uuid.UUID) error {
	return it.transitionActivity(dayNumber, activityID, (*Activity).Confirm)
}

// CancelActivity cancels a proposed or confirmed activity. Allowed in every
// itinerary state.
func (it *Itinerary) CancelActivity(dayNumber int, activityID uuid.UUID) error {
	return it.transitionActivity(dayNumber, activityID, (*Activity).Cancel)
}

func (it *Itinerary) transitionActivity(dayNumber int, activityID uuid.UUID, move func(*Activity) error) error {
	d, err := it.lookupDay(dayNumber)
	if err != nil {
		return err
	}
	a := d.Activity(activityID)
	if a == nil {
		return fmt.Errorf("%w: activity %s on day %d", ErrNotFound, activityID, dayNumber)
	}
	if err := move(a); err != nil {
		return err
	}
	it.touch()
	return nil
}

// Publish moves a DRAFT itinerary to PUBLISHED.
func (it *Itinerary) Publish() error {
	switch it.state {
	case ItineraryPublished:
		return fmt.Errorf("%w: %s", ErrAlreadyPublished, it.id)
	case ItineraryArchived:
		return fmt.Errorf("%w: %s", ErrCannotPublishArchived, it.id)
	}
	it.state = ItineraryPublished
	it.touch()
	return nil
}

// Archive moves the itinerary to ARCHIVED. Archiving twice is not an error.
func (it *Itinerary) Archive() {
	it.state = ItineraryArchived
	it.touch()
}

func (it *Itinerary) Retitle(title string) error {
	if err := it.checkModifiable(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: itinerary title cannot be empty", ErrMissingField)
	}
	it.title = title
	it.touch()
	return nil
}

func (it *Itinerary) Redescribe(description string) error {
	if err := it.checkModifiable(); err != nil {
		return err
	}
	it.description = strings.TrimSpace(description)
	it.touch()
	return nil
}

// TotalCost sums the cost of every non-cancelled activity in the base currency.
func (it *Itinerary) TotalCost() (Money, error) { return CostCalculator{}.TotalCost(it) }

// CostPerDay divides TotalCost by the number of days in the date range.
func (it *Itinerary) CostPerDay() (Money, error) { return CostCalculator{}.CostPerDay(it) }

// ActivitySummary counts activities per state.
type ActivitySummary struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Proposed  int `json:"proposed"`
	Cancelled int `json:"cancelled"`
}

func (it *Itinerary) ActivitySummary() ActivitySummary {
	var s ActivitySummary
	for _, d := range it.days {
		for _, a := range d.activities {
			s.Total++
			switch a.state {
			case ActivityConfirmed:
				s.Confirmed++
			case ActivityProposed:
				s.Proposed++
			case ActivityCancelled:
				s.Cancelled++
			}
		}
	}
	return s
}

// ActivitiesByType groups copies of every activity by type.
func (it *Itinerary) ActivitiesByType() map[ActivityType][]*Activity {
	out := make(map[ActivityType][]*Activity)
	for _, d := range it.days {
		for _, a := range d.activities {
			out[a.kind] = append(out[a.kind], a.clone())
		}
	}
	return out
}
