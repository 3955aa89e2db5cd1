package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Day is one calendar date of an itinerary with its activities.
// Activities are always sorted by start time, then end time, after any
// operation that can change ordering. Non-cancelled activities never overlap.
type Day struct {
	id         uuid.UUID
	date       time.Time
	number     int
	activities []*Activity
}

// NewDay returns an empty Day. number is the 1-based ordinal within the itinerary.
func NewDay(id uuid.UUID, date time.Time, number int) (*Day, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: day date is required", ErrMissingField)
	}
	if number < 1 {
		return nil, fmt.Errorf("%w: day number %d must be positive", ErrValidation, number)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Day{id: id, date: dateOnly(date), number: number}, nil
}

func (d *Day) ID() uuid.UUID   { return d.id }
func (d *Day) Date() time.Time { return d.date }
func (d *Day) Number() int     { return d.number }

// Activities returns the activities in start order. The slice is a copy;
// the activities themselves are shared with the day.
func (d *Day) Activities() []*Activity { return slices.Clone(d.activities) }

func (d *Day) ActivityCount() int  { return len(d.activities) }
func (d *Day) HasActivities() bool { return len(d.activities) > 0 }

// Activity returns the activity with id, or nil.
func (d *Day) Activity(id uuid.UUID) *Activity {
	if i := d.indexOf(id); i >= 0 {
		return d.activities[i]
	}
	return nil
}

func (d *Day) ConfirmedActivities() []*Activity {
	return d.filter((*Activity).IsConfirmed)
}

func (d *Day) ProposedActivities() []*Activity {
	return d.filter((*Activity).IsProposed)
}

// ActiveActivities returns every activity that is not cancelled.
func (d *Day) ActiveActivities() []*Activity {
	return d.filter(func(a *Activity) bool { return !a.IsCancelled() })
}

func (d *Day) filter(keep func(*Activity) bool) []*Activity {
	var out []*Activity
	for _, a := range d.activities {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (d *Day) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(d.activities, func(a *Activity) bool { return a.id == id })
}

// AddActivity inserts a into the day. A non-cancelled activity is rejected with a
// *ScheduleConflictError when it overlaps any non-cancelled activity already present.
func (d *Day) AddActivity(a *Activity) error {
	if a == nil {
		return fmt.Errorf("%w: activity is required", ErrMissingField)
	}
	if d.indexOf(a.id) >= 0 {
		return fmt.Errorf("%w: activity %s already exists on day %d", ErrValidation, a.id, d.number)
	}
	if !a.IsCancelled() {
		if conflict := findConflict(d.activities, a.slot, uuid.Nil); conflict != nil {
			return newScheduleConflict(d.number, a.id, conflict)
		}
	}
	d.activities = append(d.activities, a)
	d.sortActivities()
	return nil
}

// RemoveActivity deletes the activity with id.
func (d *Day) RemoveActivity(id uuid.UUID) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: activity %s on day %d", ErrNotFound, id, d.number)
	}
	d.activities = slices.Delete(d.activities, i, i+1)
	return nil
}

// UpdateActivity applies patch to the activity with id. A time slot change is
// checked against every other non-cancelled activity before anything is applied.
func (d *Day) UpdateActivity(id uuid.UUID, patch ActivityPatch) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: activity %s on day %d", ErrNotFound, id, d.number)
	}
	if err := patch.validate(); err != nil {
		return err
	}
	a := d.activities[i]
	if patch.TimeSlot != nil && !a.IsCancelled() {
		if conflict := findConflict(d.activities, *patch.TimeSlot, id); conflict != nil {
			return newScheduleConflict(d.number, id, conflict)
		}
	}
	a.apply(patch)
	d.sortActivities()
	return nil
}

// TotalCost sums the cost of every activity on the day, cancelled ones included,
// in the currency of the first activity. ok is false for an empty day.
func (d *Day) TotalCost() (total Money, ok bool, err error) {
	if len(d.activities) == 0 {
		return Money{}, false, nil
	}
	total = ZeroMoney(d.activities[0].cost.currency)
	for _, a := range d.activities {
		if total, err = total.Add(a.cost); err != nil {
			return Money{}, false, fmt.Errorf("day %d: %w", d.number, err)
		}
	}
	return total, true, nil
}

func (d *Day) sortActivities() {
	slices.SortStableFunc(d.activities, func(a, b *Activity) int {
		if c := a.slot.start.Compare(b.slot.start); c != 0 {
			return c
		}
		return a.slot.end.Compare(b.slot.end)
	})
}

func (d *Day) clone() *Day {
	c := &Day{id: d.id, date: d.date, number: d.number}
	c.activities = make([]*Activity, len(d.activities))
	for i, a := range d.activities {
		c.activities[i] = a.clone()
	}
	return c
}

// findConflict returns the first non-cancelled activity other than exclude whose
// slot overlaps slot.
func findConflict(activities []*Activity, slot TimeSlot, exclude uuid.UUID) *Activity {
	for _, a := range activities {
		if a.id == exclude || a.IsCancelled() {
			continue
		}
		if a.slot.Overlaps(slot) {
			return a
		}
	}
	return nil
}
