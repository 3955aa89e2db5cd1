package domain

import (
	"fmt"
	"strings"
	"time"
)

// instantLayouts are the accepted textual forms of an instant, tried in order.
// Offsets are parsed but discarded: all instants are naive local wall-clock times.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// clockLayout is a bare time of day, resolved against a base date.
const clockLayout = "15:04"

// TimeSlot is an immutable interval with start strictly before end.
// Two slots that only touch at an endpoint do not overlap.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

// NewTimeSlot builds a TimeSlot from two instants.
// Returns ErrInvalidInterval if either bound is zero or end is not after start.
func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if start.IsZero() || end.IsZero() {
		return TimeSlot{}, fmt.Errorf("%w: start and end are required", ErrInvalidInterval)
	}
	s, e := naive(start), naive(end)
	if !e.After(s) {
		return TimeSlot{}, fmt.Errorf("%w: end %s must be after start %s",
			ErrInvalidInterval, e.Format(time.DateTime), s.Format(time.DateTime))
	}
	return TimeSlot{start: s, end: e}, nil
}

// ParseTimeSlot parses both bounds and builds a TimeSlot. Bare "HH:MM" values
// are placed on the calendar date of base; pass a zero base to reject them.
func ParseTimeSlot(base time.Time, start, end string) (TimeSlot, error) {
	s, err := parseInstant(base, start)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: start: %v", ErrInvalidInterval, err)
	}
	e, err := parseInstant(base, end)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: end: %v", ErrInvalidInterval, err)
	}
	return NewTimeSlot(s, e)
}

func parseInstant(base time.Time, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty instant")
	}
	if c, err := time.Parse(clockLayout, raw); err == nil {
		if base.IsZero() {
			return time.Time{}, fmt.Errorf("time of day %q needs a date", raw)
		}
		y, m, d := base.Date()
		return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, time.UTC), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return naive(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an instant", raw)
}

// naive keeps the wall clock of t and drops its location.
func naive(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

func (s TimeSlot) Start() time.Time { return s.start }
func (s TimeSlot) End() time.Time   { return s.end }

// IsZero reports whether s is the zero TimeSlot (never produced by NewTimeSlot).
func (s TimeSlot) IsZero() bool { return s.start.IsZero() && s.end.IsZero() }

func (s TimeSlot) Duration() time.Duration { return s.end.Sub(s.start) }

// DurationMinutes returns the whole minutes between start and end, truncated.
func (s TimeSlot) DurationMinutes() int { return int(s.Duration() / time.Minute) }

func (s TimeSlot) DurationHours() float64 { return float64(s.DurationMinutes()) / 60 }

// Overlaps reports whether the open intervals (start, end) intersect.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.start.Before(other.end) && other.start.Before(s.end)
}

// Contains reports whether t falls within the slot, inclusive on both bounds.
func (s TimeSlot) Contains(t time.Time) bool {
	t = naive(t)
	return !t.Before(s.start) && !t.After(s.end)
}

func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.start.Equal(other.start) && s.end.Equal(other.end)
}

// String renders the slot as "HH:MM - HH:MM".
func (s TimeSlot) String() string {
	return s.start.Format(clockLayout) + " - " + s.end.Format(clockLayout)
}
