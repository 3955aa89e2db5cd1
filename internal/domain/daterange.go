package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used across the API and storage.
const DateLayout = "2006-01-02"

// MaxItineraryDays bounds the number of calendar days a range may cover.
const MaxItineraryDays = 366

const secondsPerDay = 24 * 60 * 60

// DateRange is an inclusive range of calendar dates. Time of day is discarded.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange returns ErrInvalidInterval when either date is zero, end is
// before start, or the range covers more than MaxItineraryDays days.
// A single-day range (start == end) is valid.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidInterval)
	}
	s, e := dateOnly(start), dateOnly(end)
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidInterval, e.Format(DateLayout), s.Format(DateLayout))
	}
	r := DateRange{start: s, end: e}
	if n := r.Days(); n > MaxItineraryDays {
		return DateRange{}, fmt.Errorf("%w: range covers %d days, at most %d allowed",
			ErrInvalidInterval, n, MaxItineraryDays)
	}
	return r, nil
}

// ParseDateRange parses two "2006-01-02" dates.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q", ErrInvalidInterval, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q", ErrInvalidInterval, end)
	}
	return NewDateRange(s, e)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time   { return r.end }
func (r DateRange) IsZero() bool     { return r.start.IsZero() }

// Days returns the number of calendar days covered, counting both ends.
// The zero DateRange covers zero days.
func (r DateRange) Days() int {
	if r.IsZero() {
		return 0
	}
	return int((r.end.Unix()-r.start.Unix())/secondsPerDay) + 1
}

// Includes reports whether the calendar date of t lies within the range.
func (r DateRange) Includes(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(r.start) && !d.After(r.end)
}

// Dates enumerates every calendar date in the range in order.
func (r DateRange) Dates() []time.Time {
	out := make([]time.Time, 0, r.Days())
	for d := r.start; !d.After(r.end) && !r.IsZero(); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (r DateRange) Equal(other DateRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

func (r DateRange) String() string {
	return r.start.Format(DateLayout) + ".." + r.end.Format(DateLayout)
}
