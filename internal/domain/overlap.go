package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Operating window used when searching for free time on a day.
const (
	DayWindowStart = 6 * time.Hour
	DayWindowEnd   = 23 * time.Hour
)

// OverlapValidator detects and reports schedule conflicts. It never mutates
// the days or itineraries it inspects.
type OverlapValidator struct{}

// OverlapPair is two non-cancelled activities on the same day whose slots overlap.
// First starts no later than Second.
type OverlapPair struct {
	DayNumber int
	First     *Activity
	Second    *Activity
}

// CheckOverlap returns the first non-cancelled activity on d, other than
// exclude, that overlaps candidate. It returns nil when there is none.
func (OverlapValidator) CheckOverlap(d *Day, candidate *Activity, exclude uuid.UUID) *Activity {
	return findConflict(d.activities, candidate.slot, exclude)
}

// FindDayOverlaps compares every pair of non-cancelled activities on d.
func (OverlapValidator) FindDayOverlaps(d *Day) []OverlapPair {
	active := d.ActiveActivities()
	var out []OverlapPair
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if active[i].OverlapsWith(active[j]) {
				out = append(out, OverlapPair{DayNumber: d.number, First: active[i], Second: active[j]})
			}
		}
	}
	return out
}

// FindAllOverlaps flattens FindDayOverlaps over every day of it.
func (v OverlapValidator) FindAllOverlaps(it *Itinerary) []OverlapPair {
	var out []OverlapPair
	for _, d := range it.days {
		out = append(out, v.FindDayOverlaps(d)...)
	}
	return out
}

func (v OverlapValidator) HasAnyOverlap(it *Itinerary) bool {
	for _, d := range it.days {
		if len(v.FindDayOverlaps(d)) > 0 {
			return true
		}
	}
	return false
}

// ConflictingActivityIDs lists every activity involved in an overlap, once,
// in the order first seen.
func (v OverlapValidator) ConflictingActivityIDs(it *Itinerary) []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range v.FindAllOverlaps(it) {
		for _, id := range []uuid.UUID{p.First.id, p.Second.id} {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// SuggestFreeSlots returns the gaps of the operating window on d that can hold
// candidate's duration. The activity exclude is treated as absent.
func (v OverlapValidator) SuggestFreeSlots(d *Day, candidate *Activity, exclude uuid.UUID) []TimeSlot {
	return v.FreeSlots(d, candidate.slot.Duration(), exclude)
}

// FreeSlots scans the non-cancelled activities of d in start order and returns
// every gap within 06:00-23:00 of at least duration. An empty day yields the
// whole window.
func (OverlapValidator) FreeSlots(d *Day, duration time.Duration, exclude uuid.UUID) []TimeSlot {
	windowStart := d.date.Add(DayWindowStart)
	windowEnd := d.date.Add(DayWindowEnd)

	var out []TimeSlot
	emit := func(from, to time.Time) {
		if to.After(windowEnd) {
			to = windowEnd
		}
		if from.Before(windowStart) {
			from = windowStart
		}
		if to.Sub(from) < duration || !to.After(from) {
			return
		}
		if s, err := NewTimeSlot(from, to); err == nil {
			out = append(out, s)
		}
	}

	cursor := windowStart
	for _, a := range d.activities {
		if a.id == exclude || a.IsCancelled() {
			continue
		}
		if a.slot.start.After(cursor) {
			emit(cursor, a.slot.start)
		}
		if a.slot.end.After(cursor) {
			cursor = a.slot.end
		}
	}
	emit(cursor, windowEnd)
	return out
}

// ConflictDetail names the two activities of an overlap.
type ConflictDetail struct {
	FirstID     uuid.UUID `json:"first_id"`
	FirstTitle  string    `json:"first_title"`
	SecondID    uuid.UUID `json:"second_id"`
	SecondTitle string    `json:"second_title"`
}

// IntegrityIssue reports the overlaps found on one day.
type IntegrityIssue struct {
	Kind      string           `json:"kind"`
	DayNumber int              `json:"day_number"`
	Date      string           `json:"date"`
	Count     int              `json:"count"`
	Details   []ConflictDetail `json:"details"`
}

type IntegrityReport struct {
	Valid  bool             `json:"valid"`
	Issues []IntegrityIssue `json:"issues"`
}

// ValidateIntegrity audits every day for overlaps regardless of how the data
// was loaded.
func (v OverlapValidator) ValidateIntegrity(it *Itinerary) IntegrityReport {
	report := IntegrityReport{Issues: []IntegrityIssue{}}
	for _, d := range it.days {
		pairs := v.FindDayOverlaps(d)
		if len(pairs) == 0 {
			continue
		}
		issue := IntegrityIssue{
			Kind:      "OVERLAP",
			DayNumber: d.number,
			Date:      d.date.Format(DateLayout),
			Count:     len(pairs),
		}
		for _, p := range pairs {
			issue.Details = append(issue.Details, ConflictDetail{
				FirstID:     p.First.id,
				FirstTitle:  p.First.title,
				SecondID:    p.Second.id,
				SecondTitle: p.Second.title,
			})
		}
		report.Issues = append(report.Issues, issue)
	}
	report.Valid = len(report.Issues) == 0
	return report
}

// DayOccupancy summarizes how busy one day is. Cancelled activities are ignored.
type DayOccupancy struct {
	DayNumber       int
	Date            time.Time
	Occupied        bool
	EarliestStart   time.Time
	LatestEnd       time.Time
	OccupiedMinutes int
	ActivityCount   int
	HasOverlaps     bool
}

// OccupancyReport returns one DayOccupancy per day in number order.
func (v OverlapValidator) OccupancyReport(it *Itinerary) []DayOccupancy {
	out := make([]DayOccupancy, 0, len(it.days))
	for _, d := range it.days {
		occ := DayOccupancy{DayNumber: d.number, Date: d.date}
		for _, a := range d.ActiveActivities() {
			if occ.ActivityCount == 0 || a.slot.start.Before(occ.EarliestStart) {
				occ.EarliestStart = a.slot.start
			}
			if occ.ActivityCount == 0 || a.slot.end.After(occ.LatestEnd) {
				occ.LatestEnd = a.slot.end
			}
			occ.OccupiedMinutes += a.slot.DurationMinutes()
			occ.ActivityCount++
		}
		occ.Occupied = occ.ActivityCount > 0
		occ.HasOverlaps = len(v.FindDayOverlaps(d)) > 0
		out = append(out, occ)
	}
	return out
}
