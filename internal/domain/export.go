package domain

import (
	"time"
)

// ExportRow is one row of the flat itinerary export: one row per activity, with
// itinerary and day fields repeated on every row. A day with no activities
// yields one row whose activity fields are empty.
type ExportRow struct {
	ItineraryID    string `json:"itinerary_id"`
	ItineraryTitle string `json:"itinerary_title"`
	BaseCurrency   string `json:"base_currency"`
	State          string `json:"state"`

	DayNumber int    `json:"day_number"`
	DayDate   string `json:"day_date"`

	ActivityID    string     `json:"activity_id,omitempty"`
	ActivityTitle string     `json:"activity_title,omitempty"`
	ActivityType  string     `json:"activity_type,omitempty"`
	ActivityState string     `json:"activity_state,omitempty"`
	Place         string     `json:"place,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	CostAmount    string     `json:"cost_amount,omitempty"`
}

// ExportRows flattens it in day order, activities in start order.
func ExportRows(it *Itinerary) []ExportRow {
	var rows []ExportRow
	for _, d := range it.days {
		base := ExportRow{
			ItineraryID:    it.id.String(),
			ItineraryTitle: it.title,
			BaseCurrency:   it.baseCurrency,
			State:          string(it.state),
			DayNumber:      d.number,
			DayDate:        d.date.Format(DateLayout),
		}
		if len(d.activities) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, a := range d.activities {
			r := base
			start, end := a.slot.start, a.slot.end
			r.ActivityID = a.id.String()
			r.ActivityTitle = a.title
			r.ActivityType = string(a.kind)
			r.ActivityState = string(a.state)
			r.Place = a.place.label
			r.StartsAt = &start
			r.EndsAt = &end
			r.CostAmount = a.cost.amount.StringFixed(2)
			rows = append(rows, r)
		}
	}
	return rows
}
