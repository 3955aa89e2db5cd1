package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// The views below are the read-only projection served to API clients.
// They are plain data with JSON tags and carry the computed fields
// clients would otherwise have to derive.

type MoneyView struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func NewMoneyView(m Money, tag language.Tag) MoneyView {
	return MoneyView{Amount: m.amount.StringFixed(2), Currency: m.currency, Display: m.Format(tag)}
}

type PlaceView struct {
	Label     string   `json:"label"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type ActivityView struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Type            ActivityType    `json:"type"`
	State           ActivityState   `json:"state"`
	Place           PlaceView       `json:"place"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	TimeRange       string          `json:"time_range"`
	DurationMinutes int             `json:"duration_minutes"`
	Cost            MoneyView       `json:"cost"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	IsConfirmed     bool            `json:"is_confirmed"`
	IsCancelled     bool            `json:"is_cancelled"`
	CanConfirm      bool            `json:"can_confirm"`
	CanCancel       bool            `json:"can_cancel"`
	HasConflict     bool            `json:"has_conflict"`
}

type DayView struct {
	ID            uuid.UUID      `json:"id"`
	Number        int            `json:"number"`
	Date          string         `json:"date"`
	Activities    []ActivityView `json:"activities"`
	TotalCost     *MoneyView     `json:"total_cost"`
	ActivityCount int            `json:"activity_count"`
}

type ItineraryView struct {
	ID              uuid.UUID       `json:"id"`
	PlanRequestID   *uuid.UUID      `json:"plan_request_id,omitempty"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	DurationDays    int             `json:"duration_days"`
	BaseCurrency    string          `json:"base_currency"`
	State           ItineraryState  `json:"state"`
	CanBeModified   bool            `json:"can_be_modified"`
	Version         int             `json:"version"`
	Days            []DayView       `json:"days"`
	TotalCost       MoneyView       `json:"total_cost"`
	CostPerDay      MoneyView       `json:"cost_per_day"`
	ActivitySummary ActivitySummary `json:"activity_summary"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewItineraryView projects it. Money display strings are localized for tag.
func NewItineraryView(it *Itinerary, tag language.Tag) (ItineraryView, error) {
	total, err := it.TotalCost()
	if err != nil {
		return ItineraryView{}, err
	}
	perDay, err := it.CostPerDay()
	if err != nil {
		return ItineraryView{}, err
	}
	conflicts := OverlapValidator{}.ConflictingActivityIDs(it)

	v := ItineraryView{
		ID:              it.id,
		OwnerID:         it.ownerID,
		Title:           it.title,
		Description:     it.description,
		StartDate:       it.dates.Start().Format(DateLayout),
		EndDate:         it.dates.End().Format(DateLayout),
		DurationDays:    it.dates.Days(),
		BaseCurrency:    it.baseCurrency,
		State:           it.state,
		CanBeModified:   it.CanBeModified(),
		Version:         it.version,
		Days:            make([]DayView, 0, len(it.days)),
		TotalCost:       NewMoneyView(total, tag),
		CostPerDay:      NewMoneyView(perDay, tag),
		ActivitySummary: it.ActivitySummary(),
		CreatedAt:       it.createdAt,
		UpdatedAt:       it.updatedAt,
	}
	if it.planRequestID != uuid.Nil {
		id := it.planRequestID
		v.PlanRequestID = &id
	}
	for _, d := range it.days {
		dv, err := newDayView(d, conflicts, tag)
		if err != nil {
			return ItineraryView{}, err
		}
		v.Days = append(v.Days, dv)
	}
	return v, nil
}

func newDayView(d *Day, conflicts []uuid.UUID, tag language.Tag) (DayView, error) {
	dv := DayView{
		ID:            d.id,
		Number:        d.number,
		Date:          d.date.Format(DateLayout),
		Activities:    make([]ActivityView, 0, len(d.activities)),
		ActivityCount: len(d.activities),
	}
	total, ok, err := d.TotalCost()
	if err != nil {
		return DayView{}, err
	}
	if ok {
		mv := NewMoneyView(total, tag)
		dv.TotalCost = &mv
	}
	for _, a := range d.activities {
		av := NewActivityView(a, tag)
		av.HasConflict = slices.Contains(conflicts, a.id)
		dv.Activities = append(dv.Activities, av)
	}
	return dv, nil
}

// NewActivityView projects a single activity. HasConflict is left false.
func NewActivityView(a *Activity, tag language.Tag) ActivityView {
	v := ActivityView{
		ID:              a.id,
		Title:           a.title,
		Description:     a.description,
		Type:            a.kind,
		State:           a.state,
		Place:           PlaceView{Label: a.place.label},
		StartsAt:        a.slot.start,
		EndsAt:          a.slot.end,
		TimeRange:       a.slot.String(),
		DurationMinutes: a.slot.DurationMinutes(),
		Cost:            NewMoneyView(a.cost, tag),
		Metadata:        cloneRaw(a.metadata),
		IsConfirmed:     a.IsConfirmed(),
		IsCancelled:     a.IsCancelled(),
		CanConfirm:      a.state.CanTransitionTo(ActivityConfirmed),
		CanCancel:       a.state.CanTransitionTo(ActivityCancelled),
	}
	if lat, lng, ok := a.place.Coordinates(); ok {
		v.Place.Latitude, v.Place.Longitude = &lat, &lng
	}
	return v
}

// ItinerarySummaryView is the list form of an itinerary, built from its row alone.
type ItinerarySummaryView struct {
	ID            uuid.UUID      `json:"id"`
	PlanRequestID *uuid.UUID     `json:"plan_request_id,omitempty"`
	OwnerID       uuid.UUID      `json:"owner_id"`
	Title         string         `json:"title"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	BaseCurrency  string         `json:"base_currency"`
	State         ItineraryState `json:"state"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewItinerarySummaryView(s ItinerarySnapshot) ItinerarySummaryView {
	v := ItinerarySummaryView{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Title:        s.Title,
		StartDate:    s.StartDate.Format(DateLayout),
		EndDate:      s.EndDate.Format(DateLayout),
		BaseCurrency: s.BaseCurrency,
		State:        s.State,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.PlanRequestID != uuid.Nil {
		id := s.PlanRequestID
		v.PlanRequestID = &id
	}
	return v
}

type PlanRequestView struct {
	ID           uuid.UUID         `json:"id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	Destination  string            `json:"destination"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	DurationDays int               `json:"duration_days"`
	Budget       MoneyView         `json:"budget"`
	BudgetPerDay MoneyView         `json:"budget_per_day"`
	Interests    []string          `json:"interests"`
	Status       PlanRequestStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func NewPlanRequestView(pr *PlanRequest, tag language.Tag) (PlanRequestView, error) {
	perDay, err := pr.BudgetPerDay()
	if err != nil {
		return PlanRequestView{}, err
	}
	interests := pr.Interests()
	if interests == nil {
		interests = []string{}
	}
	return PlanRequestView{
		ID:           pr.id,
		OwnerID:      pr.ownerID,
		Destination:  pr.destination.Label(),
		StartDate:    pr.dates.Start().Format(DateLayout),
		EndDate:      pr.dates.End().Format(DateLayout),
		DurationDays: pr.dates.Days(),
		Budget:       NewMoneyView(pr.budget, tag),
		BudgetPerDay: NewMoneyView(perDay, tag),
		Interests:    interests,
		Status:       pr.status,
		CreatedAt:    pr.createdAt,
		UpdatedAt:    pr.updatedAt,
	}, nil
}

type BudgetView struct {
	Max                MoneyView `json:"max"`
	Remaining          MoneyView `json:"remaining"`
	UtilizationPercent string    `json:"utilization_percent"`
	Exceeded           bool      `json:"exceeded"`
}

type FinancialSummaryView struct {
	Total      MoneyView                  `json:"total"`
	CostPerDay MoneyView                  `json:"cost_per_day"`
	CostByType map[ActivityType]MoneyView `json:"cost_by_type"`
	Budget     *BudgetView                `json:"budget,omitempty"`
}

func NewFinancialSummaryView(s FinancialSummary, tag language.Tag) FinancialSummaryView {
	v := FinancialSummaryView{
		Total:      NewMoneyView(s.Total, tag),
		CostPerDay: NewMoneyView(s.CostPerDay, tag),
		CostByType: make(map[ActivityType]MoneyView, len(s.CostByType)),
	}
	for t, m := range s.CostByType {
		v.CostByType[t] = NewMoneyView(m, tag)
	}
	if s.Budget != nil {
		v.Budget = &BudgetView{
			Max:                NewMoneyView(s.Budget.Max, tag),
			Remaining:          NewMoneyView(s.Budget.Remaining, tag),
			UtilizationPercent: s.Budget.UtilizationPercent.StringFixed(2),
			Exceeded:           s.Budget.Exceeded,
		}
	}
	return v
}

type DayOccupancyView struct {
	DayNumber       int        `json:"day_number"`
	Date            string     `json:"date"`
	Occupied        bool       `json:"occupied"`
	EarliestStart   *time.Time `json:"earliest_start"`
	LatestEnd       *time.Time `json:"latest_end"`
	OccupiedMinutes int        `json:"occupied_minutes"`
	ActivityCount   int        `json:"activity_count"`
	HasOverlaps     bool       `json:"has_overlaps"`
}

func NewDayOccupancyViews(report []DayOccupancy) []DayOccupancyView {
	out := make([]DayOccupancyView, 0, len(report))
	for _, o := range report {
		v := DayOccupancyView{
			DayNumber:       o.DayNumber,
			Date:            o.Date.Format(DateLayout),
			Occupied:        o.Occupied,
			OccupiedMinutes: o.OccupiedMinutes,
			ActivityCount:   o.ActivityCount,
			HasOverlaps:     o.HasOverlaps,
		}
		if o.Occupied {
			start, end := o.EarliestStart, o.LatestEnd
			v.EarliestStart, v.LatestEnd = &start, &end
		}
		out = append(out, v)
	}
	return out
}

type FreeSlotView struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

func NewFreeSlotViews(slots []TimeSlot) []FreeSlotView {
	out := make([]FreeSlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, FreeSlotView{Start: s.start, End: s.end, DurationMinutes: s.DurationMinutes()})
	}
	return out
}
