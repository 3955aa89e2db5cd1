package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActivityType classifies what an activity is.
type ActivityType string

const (
	ActivityTypeFlight    ActivityType = "FLIGHT"
	ActivityTypeLodging   ActivityType = "LODGING"
	ActivityTypeVisit     ActivityType = "VISIT"
	ActivityTypeTransport ActivityType = "TRANSPORT"
	ActivityTypeMeal      ActivityType = "MEAL"
	ActivityTypeActivity  ActivityType = "ACTIVITY"
	ActivityTypeOther     ActivityType = "OTHER"
)

// ActivityTypes lists every valid type in display order.
var ActivityTypes = []ActivityType{
	ActivityTypeFlight, ActivityTypeLodging, ActivityTypeVisit, ActivityTypeTransport,
	ActivityTypeMeal, ActivityTypeActivity, ActivityTypeOther,
}

func (t ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseActivityType accepts any casing of a known type.
func ParseActivityType(s string) (ActivityType, error) {
	t := ActivityType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown activity type %q", ErrValidation, s)
	}
	return t, nil
}

// ActivityState is the lifecycle state of an activity.
//
//	PROPOSED -> CONFIRMED -> CANCELLED
//	PROPOSED -> CANCELLED
//
// CANCELLED is terminal and nothing re-enters PROPOSED.
type ActivityState string

const (
	ActivityProposed  ActivityState = "PROPOSED"
	ActivityConfirmed ActivityState = "CONFIRMED"
	ActivityCancelled ActivityState = "CANCELLED"
)

func (s ActivityState) Valid() bool {
	switch s {
	case ActivityProposed, ActivityConfirmed, ActivityCancelled:
		return true
	}
	return false
}

// ParseActivityState accepts any casing of a known state.
func ParseActivityState(s string) (ActivityState, error) {
	st := ActivityState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown activity state %q", ErrInvalidState, s)
	}
	return st, nil
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ActivityState) CanTransitionTo(next ActivityState) bool {
	switch s {
	case ActivityProposed:
		return next == ActivityConfirmed || next == ActivityCancelled
	case ActivityConfirmed:
		return next == ActivityCancelled
	}
	return false
}

// Activity is a timed, costed entry owned by exactly one Day.
// Fields are private; time slot and cost changes go through Day.UpdateActivity
// so the non-overlap invariant is re-checked.
type Activity struct {
	id          uuid.UUID
	title       string
	description string
	kind        ActivityType
	place       Place
	slot        TimeSlot
	cost        Money
	state       ActivityState
	metadata    json.RawMessage
}

// ActivityParams carries constructor input for NewActivity.
// A nil ID is replaced with a fresh UUID; an empty State defaults to PROPOSED.
type ActivityParams struct {
	ID          uuid.UUID
	Title       string
	Description string
	Type        ActivityType
	Place       Place
	TimeSlot    TimeSlot
	Cost        Money
	State       ActivityState

	// Metadata is an opaque external reference (e.g. a flight offer id).
	// It is stored and returned byte for byte.
	Metadata json.RawMessage
}

// NewActivity validates p and returns a new Activity.
func NewActivity(p ActivityParams) (*Activity, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: activity title is required", ErrMissingField)
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrValidation, p.Type)
	}
	if p.Place.Label() == "" {
		return nil, fmt.Errorf("%w: activity place is required", ErrMissingField)
	}
	if p.TimeSlot.IsZero() {
		return nil, fmt.Errorf("%w: activity time slot is required", ErrInvalidInterval)
	}
	if p.Cost.Currency() == "" {
		return nil, fmt.Errorf("%w: activity cost is required", ErrInvalidCurrency)
	}
	state := p.State
	if state == "" {
		state = ActivityProposed
	}
	if !state.Valid() {
		return nil, fmt.Errorf("%w: unknown activity state %q", ErrInvalidState, p.State)
	}
	if len(p.Metadata) > 0 && !json.Valid(p.Metadata) {
		return nil, fmt.Errorf("%w: activity metadata must be valid JSON", ErrValidation)
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Activity{
		id:          id,
		title:       title,
		description: strings.TrimSpace(p.Description),
		kind:        p.Type,
		place:       p.Place,
		slot:        p.TimeSlot,
		cost:        p.Cost,
		state:       state,
		metadata:    cloneRaw(p.Metadata),
	}, nil
}

func (a *Activity) ID() uuid.UUID             { return a.id }
func (a *Activity) Title() string             { return a.title }
func (a *Activity) Description() string       { return a.description }
func (a *Activity) Type() ActivityType        { return a.kind }
func (a *Activity) Place() Place              { return a.place }
func (a *Activity) TimeSlot() TimeSlot        { return a.slot }
func (a *Activity) Cost() Money               { return a.cost }
func (a *Activity) State() ActivityState      { return a.state }
func (a *Activity) Metadata() json.RawMessage { return cloneRaw(a.metadata) }

func (a *Activity) IsProposed() bool  { return a.state == ActivityProposed }
func (a *Activity) IsConfirmed() bool { return a.state == ActivityConfirmed }
func (a *Activity) IsCancelled() bool { return a.state == ActivityCancelled }

// Confirm moves a PROPOSED activity to CONFIRMED.
func (a *Activity) Confirm() error { return a.transition(ActivityConfirmed) }

// Cancel moves a PROPOSED or CONFIRMED activity to CANCELLED.
func (a *Activity) Cancel() error { return a.transition(ActivityCancelled) }

func (a *Activity) transition(next ActivityState) error {
	if !a.state.CanTransitionTo(next) {
		return &TransitionError{ActivityID: a.id, From: a.state, To: next}
	}
	a.state = next
	return nil
}

// OverlapsWith compares the two time slots with the open-interval rule.
func (a *Activity) OverlapsWith(other *Activity) bool {
	return a.slot.Overlaps(other.slot)
}

func (a *Activity) clone() *Activity {
	c := *a
	c.metadata = cloneRaw(a.metadata)
	return &c
}

// ActivityPatch lists the fields to replace on an existing activity.
// Nil fields are left untouched.
type ActivityPatch struct {
	Title       *string
	Description *string
	TimeSlot    *TimeSlot
	Cost        *Money
}

// validate checks the patch on its own, before any state is touched.
func (p ActivityPatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: activity title cannot be empty", ErrMissingField)
	}
	if p.TimeSlot != nil && p.TimeSlot.IsZero() {
		return fmt.Errorf("%w: activity time slot is required", ErrInvalidInterval)
	}
	if p.Cost != nil && p.Cost.Currency() == "" {
		return fmt.Errorf("%w: activity cost is required", ErrInvalidCurrency)
	}
	return nil
}

func (a *Activity) apply(p ActivityPatch) {
	if p.Title != nil {
		a.title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		a.description = strings.TrimSpace(*p.Description)
	}
	if p.TimeSlot != nil {
		a.slot = *p.TimeSlot
	}
	if p.Cost != nil {
		a.cost = *p.Cost
	}
}

func cloneRaw(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
