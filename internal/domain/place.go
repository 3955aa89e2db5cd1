package domain

import (
	"fmt"
	"strings"
)

// Place is a labelled location with optional coordinates.
// Latitude and longitude are either both set or both nil.
type Place struct {
	label     string
	latitude  *float64
	longitude *float64
}

// NewPlace validates the label and, when given, the coordinate pair.
func NewPlace(label string, latitude, longitude *float64) (Place, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Place{}, fmt.Errorf("%w: place label is required", ErrMissingField)
	}
	if (latitude == nil) != (longitude == nil) {
		return Place{}, fmt.Errorf("%w: latitude and longitude must be given together", ErrValidation)
	}
	if latitude != nil {
		if *latitude < -90 || *latitude > 90 {
			return Place{}, fmt.Errorf("%w: latitude %v out of range", ErrValidation, *latitude)
		}
		if *longitude < -180 || *longitude > 180 {
			return Place{}, fmt.Errorf("%w: longitude %v out of range", ErrValidation, *longitude)
		}
		lat, lng := *latitude, *longitude
		return Place{label: label, latitude: &lat, longitude: &lng}, nil
	}
	return Place{label: label}, nil
}

func (p Place) Label() string { return p.label }

func (p Place) HasCoordinates() bool { return p.latitude != nil }

// Coordinates returns the pair and whether it is set.
func (p Place) Coordinates() (lat, lng float64, ok bool) {
	if p.latitude == nil {
		return 0, 0, false
	}
	return *p.latitude, *p.longitude, true
}

func (p Place) Equal(other Place) bool {
	if p.label != other.label || p.HasCoordinates() != other.HasCoordinates() {
		return false
	}
	if !p.HasCoordinates() {
		return true
	}
	return *p.latitude == *other.latitude && *p.longitude == *other.longitude
}

func (p Place) String() string {
	if lat, lng, ok := p.Coordinates(); ok {
		return fmt.Sprintf("%s (%v, %v)", p.label, lat, lng)
	}
	return p.label
}
