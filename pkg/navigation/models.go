// Package navigation tracks a traveller's progress along a directions route
// and decides when they have left it.
package navigation

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation operations.
var (
	// ErrEmptyRoute indicates a nil route or a leg without steps.
	ErrEmptyRoute = errors.New("route has no steps")
	// ErrStepIndexOutOfRange indicates a step index past the end of a leg.
	ErrStepIndexOutOfRange = errors.New("step index out of range")
	// ErrLegIndexOutOfRange indicates a leg index past the end of a route.
	ErrLegIndexOutOfRange = errors.New("leg index out of range")
	// ErrInvalidProgress indicates a negative distance or duration was supplied.
	ErrInvalidProgress = errors.New("invalid progress value")
)

// IndexError carries the offending index alongside an out-of-range error.
type IndexError struct {
	Index int   // Requested index
	Count int   // Number of items available
	Err   error // ErrStepIndexOutOfRange or ErrLegIndexOutOfRange
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d, have %d", e.Err, e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// Route is a directions route made of one leg per waypoint pair.
type Route struct {
	Geometry string     `json:"geometry"` // Encoded polyline of the whole route
	Distance float64    `json:"distance"` // Meters
	Duration float64    `json:"duration"` // Seconds
	Legs     []RouteLeg `json:"legs"`     // Legs in travel order
}

// RouteLeg is the part of a route between two waypoints.
type RouteLeg struct {
	Summary  string      `json:"summary"`
	Distance float64     `json:"distance"` // Meters
	Duration float64     `json:"duration"` // Seconds
	Steps    []RouteStep `json:"steps"`
}

// RouteStep is a single maneuver and the road travelled until the next one.
type RouteStep struct {
	Geometry string   `json:"geometry"` // Encoded polyline
	Name     string   `json:"name"`     // Road name
	Distance float64  `json:"distance"` // Meters
	Duration float64  `json:"duration"` // Seconds
	Maneuver Maneuver `json:"maneuver"`
}

// Maneuver describes the action at the start of a step.
type Maneuver struct {
	Type        string `json:"type"`               // e.g. "depart", "turn", "arrive"
	Modifier    string `json:"modifier,omitempty"` // e.g. "left", "slight right"
	Instruction string `json:"instruction,omitempty"`
}

// Step returns the step at index, validating both the leg and the index.
func (l *RouteLeg) Step(index int) (*RouteStep, error) {
	if l == nil || len(l.Steps) == 0 {
		return nil, ErrEmptyRoute
	}
	if index < 0 || index >= len(l.Steps) {
		return nil, &IndexError{Index: index, Count: len(l.Steps), Err: ErrStepIndexOutOfRange}
	}
	return &l.Steps[index], nil
}

// Leg returns the leg at index.
func (r *Route) Leg(index int) (*RouteLeg, error) {
	if r == nil || len(r.Legs) == 0 {
		return nil, ErrEmptyRoute
	}
	if index < 0 || index >= len(r.Legs) {
		return nil, &IndexError{Index: index, Count: len(r.Legs), Err: ErrLegIndexOutOfRange}
	}
	return &r.Legs[index], nil
}
