package navigation

import (
	"fmt"
	"sync"

	"github.com/breatheroute/routeprogress/pkg/geo"
	"github.com/breatheroute/routeprogress/pkg/polyline"
)

// DefaultOffRouteThresholdKm is how far a position may be from every step
// of a leg before it is considered off-route.
const DefaultOffRouteThresholdKm = 0.1

// DefaultMaxCachedGeometries bounds the decoded step geometries a Matcher
// keeps. A typical route has well under this many steps.
const DefaultMaxCachedGeometries = 1024

// MatcherConfig holds configuration for a Matcher.
type MatcherConfig struct {
	// OffRouteThresholdKm is the default threshold handed to new progress
	// trackers (default: 0.1).
	OffRouteThresholdKm float64

	// Precision of the encoded step geometries (default: 6).
	Precision polyline.Precision

	// MaxCachedGeometries caps the decode cache (default: 1024). When the
	// cap is reached the cache is emptied and refilled from the current route.
	MaxCachedGeometries int
}

// Matcher relates positions to the steps of a route leg. Decoded step
// geometry is cached by encoded string, so a Matcher is meant to be scoped
// to one route, or shared by sessions navigating the same route. The cache
// is bounded, so a long-lived Matcher that sees many routes stays small.
type Matcher struct {
	threshold float64
	precision polyline.Precision
	maxCached int

	mu    sync.RWMutex
	cache map[string]geo.Polyline
}

// NewMatcher creates a Matcher.
func NewMatcher(cfg MatcherConfig) (*Matcher, error) {
	threshold := cfg.OffRouteThresholdKm
	if threshold == 0 {
		threshold = DefaultOffRouteThresholdKm
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: off-route threshold %f km", ErrInvalidProgress, threshold)
	}

	precision := cfg.Precision
	if precision == 0 {
		precision = polyline.DefaultPrecision
	}
	if err := precision.Validate(); err != nil {
		return nil, err
	}

	maxCached := cfg.MaxCachedGeometries
	if maxCached == 0 {
		maxCached = DefaultMaxCachedGeometries
	}
	if maxCached < 0 {
		return nil, fmt.Errorf("%w: cache size %d", ErrInvalidProgress, maxCached)
	}

	return &Matcher{
		threshold: threshold,
		precision: precision,
		maxCached: maxCached,
		cache:     make(map[string]geo.Polyline),
	}, nil
}

// Threshold returns the configured off-route threshold in kilometers.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// StepGeometry returns the decoded geometry of a step.
func (m *Matcher) StepGeometry(step *RouteStep) (geo.Polyline, error) {
	return m.decode(step.Geometry)
}

func (m *Matcher) decode(encoded string) (geo.Polyline, error) {
	m.mu.RLock()
	line, ok := m.cache[encoded]
	m.mu.RUnlock()
	if ok {
		return line, nil
	}

	line, err := polyline.Decode(encoded, m.precision)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.cache[encoded]; !ok && len(m.cache) >= m.maxCached {
		clear(m.cache)
	}
	m.cache[encoded] = line
	m.mu.Unlock()
	return line, nil
}

func (m *Matcher) stepLine(leg *RouteLeg, stepIndex int) (geo.Polyline, error) {
	step, err := leg.Step(stepIndex)
	if err != nil {
		return nil, err
	}
	line, err := m.StepGeometry(step)
	if err != nil {
		return nil, fmt.Errorf("step %d geometry: %w", stepIndex, err)
	}
	return line, nil
}

// SnapToRoute returns the point on the step's geometry closest to position.
// A step whose geometry is a single vertex snaps to that vertex.
func (m *Matcher) SnapToRoute(position geo.Coordinate, leg *RouteLeg, stepIndex int) (geo.Coordinate, error) {
	line, err := m.stepLine(leg, stepIndex)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return snap(position, line)
}

func snap(position geo.Coordinate, line geo.Polyline) (geo.Coordinate, error) {
	if len(line) == 1 {
		return line[0], nil
	}
	projected, err := geo.PointOnLine(position, line)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return projected.Point, nil
}

// DistanceToStep returns the distance from position to its snapped point on the step.
func (m *Matcher) DistanceToStep(position geo.Coordinate, leg *RouteLeg, stepIndex int, unit geo.Unit) (float64, error) {
	snapped, err := m.SnapToRoute(position, leg, stepIndex)
	if err != nil {
		return 0, err
	}
	return geo.Distance(position, snapped, unit)
}

// IsInStep reports whether position is within thresholdKm of the step.
func (m *Matcher) IsInStep(position geo.Coordinate, leg *RouteLeg, stepIndex int, thresholdKm float64) (bool, error) {
	d, err := m.DistanceToStep(position, leg, stepIndex, geo.Kilometers)
	if err != nil {
		return false, err
	}
	return d <= thresholdKm, nil
}

// IsOffRoute reports whether position is further than thresholdKm from
// every step of the leg.
func (m *Matcher) IsOffRoute(position geo.Coordinate, leg *RouteLeg, thresholdKm float64) (bool, error) {
	if leg == nil || len(leg.Steps) == 0 {
		return false, ErrEmptyRoute
	}
	for i := range leg.Steps {
		in, err := m.IsInStep(position, leg, i, thresholdKm)
		if err != nil {
			return false, err
		}
		if in {
			return false, nil
		}
	}
	return true, nil
}

// ClosestStep returns the index of the step nearest to position. On an
// exact tie the later step wins.
func (m *Matcher) ClosestStep(position geo.Coordinate, leg *RouteLeg) (int, error) {
	if leg == nil || len(leg.Steps) == 0 {
		return 0, ErrEmptyRoute
	}

	closest := 0
	minDist := 0.0
	for i := range leg.Steps {
		d, err := m.DistanceToStep(position, leg, i, geo.Kilometers)
		if err != nil {
			return 0, err
		}
		if i == 0 || d <= minDist {
			closest = i
			minDist = d
		}
	}
	return closest, nil
}

// DistanceToEndOfStep measures along the step's geometry from the
// projection of position to the step's last vertex.
func (m *Matcher) DistanceToEndOfStep(position geo.Coordinate, leg *RouteLeg, stepIndex int, unit geo.Unit) (float64, error) {
	line, err := m.stepLine(leg, stepIndex)
	if err != nil {
		return 0, err
	}
	return remainingAlong(position, line, unit)
}

// DistanceToEndOfRoute measures along the whole route geometry from the
// projection of position to the route's destination.
func (m *Matcher) DistanceToEndOfRoute(position geo.Coordinate, route *Route, unit geo.Unit) (float64, error) {
	if route == nil {
		return 0, ErrEmptyRoute
	}
	line, err := m.decode(route.Geometry)
	if err != nil {
		return 0, fmt.Errorf("route geometry: %w", err)
	}
	return remainingAlong(position, line, unit)
}

func remainingAlong(position geo.Coordinate, line geo.Polyline, unit geo.Unit) (float64, error) {
	if len(line) == 1 {
		if _, err := unit.Factor(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	rest, err := geo.LineSlice(position, line.Last(), line)
	if err != nil {
		return 0, err
	}
	return geo.Length(rest, unit)
}
