package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/breatheroute/routeprogress/pkg/geo"
	"github.com/breatheroute/routeprogress/pkg/navigation"
	"github.com/breatheroute/routeprogress/pkg/polyline"
)

// Points on the equator roughly 50 m apart, on the precision-6 grid so they
// survive an encode/decode round trip unchanged.
var (
	p0   = geo.Coordinate{Longitude: 0, Latitude: 0}
	p50  = geo.Coordinate{Longitude: 0.00045, Latitude: 0}
	p100 = geo.Coordinate{Longitude: 0.0009, Latitude: 0}
	p150 = geo.Coordinate{Longitude: 0.00135, Latitude: 0}
	p200 = geo.Coordinate{Longitude: 0.0018, Latitude: 0}
)

func encode(t *testing.T, coords ...geo.Coordinate) string {
	t.Helper()
	s, err := polyline.Encode(geo.Polyline(coords), polyline.Precision6)
	require.NoError(t, err)
	return s
}

func meters(t *testing.T, a, b geo.Coordinate) float64 {
	t.Helper()
	d, err := geo.Distance(a, b, geo.Meters)
	require.NoError(t, err)
	return d
}

func step(t *testing.T, maneuver string, duration float64, coords ...geo.Coordinate) navigation.RouteStep {
	t.Helper()
	var dist float64
	for i := 1; i < len(coords); i++ {
		dist += meters(t, coords[i-1], coords[i])
	}
	return navigation.RouteStep{
		Geometry: encode(t, coords...),
		Distance: dist,
		Duration: duration,
		Maneuver: navigation.Maneuver{Type: maneuver},
	}
}

// twoStepLeg is a leg of two 100 m steps heading east from p0.
func twoStepLeg(t *testing.T) *navigation.RouteLeg {
	t.Helper()
	steps := []navigation.RouteStep{
		step(t, "depart", 20, p0, p100),
		step(t, "continue", 20, p100, p200),
	}
	return &navigation.RouteLeg{Steps: steps, Distance: steps[0].Distance + steps[1].Distance, Duration: 40}
}

// eastRoute is a single-leg route p0 -> p200 ending in an arrive step.
func eastRoute(t *testing.T) *navigation.Route {
	t.Helper()
	leg := twoStepLeg(t)
	leg.Steps = append(leg.Steps, step(t, "arrive", 0, p200))
	return &navigation.Route{
		Geometry: encode(t, p0, p100, p200),
		Distance: leg.Distance,
		Duration: leg.Duration,
		Legs:     []navigation.RouteLeg{*leg},
	}
}

// twoLegRoute has a waypoint at p100.
func twoLegRoute(t *testing.T) *navigation.Route {
	t.Helper()
	first := step(t, "depart", 20, p0, p100)
	second := step(t, "depart", 20, p100, p200)
	legs := []navigation.RouteLeg{
		{Distance: first.Distance, Duration: 20, Steps: []navigation.RouteStep{first, step(t, "arrive", 0, p100)}},
		{Distance: second.Distance, Duration: 20, Steps: []navigation.RouteStep{second, step(t, "arrive", 0, p200)}},
	}
	return &navigation.Route{
		Geometry: encode(t, p0, p100, p200),
		Distance: first.Distance + second.Distance,
		Duration: 40,
		Legs:     legs,
	}
}

func newMatcher(t *testing.T) *navigation.Matcher {
	t.Helper()
	m, err := navigation.NewMatcher(navigation.MatcherConfig{})
	require.NoError(t, err)
	return m
}
