package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/routeprogress/pkg/geo"
)

func pt(lon, lat float64) geo.Coordinate {
	return geo.Coordinate{Longitude: lon, Latitude: lat}
}

func TestNewCoordinate(t *testing.T) {
	c, err := geo.NewCoordinate(-75.343, 39.984)
	require.NoError(t, err)
	assert.Equal(t, -75.343, c.Longitude)
	assert.Equal(t, 39.984, c.Latitude)

	_, hasAlt := c.Altitude()
	assert.False(t, hasAlt)

	withAlt := c.WithAltitude(12.5)
	alt, hasAlt := withAlt.Altitude()
	assert.True(t, hasAlt)
	assert.Equal(t, 12.5, alt)
	assert.True(t, withAlt.SamePosition(c))

	_, err = geo.NewCoordinate(181, 0)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
	_, err = geo.NewCoordinate(0, -91)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestDistance(t *testing.T) {
	pt1 := pt(-75.343, 39.984)
	pt2 := pt(-75.534, 39.123)

	tests := []struct {
		unit     geo.Unit
		expected float64
	}{
		{geo.Miles, 60.37218405837491},
		{geo.NauticalMiles, 52.461979624130436},
		{geo.Kilometers, 97.15957803131901},
		{geo.Radians, 0.015245501024842149},
		{geo.Degrees, 0.8735028650863799},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			d, err := geo.Distance(pt1, pt2, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, d, 1e-9)
		})
	}

	t.Run("default unit", func(t *testing.T) {
		d, err := geo.Distance(pt1, pt2, geo.DefaultUnit)
		require.NoError(t, err)
		assert.InDelta(t, 97.15957803131901, d, 1e-9)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := geo.Distance(pt1, pt2, "furlongs")
		assert.ErrorIs(t, err, geo.ErrInvalidUnit)
	})
}

func TestDistance_SamePointIsZero(t *testing.T) {
	units := []geo.Unit{geo.Miles, geo.NauticalMiles, geo.Kilometers, geo.Meters, geo.Feet, geo.Radians, geo.Degrees}
	points := []geo.Coordinate{pt(0, 0), pt(-122.4194, 37.7749), pt(179.9, -89.9), pt(4.9, 52.37)}

	for _, u := range units {
		for _, p := range points {
			d, err := geo.Distance(p, p, u)
			require.NoError(t, err)
			assert.Zero(t, d, "unit %s point %s", u, p)
		}
	}
}

func TestBearing(t *testing.T) {
	origin := pt(0, 0)

	assert.InDelta(t, 0.0, geo.Bearing(origin, pt(0, 1)), 1e-9)
	assert.InDelta(t, 90.0, geo.Bearing(origin, pt(1, 0)), 1e-9)
	assert.InDelta(t, 180.0, geo.Bearing(origin, pt(0, -1)), 1e-9)
	assert.InDelta(t, -90.0, geo.Bearing(origin, pt(-1, 0)), 1e-9)

	b := geo.Bearing(pt(-75.4, 39.4), pt(-75.534, 39.123))
	assert.NotZero(t, b)
	assert.True(t, b < -90 && b > -180, "expected south-west bearing, got %f", b)
}

func TestBearing_NeverMinus180(t *testing.T) {
	negZero := math.Copysign(0, -1)

	b := geo.Bearing(pt(0, 1), pt(negZero, 0))
	assert.Equal(t, 180.0, b)

	b = geo.Bearing(pt(12.5, 45), pt(12.5, -30))
	assert.InDelta(t, 180.0, b, 1e-9)
	assert.Greater(t, b, -180.0)
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := []struct {
		name string
		a, b geo.Coordinate
	}{
		{"short hop", pt(-75.343, 39.984), pt(-75.534, 39.123)},
		{"amsterdam to paris", pt(4.8952, 52.3702), pt(2.3522, 48.8566)},
		{"across the equator", pt(-10, -20), pt(15, 25)},
		{"along a meridian", pt(0, -60), pt(0, 60)},
		{"southern hemisphere", pt(151.2093, -33.8688), pt(174.7633, -36.8485)},
	}
	units := []geo.Unit{geo.Kilometers, geo.Meters, geo.Miles, geo.NauticalMiles, geo.Feet, geo.Degrees, geo.Radians}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			for _, u := range units {
				ab, err := geo.Distance(tt.a, tt.b, u)
				require.NoError(t, err)
				ba, err := geo.Distance(tt.b, tt.a, u)
				require.NoError(t, err)
				assert.InEpsilon(t, ab, ba, 1e-9, "unit %s", u)
			}
		})
	}
}

func TestDestination_TowardTarget(t *testing.T) {
	pairs := []struct {
		name string
		a, b geo.Coordinate
	}{
		{"north-east", pt(0, 0), pt(10, 10)},
		{"south-west", pt(-75.4, 39.4), pt(-75.534, 39.123)},
		{"due west", pt(4.8952, 52.3702), pt(2.3522, 52.3702)},
		{"due south", pt(12.5, 45), pt(12.5, -30)},
		{"long haul", pt(-0.1276, 51.5072), pt(-73.9857, 40.7484)},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			total, err := geo.Distance(tt.a, tt.b, geo.Kilometers)
			require.NoError(t, err)
			bearing := geo.Bearing(tt.a, tt.b)

			for _, f := range []float64{0.1, 0.5, 0.9, 1} {
				d := total * f
				dest, err := geo.Destination(tt.a, d, bearing, geo.Kilometers)
				require.NoError(t, err)

				// on the great circle from a to b, d along it
				fromA, err := geo.Distance(tt.a, dest, geo.Kilometers)
				require.NoError(t, err)
				toB, err := geo.Distance(dest, tt.b, geo.Kilometers)
				require.NoError(t, err)
				assert.InDelta(t, d, fromA, 1e-6, "fraction %v", f)
				assert.InDelta(t, total-d, toB, 1e-6, "fraction %v", f)
			}

			dest, err := geo.Destination(tt.a, total, bearing, geo.Kilometers)
			require.NoError(t, err)
			assert.InDelta(t, tt.b.Longitude, dest.Longitude, 1e-9)
			assert.InDelta(t, tt.b.Latitude, dest.Latitude, 1e-9)
		})
	}
}

func TestDestination(t *testing.T) {
	origin := pt(-75.0, 39.0)

	dest, err := geo.Destination(origin, 100, 180, geo.Kilometers)
	require.NoError(t, err)
	assert.InDelta(t, origin.Longitude, dest.Longitude, 1e-9)
	assert.Less(t, dest.Latitude, origin.Latitude)

	d, err := geo.Distance(origin, dest, geo.Kilometers)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, d, 1e-6)
}

func TestDestination_RoundTrip(t *testing.T) {
	origin := pt(4.8952, 52.3702)

	for _, bearing := range []float64{0, 45, 90, 135, -45, -170} {
		dest, err := geo.Destination(origin, 250, bearing, geo.Meters)
		require.NoError(t, err)

		d, err := geo.Distance(origin, dest, geo.Meters)
		require.NoError(t, err)
		assert.InDelta(t, 250.0, d, 1e-3, "bearing %f", bearing)
		assert.InDelta(t, bearing, geo.Bearing(origin, dest), 1e-3, "bearing %f", bearing)
	}

	_, err := geo.Destination(origin, 1, 0, "chains")
	assert.ErrorIs(t, err, geo.ErrInvalidUnit)
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		name string
		from geo.Coordinate
		to   geo.Coordinate
	}{
		{"horizontal equator", pt(0, 0), pt(10, 0)},
		{"vertical from equator", pt(0, 0), pt(0, 10)},
		{"vertical to equator", pt(0, 10), pt(0, 0)},
		{"diagonal back over equator", pt(-1, 10), pt(1, -1)},
		{"diagonal forward over equator", pt(-5, -1), pt(5, 10)},
		{"long distance", pt(22.5, 21.94304553343818), pt(92.10937499999999, 46.800059446787316)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mid := geo.Midpoint(tt.from, tt.to)

			d1, err := geo.Distance(tt.from, mid, geo.Miles)
			require.NoError(t, err)
			d2, err := geo.Distance(tt.to, mid, geo.Miles)
			require.NoError(t, err)
			assert.InDelta(t, d1, d2, 1e-6)
		})
	}

	mid := geo.Midpoint(pt(0, 0), pt(10, 0))
	assert.InDelta(t, 5.0, mid.Longitude, 1e-9)
	assert.InDelta(t, 0.0, mid.Latitude, 1e-9)
}

func TestLength(t *testing.T) {
	line := geo.Polyline{pt(0, 0), pt(1, 0), pt(2, 0)}

	l, err := geo.Length(line, geo.Degrees)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, l, 1e-6)

	single, err := geo.Length(geo.Polyline{pt(1, 1)}, geo.Meters)
	require.NoError(t, err)
	assert.Zero(t, single)

	_, err = geo.Length(line, "bogus")
	assert.ErrorIs(t, err, geo.ErrInvalidUnit)
}

func TestAlong(t *testing.T) {
	line := geo.Polyline{pt(0, 0), pt(0, 1), pt(0, 2)}

	start, err := geo.Along(line, 0, geo.Degrees)
	require.NoError(t, err)
	assert.Equal(t, line[0], start)

	mid, err := geo.Along(line, 1.5, geo.Degrees)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mid.Longitude, 1e-9)
	assert.InDelta(t, 1.5, mid.Latitude, 1e-6)

	past, err := geo.Along(line, 100, geo.Degrees)
	require.NoError(t, err)
	assert.Equal(t, line.Last(), past)

	_, err = geo.Along(geo.Polyline{}, 1, geo.Degrees)
	assert.ErrorIs(t, err, geo.ErrEmptyLine)

	_, err = geo.Along(line, -1, geo.Degrees)
	assert.ErrorIs(t, err, geo.ErrInvalidDistance)
}

func TestPolylineBBox(t *testing.T) {
	line := geo.Polyline{pt(1, 2), pt(-3, 5), pt(4, -1)}
	box := line.BBox()

	assert.Equal(t, geo.BBox{MinLon: -3, MinLat: -1, MaxLon: 4, MaxLat: 5}, box)
	assert.True(t, box.Contains(pt(0, 0)))
	assert.False(t, box.Contains(pt(5, 0)))
	assert.Equal(t, geo.BBox{}, geo.Polyline{}.BBox())
}
