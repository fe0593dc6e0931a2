package polyline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/routeprogress/pkg/geo"
	"github.com/breatheroute/routeprogress/pkg/polyline"
)

func c(lat, lon float64) geo.Coordinate {
	return geo.Coordinate{Latitude: lat, Longitude: lon}
}

func assertLinesEqual(t *testing.T, expected, actual geo.Polyline, tolerance float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i].Latitude, actual[i].Latitude, tolerance, "coordinate %d latitude", i)
		assert.InDelta(t, expected[i].Longitude, actual[i].Longitude, tolerance, "coordinate %d longitude", i)
	}
}

func TestDecode_Precision5(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected geo.Polyline
	}{
		{
			name:     "single point",
			encoded:  "_p~iF~ps|U",
			expected: geo.Polyline{c(38.5, -120.2)},
		},
		{
			name:     "two points",
			encoded:  "_p~iF~ps|U_ulLnnqC",
			expected: geo.Polyline{c(38.5, -120.2), c(40.7, -120.95)},
		},
		{
			name:     "three points - Google reference",
			encoded:  "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: geo.Polyline{c(38.5, -120.2), c(40.7, -120.95), c(43.252, -126.453)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := polyline.Decode(tt.encoded, polyline.Precision5)
			require.NoError(t, err)
			assertLinesEqual(t, tt.expected, result, 1e-9)
		})
	}
}

func TestDecode_PrecisionMatters(t *testing.T) {
	at5, err := polyline.Decode("_p~iF~ps|U", polyline.Precision5)
	require.NoError(t, err)
	at6, err := polyline.Decode("_p~iF~ps|U", polyline.Precision6)
	require.NoError(t, err)

	assert.InDelta(t, at5[0].Latitude/10, at6[0].Latitude, 1e-9)
	assert.InDelta(t, at5[0].Longitude/10, at6[0].Longitude, 1e-9)
}

func TestDecode_Errors(t *testing.T) {
	_, err := polyline.Decode("", polyline.Precision6)
	assert.ErrorIs(t, err, polyline.ErrEmptyPolyline)

	_, err = polyline.Decode("_p~iF~ps|U", polyline.Precision(7))
	assert.ErrorIs(t, err, polyline.ErrUnsupportedPrecision)

	// truncated mid-value
	_, err = polyline.Decode("_p~iF~ps|", polyline.Precision5)
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		coords    geo.Polyline
		precision polyline.Precision
	}{
		{
			name:      "Google reference at 5",
			coords:    geo.Polyline{c(38.5, -120.2), c(40.7, -120.95), c(43.252, -126.453)},
			precision: polyline.Precision5,
		},
		{
			name:      "Amsterdam to Utrecht at 5",
			coords:    geo.Polyline{c(52.3676, 4.9041), c(52.0907, 5.1214)},
			precision: polyline.Precision5,
		},
		{
			name:      "Amsterdam streets at 6",
			coords:    geo.Polyline{c(52.374031, 4.889692), c(52.372345, 4.892311), c(52.370012, 4.895349)},
			precision: polyline.Precision6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := polyline.Encode(tt.coords, tt.precision)
			require.NoError(t, err)
			require.NotEmpty(t, encoded)

			decoded, err := polyline.Decode(encoded, tt.precision)
			require.NoError(t, err)
			assertLinesEqual(t, tt.coords, decoded, 1e-6)
		})
	}
}

func TestEncode_GoogleReference(t *testing.T) {
	encoded, err := polyline.Encode(geo.Polyline{c(38.5, -120.2), c(40.7, -120.95), c(43.252, -126.453)}, polyline.Precision5)
	require.NoError(t, err)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)
}

func TestEncode_Empty(t *testing.T) {
	encoded, err := polyline.Encode(nil, polyline.Precision6)
	require.NoError(t, err)
	assert.Empty(t, encoded)

	_, err = polyline.Encode(geo.Polyline{c(1, 1)}, polyline.Precision(4))
	assert.ErrorIs(t, err, polyline.ErrUnsupportedPrecision)
}

func TestLength(t *testing.T) {
	tests := []struct {
		name           string
		coords         geo.Polyline
		expectedMeters float64
		tolerance      float64
	}{
		{"empty", nil, 0, 0},
		{"single point", geo.Polyline{c(52.0, 4.0)}, 0, 0},
		{"Amsterdam to Utrecht - roughly 35km", geo.Polyline{c(52.3676, 4.9041), c(52.0907, 5.1214)}, 35000, 2000},
		{"1 degree latitude at equator - roughly 111km", geo.Polyline{c(0, 0), c(1, 0)}, 111000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expectedMeters, polyline.Length(tt.coords), tt.tolerance)
		})
	}
}

func TestSample(t *testing.T) {
	coords := geo.Polyline{
		c(52.0, 4.0),
		c(52.01, 4.0), // ~1.1km north
		c(52.02, 4.0),
		c(52.03, 4.0),
	}

	t.Run("sample every 500m", func(t *testing.T) {
		sampled := polyline.Sample(coords, 500)
		// ~3.3km: six interior samples plus both ends
		assert.GreaterOrEqual(t, len(sampled), 7)
		assert.Equal(t, coords[0], sampled[0])
		assert.True(t, sampled.Last().SamePosition(coords.Last()))

		for i := 1; i < len(sampled)-1; i++ {
			d, err := geo.Distance(sampled[i-1], sampled[i], geo.Meters)
			require.NoError(t, err)
			assert.InDelta(t, 500, d, 1, "gap before sample %d", i)
		}
	})

	t.Run("interval exceeds route length", func(t *testing.T) {
		sampled := polyline.Sample(coords, 10000)
		assert.Len(t, sampled, 2)
	})

	t.Run("empty coordinates", func(t *testing.T) {
		assert.Nil(t, polyline.Sample(nil, 500))
	})

	t.Run("zero interval returns all", func(t *testing.T) {
		assert.Equal(t, coords, polyline.Sample(coords, 0))
	})
}

func BenchmarkDecode(b *testing.B) {
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = polyline.Decode(encoded, polyline.Precision5)
	}
}

func BenchmarkEncode(b *testing.B) {
	coords := geo.Polyline{c(38.5, -120.2), c(40.7, -120.95), c(43.252, -126.453)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = polyline.Encode(coords, polyline.Precision5)
	}
}
