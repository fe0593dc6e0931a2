// Package polyline encodes and decodes step geometry in the Google encoded
// polyline format, as returned by OSRM-style directions services.
// The algorithm is documented at: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"errors"
	"fmt"

	gopolyline "github.com/twpayne/go-polyline"

	"github.com/breatheroute/routeprogress/pkg/geo"
)

// Precision is the number of decimal places a polyline was encoded with.
type Precision int

const (
	// Precision5 is the classic Google / OSRM v4 precision.
	Precision5 Precision = 5
	// Precision6 is used by OSRM v5 directions geometries.
	Precision6 Precision = 6
)

// DefaultPrecision is used when a caller does not configure one.
const DefaultPrecision = Precision6

var (
	// ErrEmptyPolyline is returned when decoding an empty string.
	ErrEmptyPolyline = errors.New("encoded polyline is empty")
	// ErrUnsupportedPrecision is returned for precisions other than 5 and 6.
	ErrUnsupportedPrecision = errors.New("unsupported polyline precision")
)

var (
	codec5 = gopolyline.Codec{Dim: 2, Scale: 1e5}
	codec6 = gopolyline.Codec{Dim: 2, Scale: 1e6}
)

func (p Precision) codec() (gopolyline.Codec, error) {
	switch p {
	case Precision5:
		return codec5, nil
	case Precision6:
		return codec6, nil
	}
	return gopolyline.Codec{}, fmt.Errorf("%w: %d", ErrUnsupportedPrecision, int(p))
}

// Validate reports whether the precision has a codec.
func (p Precision) Validate() error {
	_, err := p.codec()
	return err
}

// Decode decodes an encoded polyline into a coordinate path.
func Decode(encoded string, precision Precision) (geo.Polyline, error) {
	if encoded == "" {
		return nil, ErrEmptyPolyline
	}
	c, err := precision.codec()
	if err != nil {
		return nil, err
	}

	coords, _, err := c.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	line := make(geo.Polyline, len(coords))
	for i, latLng := range coords {
		line[i] = geo.Coordinate{Latitude: latLng[0], Longitude: latLng[1]}
		if !line[i].Valid() {
			return nil, fmt.Errorf("decode polyline: vertex %d: %w", i, geo.ErrInvalidCoordinate)
		}
	}
	return line, nil
}

// Encode encodes a coordinate path. An empty path encodes to "".
func Encode(line geo.Polyline, precision Precision) (string, error) {
	c, err := precision.codec()
	if err != nil {
		return "", err
	}
	if len(line) == 0 {
		return "", nil
	}

	coords := make([][]float64, len(line))
	for i, p := range line {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(c.EncodeCoords(nil, coords)), nil
}

// Length calculates the total length of a path in meters.
func Length(line geo.Polyline) float64 {
	// meters is always a known unit
	m, _ := geo.Length(line, geo.Meters)
	return m
}

// Sample returns coordinates spaced intervalMeters apart along the path,
// always including both ends.
func Sample(line geo.Polyline, intervalMeters float64) geo.Polyline {
	if len(line) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		return line
	}

	sampled := geo.Polyline{line[0]}
	accumulated := 0.0

	for i := 1; i < len(line); i++ {
		from := line[i-1]
		segmentDist, _ := geo.Distance(from, line[i], geo.Meters)
		bearing := geo.Bearing(from, line[i])
		offset := 0.0

		for accumulated+segmentDist >= intervalMeters {
			remaining := intervalMeters - accumulated
			offset += remaining

			p, _ := geo.Destination(from, offset, bearing, geo.Meters)
			sampled = append(sampled, p)

			segmentDist -= remaining
			accumulated = 0
		}

		accumulated += segmentDist
	}

	last := line.Last()
	if !sampled.Last().SamePosition(last) {
		sampled = append(sampled, last)
	}
	return sampled
}
