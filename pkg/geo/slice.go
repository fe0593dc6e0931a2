package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// LineSlice returns the part of line between the projections of start and
// stop. The result runs in line order regardless of which query comes first.
func LineSlice(start, stop Coordinate, line Polyline) (Polyline, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateLine, len(line))
	}

	first, err := PointOnLine(start, line)
	if err != nil {
		return nil, err
	}
	last, err := PointOnLine(stop, line)
	if err != nil {
		return nil, err
	}
	if first.SegmentIndex > last.SegmentIndex {
		first, last = last, first
	}

	out := make(Polyline, 0, last.SegmentIndex-first.SegmentIndex+2)
	out = append(out, first.Point)
	out = append(out, line[first.SegmentIndex+1:last.SegmentIndex+1]...)
	out = append(out, last.Point)
	return out, nil
}

// SliceGeometry is LineSlice for a geometry whose kind is only known at
// runtime. Anything other than a line string is rejected.
func SliceGeometry(start, stop Coordinate, g orb.Geometry) (Polyline, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: got nil geometry", ErrNotALineString)
	}
	ls, ok := g.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotALineString, g.GeoJSONType())
	}
	return LineSlice(start, stop, FromLineString(ls))
}

// LineSliceAlong returns the part of line between two distances measured
// from its start.
func LineSliceAlong(line Polyline, startDist, stopDist float64, unit Unit) (Polyline, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateLine, len(line))
	}
	if startDist == stopDist {
		return nil, fmt.Errorf("%w: start and stop distance are both %f", ErrInvalidSlice, startDist)
	}
	if startDist < 0 || stopDist < 0 {
		return nil, fmt.Errorf("%w: distances must be >= 0", ErrInvalidDistance)
	}
	start, err := DistanceToRadians(startDist, unit)
	if err != nil {
		return nil, err
	}
	stop, err := DistanceToRadians(stopDist, unit)
	if err != nil {
		return nil, err
	}

	var slice Polyline
	var travelled float64
	for i := range line {
		if start >= travelled && i == len(line)-1 {
			break
		}
		if travelled > start && len(slice) == 0 {
			direction := Bearing(line[i], line[i-1]) - 180
			slice = append(slice, destination(line[i], start-travelled, direction))
		}
		if travelled >= stop {
			overshot := stop - travelled
			if overshot == 0 {
				return append(slice, line[i]), nil
			}
			direction := Bearing(line[i], line[i-1]) - 180
			return append(slice, destination(line[i], overshot, direction)), nil
		}
		if travelled >= start {
			slice = append(slice, line[i])
		}
		if i == len(line)-1 {
			return slice, nil
		}
		travelled += angularDistance(line[i], line[i+1])
	}

	if travelled < start {
		return nil, fmt.Errorf("%w: start position is beyond line", ErrInvalidSlice)
	}
	return slice, nil
}

// FromLineString converts an orb line string, which stores [lon, lat]
// pairs, into a Polyline.
func FromLineString(ls orb.LineString) Polyline {
	out := make(Polyline, len(ls))
	for i, p := range ls {
		out[i] = Coordinate{Longitude: p.Lon(), Latitude: p.Lat()}
	}
	return out
}

// LineString converts the polyline into an orb line string.
func (l Polyline) LineString() orb.LineString {
	out := make(orb.LineString, len(l))
	for i, c := range l {
		out[i] = orb.Point{c.Longitude, c.Latitude}
	}
	return out
}
