package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// InRing reports whether pt lies inside ring using even-odd ray casting.
// Points exactly on an edge may fall either way.
func InRing(pt Coordinate, ring Ring) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Longitude, ring[i].Latitude
		xj, yj := ring[j].Longitude, ring[j].Latitude

		if (yi > pt.Latitude) != (yj > pt.Latitude) &&
			pt.Longitude < (xj-xi)*(pt.Latitude-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Inside reports whether pt lies in the polygon's outer ring and in none of its holes.
func Inside(pt Coordinate, polygon Polygon) bool {
	if !InRing(pt, polygon.Outer) {
		return false
	}
	for _, hole := range polygon.Holes {
		if InRing(pt, hole) {
			return false
		}
	}
	return true
}

// InsideAny reports whether pt lies inside at least one polygon.
func InsideAny(pt Coordinate, polygons MultiPolygon) bool {
	for _, p := range polygons {
		if Inside(pt, p) {
			return true
		}
	}
	return false
}

// InsideGeometry runs the containment test against an orb polygon or
// multipolygon. Every ring must be closed.
func InsideGeometry(pt Coordinate, g orb.Geometry) (bool, error) {
	switch v := g.(type) {
	case orb.Polygon:
		polygon := FromPolygon(v)
		if err := polygon.Validate(); err != nil {
			return false, err
		}
		return Inside(pt, polygon), nil
	case orb.MultiPolygon:
		mp := make(MultiPolygon, len(v))
		for i, p := range v {
			mp[i] = FromPolygon(p)
			if err := mp[i].Validate(); err != nil {
				return false, fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		return InsideAny(pt, mp), nil
	case nil:
		return false, fmt.Errorf("%w: got nil geometry", ErrNotAPolygon)
	default:
		return false, fmt.Errorf("%w: got %s", ErrNotAPolygon, g.GeoJSONType())
	}
}

// PointsWithin returns the points that fall inside the polygons. A point
// inside several polygons is returned once per polygon, grouped by polygon.
func PointsWithin(points []Coordinate, polygons []Polygon) []Coordinate {
	var out []Coordinate
	for _, polygon := range polygons {
		for _, pt := range points {
			if Inside(pt, polygon) {
				out = append(out, pt)
			}
		}
	}
	return out
}

// FromPolygon converts an orb polygon. The first ring is the outer ring.
func FromPolygon(p orb.Polygon) Polygon {
	var out Polygon
	for i, r := range p {
		ring := make(Ring, len(r))
		for k, pt := range r {
			ring[k] = Coordinate{Longitude: pt.Lon(), Latitude: pt.Lat()}
		}
		if i == 0 {
			out.Outer = ring
			continue
		}
		out.Holes = append(out.Holes, ring)
	}
	return out
}
