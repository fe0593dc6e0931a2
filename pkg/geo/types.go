// Package geo provides spherical measurement, line projection and polygon
// containment for longitude/latitude coordinates.
//
// Every function in this package is pure and safe for concurrent use.
package geo

import (
	"errors"
	"fmt"
)

// Sentinel errors for geometry operations.
var (
	// ErrInvalidUnit indicates a distance unit that is not in the factor table.
	ErrInvalidUnit = errors.New("invalid distance unit")
	// ErrInvalidDistance indicates a negative distance passed to a conversion.
	ErrInvalidDistance = errors.New("invalid distance")
	// ErrInvalidCoordinate indicates a longitude or latitude out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrEmptyLine indicates a polyline with no vertices.
	ErrEmptyLine = errors.New("line has no coordinates")
	// ErrDegenerateLine indicates a polyline with fewer than two vertices.
	ErrDegenerateLine = errors.New("line must contain at least 2 coordinates")
	// ErrNotALineString indicates a geometry of the wrong kind was passed to slicing.
	ErrNotALineString = errors.New("geometry must be a LineString")
	// ErrNotAPolygon indicates a geometry of the wrong kind was passed to containment.
	ErrNotAPolygon = errors.New("geometry must be a Polygon or MultiPolygon")
	// ErrOpenRing indicates a ring whose first and last coordinates differ.
	ErrOpenRing = errors.New("ring is not closed")
	// ErrInvalidSlice indicates slice bounds that cannot produce a line.
	ErrInvalidSlice = errors.New("invalid slice bounds")
)

// Coordinate is a geographic position in decimal degrees.
// Altitude is optional and only present when set through WithAltitude.
type Coordinate struct {
	Longitude float64
	Latitude  float64

	alt    float64
	hasAlt bool
}

// NewCoordinate returns a validated coordinate.
func NewCoordinate(longitude, latitude float64) (Coordinate, error) {
	c := Coordinate{Longitude: longitude, Latitude: latitude}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: lon=%f lat=%f", ErrInvalidCoordinate, longitude, latitude)
	}
	return c, nil
}

// WithAltitude returns a copy of c carrying the given altitude.
func (c Coordinate) WithAltitude(altitude float64) Coordinate {
	c.alt = altitude
	c.hasAlt = true
	return c
}

// Altitude returns the altitude and whether one was supplied.
func (c Coordinate) Altitude() (float64, bool) {
	return c.alt, c.hasAlt
}

// Valid reports whether longitude is within [-180, 180] and latitude within [-90, 90].
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// SamePosition reports whether two coordinates share longitude and latitude,
// ignoring altitude.
func (c Coordinate) SamePosition(o Coordinate) bool {
	return c.Longitude == o.Longitude && c.Latitude == o.Latitude
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%f, %f)", c.Longitude, c.Latitude)
}

// Polyline is an ordered path of coordinates. It is never implicitly closed.
type Polyline []Coordinate

// First returns the first vertex. The line must not be empty.
func (l Polyline) First() Coordinate { return l[0] }

// Last returns the last vertex. The line must not be empty.
func (l Polyline) Last() Coordinate { return l[len(l)-1] }

// Ring is a closed polyline: the first and last coordinates are equal.
type Ring []Coordinate

// NewRing validates closure and returns the coordinates as a Ring.
func NewRing(coords []Coordinate) (Ring, error) {
	r := Ring(coords)
	if !r.Closed() {
		return nil, ErrOpenRing
	}
	return r, nil
}

// Closed reports whether the ring has at least four vertices and ends where it starts.
func (r Ring) Closed() bool {
	return len(r) >= 4 && r[0].SamePosition(r[len(r)-1])
}

// Polygon is an outer ring with zero or more holes.
// Holes are assumed to be nested in the outer ring and not to overlap.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Validate checks that every ring of the polygon is closed.
func (p Polygon) Validate() error {
	if !p.Outer.Closed() {
		return fmt.Errorf("outer ring: %w", ErrOpenRing)
	}
	for i, hole := range p.Holes {
		if !hole.Closed() {
			return fmt.Errorf("hole %d: %w", i, ErrOpenRing)
		}
	}
	return nil
}

// MultiPolygon is a set of polygons treated as one area.
type MultiPolygon []Polygon

// ProjectedPoint is the result of projecting a query point onto a polyline.
type ProjectedPoint struct {
	// Point is the closest position on the line.
	Point Coordinate
	// SegmentIndex is i for the segment [i, i+1] the point falls on.
	SegmentIndex int
	// Distance from the query point to Point, in kilometers.
	Distance float64
}

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether the coordinate lies inside or on the box.
func (b BBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// BBox computes the bounding box of the line. An empty line yields a zero box.
func (l Polyline) BBox() BBox {
	if len(l) == 0 {
		return BBox{}
	}
	box := BBox{MinLon: l[0].Longitude, MinLat: l[0].Latitude, MaxLon: l[0].Longitude, MaxLat: l[0].Latitude}
	for _, c := range l[1:] {
		if c.Longitude < box.MinLon {
			box.MinLon = c.Longitude
		}
		if c.Longitude > box.MaxLon {
			box.MaxLon = c.Longitude
		}
		if c.Latitude < box.MinLat {
			box.MinLat = c.Latitude
		}
		if c.Latitude > box.MaxLat {
			box.MaxLat = c.Latitude
		}
	}
	return box
}
