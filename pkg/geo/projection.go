package geo

import (
	"fmt"
	"math"
)

// PointOnLine returns the point on line closest to pt, the index of the
// segment it lies on and its distance from pt in kilometers.
//
// Each segment is tested at its two vertices and at the intersection with a
// perpendicular dropped from pt. Candidates are evaluated in that order and
// only a strictly closer candidate replaces the current best, so ties resolve
// to the earliest segment and, within a segment, to its start vertex.
func PointOnLine(pt Coordinate, line Polyline) (ProjectedPoint, error) {
	if len(line) < 2 {
		return ProjectedPoint{}, fmt.Errorf("%w: got %d", ErrDegenerateLine, len(line))
	}

	best := ProjectedPoint{Point: line[0]}
	bestDist := math.Inf(1)

	for i := 0; i < len(line)-1; i++ {
		start, stop := line[i], line[i+1]

		startDist := angularDistance(pt, start)
		stopDist := angularDistance(pt, stop)

		height := math.Max(startDist, stopDist)
		direction := Bearing(start, stop)
		perp1 := destination(pt, height, direction+90)
		perp2 := destination(pt, height, direction-90)

		if startDist < bestDist {
			best = ProjectedPoint{Point: start, SegmentIndex: i}
			bestDist = startDist
		}
		if stopDist < bestDist {
			best = ProjectedPoint{Point: stop, SegmentIndex: i}
			bestDist = stopDist
		}
		if hit, ok := lineIntersects(perp1, perp2, start, stop); ok {
			if d := angularDistance(pt, hit); d < bestDist {
				best = ProjectedPoint{Point: hit, SegmentIndex: i}
				bestDist = d
			}
		}
	}

	km, _ := RadiansToDistance(bestDist, Kilometers)
	best.Distance = km
	return best, nil
}

// lineIntersects returns the planar intersection of two segments, treating
// longitude as x and latitude as y. Intersections at either segment's end
// points are not reported, nor are parallel segments.
func lineIntersects(aStart, aEnd, bStart, bEnd Coordinate) (Coordinate, bool) {
	denominator := (bEnd.Latitude-bStart.Latitude)*(aEnd.Longitude-aStart.Longitude) -
		(bEnd.Longitude-bStart.Longitude)*(aEnd.Latitude-aStart.Latitude)
	if denominator == 0 {
		return Coordinate{}, false
	}

	dy := aStart.Latitude - bStart.Latitude
	dx := aStart.Longitude - bStart.Longitude
	num1 := (bEnd.Longitude-bStart.Longitude)*dy - (bEnd.Latitude-bStart.Latitude)*dx
	num2 := (aEnd.Longitude-aStart.Longitude)*dy - (aEnd.Latitude-aStart.Latitude)*dx

	ua := num1 / denominator
	ub := num2 / denominator
	if ua <= 0 || ua >= 1 || ub <= 0 || ub >= 1 {
		return Coordinate{}, false
	}

	return Coordinate{
		Longitude: aStart.Longitude + ua*(aEnd.Longitude-aStart.Longitude),
		Latitude:  aStart.Latitude + ua*(aEnd.Latitude-aStart.Latitude),
	}, true
}
