package geo

import (
	"fmt"
	"math"
)

// Distance returns the great-circle distance between two coordinates using
// the haversine formula, expressed in the given unit.
func Distance(from, to Coordinate, unit Unit) (float64, error) {
	return RadiansToDistance(angularDistance(from, to), unit)
}

// Bearing returns the initial bearing from one coordinate to another in
// degrees, in the range (-180, 180], 0 being north.
func Bearing(from, to Coordinate) float64 {
	lon1 := DegreesToRadians(from.Longitude)
	lon2 := DegreesToRadians(to.Longitude)
	lat1 := DegreesToRadians(from.Latitude)
	lat2 := DegreesToRadians(to.Latitude)

	a := math.Sin(lon2-lon1) * math.Cos(lat2)
	b := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)

	deg := RadiansToDegrees(math.Atan2(a, b))
	if deg == -180 {
		// due south with a negative-zero longitude delta
		return 180
	}
	return deg
}

// Destination returns the coordinate reached by travelling distance along
// bearing (degrees) from origin on a sphere.
func Destination(origin Coordinate, distance, bearing float64, unit Unit) (Coordinate, error) {
	radians, err := DistanceToRadians(distance, unit)
	if err != nil {
		return Coordinate{}, err
	}
	return destination(origin, radians, bearing), nil
}

// Midpoint returns the point halfway along the great circle between two coordinates.
func Midpoint(from, to Coordinate) Coordinate {
	return destination(from, angularDistance(from, to)/2, Bearing(from, to))
}

// Length sums the haversine distance of every segment of the line.
func Length(line Polyline, unit Unit) (float64, error) {
	factor, err := unit.Factor()
	if err != nil {
		return 0, err
	}
	var total float64
	for i := 1; i < len(line); i++ {
		total += angularDistance(line[i-1], line[i])
	}
	return total * factor, nil
}

// Along returns the point at the given distance from the start of the line.
// Distances past the end yield the last vertex.
func Along(line Polyline, distance float64, unit Unit) (Coordinate, error) {
	if len(line) == 0 {
		return Coordinate{}, ErrEmptyLine
	}
	if distance < 0 {
		return Coordinate{}, fmt.Errorf("%w: %f must be >= 0", ErrInvalidDistance, distance)
	}
	target, err := DistanceToRadians(distance, unit)
	if err != nil {
		return Coordinate{}, err
	}

	var travelled float64
	for i := range line {
		if target >= travelled && i == len(line)-1 {
			break
		}
		if travelled >= target {
			overshot := target - travelled
			if overshot == 0 {
				return line[i], nil
			}
			direction := Bearing(line[i], line[i-1]) - 180
			return destination(line[i], overshot, direction), nil
		}
		travelled += angularDistance(line[i], line[i+1])
	}
	return line.Last(), nil
}

// angularDistance is the haversine central angle between two coordinates.
func angularDistance(from, to Coordinate) float64 {
	dLat := DegreesToRadians(to.Latitude - from.Latitude)
	dLon := DegreesToRadians(to.Longitude - from.Longitude)
	lat1 := DegreesToRadians(from.Latitude)
	lat2 := DegreesToRadians(to.Latitude)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Pow(math.Sin(dLon/2), 2)*math.Cos(lat1)*math.Cos(lat2)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// destination moves from origin by an angular distance along bearing (degrees).
func destination(origin Coordinate, radians, bearing float64) Coordinate {
	lon1 := DegreesToRadians(origin.Longitude)
	lat1 := DegreesToRadians(origin.Latitude)
	brg := DegreesToRadians(bearing)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(radians) +
		math.Cos(lat1)*math.Sin(radians)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(radians)*math.Cos(lat1),
		math.Cos(radians)-math.Sin(lat1)*math.Sin(lat2))

	return Coordinate{
		Longitude: RadiansToDegrees(lon2),
		Latitude:  RadiansToDegrees(lat2),
	}
}
