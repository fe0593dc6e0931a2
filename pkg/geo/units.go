package geo

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a distance unit understood by the conversion table.
type Unit string

// Supported units. Radians is the pivot every conversion passes through.
const (
	Miles         Unit = "miles"
	NauticalMiles Unit = "nauticalmiles"
	Kilometers    Unit = "kilometers"
	Meters        Unit = "meters"
	Centimeters   Unit = "centimeters"
	Feet          Unit = "feet"
	Yards         Unit = "yards"
	Inches        Unit = "inches"
	Degrees       Unit = "degrees"
	Radians       Unit = "radians"

	Kilometres  Unit = "kilometres"
	Metres      Unit = "metres"
	Centimetres Unit = "centimetres"
)

// DefaultUnit is used wherever a caller does not name a unit.
const DefaultUnit = Kilometers

// Factor returns how many of the unit fit in one radian of arc on the
// Earth's surface.
func (u Unit) Factor() (float64, error) {
	switch u {
	case Miles:
		return 3960, nil
	case NauticalMiles:
		return 3441.145, nil
	case Degrees:
		return 57.2957795, nil
	case Radians:
		return 1, nil
	case Inches:
		return 250905600, nil
	case Yards:
		return 6969600, nil
	case Meters, Metres:
		return 6373000, nil
	case Centimeters, Centimetres:
		return 6.373e+8, nil
	case Kilometers, Kilometres:
		return 6373, nil
	case Feet:
		return 20908792.65, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, string(u))
}

// ParseUnit converts a unit name, case-insensitively, into a Unit.
// An empty name yields DefaultUnit.
func ParseUnit(name string) (Unit, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultUnit, nil
	}
	u := Unit(name)
	if _, err := u.Factor(); err != nil {
		return "", err
	}
	return u, nil
}

// RadiansToDistance converts an angular distance to a length in the unit.
// Negative input is allowed and denotes a signed angle.
func RadiansToDistance(radians float64, unit Unit) (float64, error) {
	factor, err := unit.Factor()
	if err != nil {
		return 0, err
	}
	return radians * factor, nil
}

// DistanceToRadians converts a length in the unit to an angular distance.
func DistanceToRadians(distance float64, unit Unit) (float64, error) {
	factor, err := unit.Factor()
	if err != nil {
		return 0, err
	}
	return distance / factor, nil
}

// ConvertDistance converts a non-negative distance between two units.
func ConvertDistance(distance float64, from, to Unit) (float64, error) {
	if distance < 0 || math.IsNaN(distance) {
		return 0, fmt.Errorf("%w: %f must be >= 0", ErrInvalidDistance, distance)
	}
	radians, err := DistanceToRadians(distance, from)
	if err != nil {
		return 0, err
	}
	return RadiansToDistance(radians, to)
}

// LengthToDegrees converts a length into degrees of arc.
func LengthToDegrees(distance float64, unit Unit) (float64, error) {
	radians, err := DistanceToRadians(distance, unit)
	if err != nil {
		return 0, err
	}
	return RadiansToDegrees(radians), nil
}

// DegreesToRadians converts an angle, wrapping it into (-360, 360) first.
func DegreesToRadians(degrees float64) float64 {
	return math.Mod(degrees, 360) * math.Pi / 180
}

// RadiansToDegrees converts an angle, wrapping it into (-2π, 2π) first.
func RadiansToDegrees(radians float64) float64 {
	return math.Mod(radians, 2*math.Pi) * 180 / math.Pi
}
