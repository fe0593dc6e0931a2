package navigation

import (
	"fmt"
	"math"

	"github.com/breatheroute/routeprogress/pkg/geo"
)

// AlertLevel tells the traveller how urgently the next maneuver approaches.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertDepart
	AlertLow
	AlertMedium
	AlertHigh
	AlertArrive
)

func (a AlertLevel) String() string {
	switch a {
	case AlertNone:
		return "none"
	case AlertDepart:
		return "depart"
	case AlertLow:
		return "low"
	case AlertMedium:
		return "medium"
	case AlertHigh:
		return "high"
	case AlertArrive:
		return "arrive"
	}
	return fmt.Sprintf("AlertLevel(%d)", int(a))
}

// RouteProgress is the navigation state for one route. It has a single
// owner and is not safe for concurrent use; share it through Snapshot.
type RouteProgress struct {
	route *Route

	legIndex  int
	stepIndex int

	distanceTraveled        float64 // meters
	distanceRemainingOnStep float64 // meters
	durationRemainingOnStep float64 // seconds
	offRouteThresholdKm     float64

	alertLevel                   AlertLevel
	userSnapDistanceFromManeuver float64 // meters
}

// NewRouteProgress starts tracking at the first step of the first leg.
func NewRouteProgress(route *Route) (*RouteProgress, error) {
	if route == nil || len(route.Legs) == 0 {
		return nil, ErrEmptyRoute
	}
	for i := range route.Legs {
		if len(route.Legs[i].Steps) == 0 {
			return nil, fmt.Errorf("leg %d: %w", i, ErrEmptyRoute)
		}
	}

	p := &RouteProgress{
		route:               route,
		offRouteThresholdKm: DefaultOffRouteThresholdKm,
	}
	p.resetStepRemaining()
	return p, nil
}

// Route returns the route being tracked.
func (p *RouteProgress) Route() *Route { return p.route }

// LegIndex returns the current leg index.
func (p *RouteProgress) LegIndex() int { return p.legIndex }

// StepIndex returns the current step index within the current leg.
func (p *RouteProgress) StepIndex() int { return p.stepIndex }

// CurrentLeg returns the leg being travelled.
func (p *RouteProgress) CurrentLeg() *RouteLeg {
	return &p.route.Legs[p.legIndex]
}

// CurrentStep returns the step being travelled.
func (p *RouteProgress) CurrentStep() *RouteStep {
	return &p.CurrentLeg().Steps[p.stepIndex]
}

// UpcomingStep returns the step after the current one, crossing into the
// next leg when needed. On the final step of the route it returns the final step.
func (p *RouteProgress) UpcomingStep() *RouteStep {
	leg := p.CurrentLeg()
	if p.stepIndex+1 < len(leg.Steps) {
		return &leg.Steps[p.stepIndex+1]
	}
	if p.legIndex+1 < len(p.route.Legs) {
		return &p.route.Legs[p.legIndex+1].Steps[0]
	}
	return p.CurrentStep()
}

// IsFinalStep reports whether the current step is the last step of the last leg.
func (p *RouteProgress) IsFinalStep() bool {
	return p.legIndex == len(p.route.Legs)-1 && p.stepIndex == len(p.CurrentLeg().Steps)-1
}

// AdvanceToNextStep moves to the next step, or to the first step of the
// next leg. On the final step of the route it does nothing and returns false.
func (p *RouteProgress) AdvanceToNextStep() bool {
	switch {
	case p.stepIndex+1 < len(p.CurrentLeg().Steps):
		p.stepIndex++
	case p.legIndex+1 < len(p.route.Legs):
		p.legIndex++
		p.stepIndex = 0
	default:
		return false
	}
	p.resetStepRemaining()
	return true
}

func (p *RouteProgress) resetStepRemaining() {
	step := p.CurrentStep()
	p.distanceRemainingOnStep = step.Distance
	p.durationRemainingOnStep = step.Duration
	p.userSnapDistanceFromManeuver = step.Distance
}

// DistanceTraveled returns the meters travelled along the whole route.
func (p *RouteProgress) DistanceTraveled() float64 { return p.distanceTraveled }

// FractionTraveled returns how far along the route the traveller is, from 0
// to 1. A route of zero length reports 0.
func (p *RouteProgress) FractionTraveled() float64 {
	if p.route.Distance == 0 {
		return 0
	}
	return p.distanceTraveled / p.route.Distance
}

// DistanceRemainingOnRoute returns the meters left to the destination,
// never less than zero.
func (p *RouteProgress) DistanceRemainingOnRoute() float64 {
	return math.Max(0, p.route.Distance-p.distanceTraveled)
}

// DistanceRemainingOnStep returns the meters left on the current step.
func (p *RouteProgress) DistanceRemainingOnStep() float64 { return p.distanceRemainingOnStep }

// DurationRemainingOnStep returns the seconds left on the current step.
func (p *RouteProgress) DurationRemainingOnStep() float64 { return p.durationRemainingOnStep }

// DistanceTraveledOnStep returns the meters covered on the current step.
func (p *RouteProgress) DistanceTraveledOnStep() float64 {
	return math.Max(0, p.CurrentStep().Distance-p.distanceRemainingOnStep)
}

// OffRouteThresholdKm returns the off-route threshold in kilometers.
func (p *RouteProgress) OffRouteThresholdKm() float64 { return p.offRouteThresholdKm }

// AlertLevel returns the most recently computed alert level.
func (p *RouteProgress) AlertLevel() AlertLevel { return p.alertLevel }

// UserSnapDistanceFromManeuver returns the meters between the snapped
// position and the next maneuver.
func (p *RouteProgress) UserSnapDistanceFromManeuver() float64 {
	return p.userSnapDistanceFromManeuver
}

// SetStepIndex moves to a step within the current leg.
func (p *RouteProgress) SetStepIndex(index int) error {
	if _, err := p.CurrentLeg().Step(index); err != nil {
		return err
	}
	p.stepIndex = index
	p.resetStepRemaining()
	return nil
}

// SetLegIndex moves to the first step of a leg.
func (p *RouteProgress) SetLegIndex(index int) error {
	if _, err := p.route.Leg(index); err != nil {
		return err
	}
	p.legIndex = index
	p.stepIndex = 0
	p.resetStepRemaining()
	return nil
}

// SetDistanceTraveled records the meters travelled along the whole route.
func (p *RouteProgress) SetDistanceTraveled(meters float64) error {
	if err := nonNegative("distance traveled", meters); err != nil {
		return err
	}
	p.distanceTraveled = meters
	return nil
}

// SetDistanceRemainingOnStep records the meters left on the current step.
func (p *RouteProgress) SetDistanceRemainingOnStep(meters float64) error {
	if err := nonNegative("distance remaining on step", meters); err != nil {
		return err
	}
	p.distanceRemainingOnStep = meters
	return nil
}

// SetDurationRemainingOnStep records the seconds left on the current step.
func (p *RouteProgress) SetDurationRemainingOnStep(seconds float64) error {
	if err := nonNegative("duration remaining on step", seconds); err != nil {
		return err
	}
	p.durationRemainingOnStep = seconds
	return nil
}

// SetOffRouteThresholdKm changes the off-route threshold.
func (p *RouteProgress) SetOffRouteThresholdKm(km float64) error {
	if err := nonNegative("off-route threshold", km); err != nil {
		return err
	}
	p.offRouteThresholdKm = km
	return nil
}

// SetAlertLevel records the alert level computed for the latest fix.
func (p *RouteProgress) SetAlertLevel(level AlertLevel) {
	p.alertLevel = level
}

// SetUserSnapDistanceFromManeuver records the meters between the snapped
// position and the next maneuver.
func (p *RouteProgress) SetUserSnapDistanceFromManeuver(meters float64) error {
	if err := nonNegative("snap distance from maneuver", meters); err != nil {
		return err
	}
	p.userSnapDistanceFromManeuver = meters
	return nil
}

func nonNegative(name string, v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("%w: %s %f", ErrInvalidProgress, name, v)
	}
	return nil
}

// Snapshot is an immutable copy of progress, safe to hand to other goroutines.
type Snapshot struct {
	SessionID string

	LegIndex  int
	StepIndex int

	DistanceTraveled         float64
	DistanceRemainingOnRoute float64
	DistanceRemainingOnStep  float64
	DurationRemainingOnStep  float64
	FractionTraveled         float64

	AlertLevel AlertLevel
	OffRoute   bool
	Arrived    bool

	// Snapped is the fix projected onto the current step. It is the raw fix
	// when the traveller is off-route.
	Snapped geo.Coordinate
}

// Snapshot copies the current progress.
func (p *RouteProgress) Snapshot() Snapshot {
	return Snapshot{
		LegIndex:                 p.legIndex,
		StepIndex:                p.stepIndex,
		DistanceTraveled:         p.distanceTraveled,
		DistanceRemainingOnRoute: p.DistanceRemainingOnRoute(),
		DistanceRemainingOnStep:  p.distanceRemainingOnStep,
		DurationRemainingOnStep:  p.durationRemainingOnStep,
		FractionTraveled:         p.FractionTraveled(),
		AlertLevel:               p.alertLevel,
	}
}
