package navigation

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/breatheroute/routeprogress/pkg/geo"
)

const tracerName = "github.com/breatheroute/routeprogress/pkg/navigation"

// Alert thresholds on the time left before the next maneuver.
const (
	mediumAlertSeconds = 70
	highAlertSeconds   = 15
)

// DefaultArrivalRadiusMeters is how close to the end of a leg a fix must be
// to count as reaching its waypoint.
const DefaultArrivalRadiusMeters = 10

// SessionConfig holds configuration for a navigation session.
type SessionConfig struct {
	// Route to navigate. Required.
	Route *Route

	// Matcher relates fixes to steps (default: a Matcher with default config).
	Matcher *Matcher

	// Logger for session events.
	Logger zerolog.Logger

	// Metrics is optional; nil records nothing.
	Metrics *Metrics

	// Tracer for per-fix spans (default: the global tracer).
	Tracer trace.Tracer

	// ArrivalRadiusMeters is the distance from a leg's end at which the leg
	// is complete (default: 10).
	ArrivalRadiusMeters float64

	// ID identifies the session in logs and metrics (default: random).
	ID string
}

// Session owns the progress of one traveller along one route and updates
// it fix by fix. A Session must not be used from more than one goroutine;
// use Run to drive it from a channel.
type Session struct {
	id            string
	matcher       *Matcher
	progress      *RouteProgress
	logger        zerolog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
	arrivalRadius float64

	fixes   int
	arrived bool
}

// NewSession creates a session positioned at the start of the route.
func NewSession(cfg SessionConfig) (*Session, error) {
	progress, err := NewRouteProgress(cfg.Route)
	if err != nil {
		return nil, err
	}

	matcher := cfg.Matcher
	if matcher == nil {
		matcher, err = NewMatcher(MatcherConfig{})
		if err != nil {
			return nil, err
		}
	}
	if err := progress.SetOffRouteThresholdKm(matcher.Threshold()); err != nil {
		return nil, err
	}

	arrivalRadius := cfg.ArrivalRadiusMeters
	if arrivalRadius == 0 {
		arrivalRadius = DefaultArrivalRadiusMeters
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	id := cfg.ID
	if id == "" {
		id = "nav_" + uuid.New().String()[:22]
	}

	return &Session{
		id:            id,
		matcher:       matcher,
		progress:      progress,
		logger:        cfg.Logger.With().Str("session_id", id).Logger(),
		metrics:       cfg.Metrics,
		tracer:        tracer,
		arrivalRadius: arrivalRadius,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current progress.
func (s *Session) Snapshot() Snapshot {
	snap := s.progress.Snapshot()
	snap.SessionID = s.id
	snap.Arrived = s.arrived
	return snap
}

// Update processes one position fix. Off-route fixes are reported without
// changing progress. Steps only ever move forward.
func (s *Session) Update(ctx context.Context, fix geo.Coordinate) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "navigation.Session.Update",
		trace.WithAttributes(
			attribute.String("session.id", s.id),
			attribute.Float64("fix.longitude", fix.Longitude),
			attribute.Float64("fix.latitude", fix.Latitude),
		),
	)
	defer span.End()

	snap, err := s.update(ctx, fix)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Msg("failed to process fix")
		return snap, err
	}

	span.SetAttributes(
		attribute.Int("navigation.leg_index", snap.LegIndex),
		attribute.Int("navigation.step_index", snap.StepIndex),
		attribute.Bool("navigation.off_route", snap.OffRoute),
	)
	return snap, nil
}

func (s *Session) update(ctx context.Context, fix geo.Coordinate) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return s.Snapshot(), err
	}
	if !fix.Valid() {
		return s.Snapshot(), fmt.Errorf("%w: %s", geo.ErrInvalidCoordinate, fix)
	}
	if s.arrived {
		return s.Snapshot(), nil
	}

	p := s.progress
	leg := p.CurrentLeg()

	offRoute, err := s.matcher.IsOffRoute(fix, leg, p.OffRouteThresholdKm())
	if err != nil {
		return s.Snapshot(), err
	}
	if offRoute {
		s.fixes++
		s.metrics.recordFix(ctx, s.id, true)
		s.logger.Warn().
			Float64("lon", fix.Longitude).
			Float64("lat", fix.Latitude).
			Int("leg", p.LegIndex()).
			Int("step", p.StepIndex()).
			Float64("threshold_km", p.OffRouteThresholdKm()).
			Msg("position is off route")

		snap := s.Snapshot()
		snap.OffRoute = true
		snap.Snapped = fix
		return snap, nil
	}

	startLeg, startStep := p.LegIndex(), p.StepIndex()

	closest, err := s.matcher.ClosestStep(fix, leg)
	if err != nil {
		return s.Snapshot(), err
	}
	if closest > p.StepIndex() {
		if err := p.SetStepIndex(closest); err != nil {
			return s.Snapshot(), err
		}
	}

	snapped, err := s.measure(fix)
	if err != nil {
		return s.Snapshot(), err
	}

	if s.remainingOnLeg() <= s.arrivalRadius {
		if err := s.completeLeg(); err != nil {
			return s.Snapshot(), err
		}
	}

	advanced := s.stepsBetween(startLeg, startStep)
	p.SetAlertLevel(s.alertLevel(advanced))
	s.fixes++

	s.metrics.recordFix(ctx, s.id, false)
	s.metrics.recordAdvance(ctx, s.id, advanced)
	s.metrics.recordFraction(ctx, s.id, p.FractionTraveled())

	if advanced > 0 {
		s.logger.Info().
			Int("leg", p.LegIndex()).
			Int("step", p.StepIndex()).
			Str("maneuver", p.CurrentStep().Maneuver.Type).
			Str("name", p.CurrentStep().Name).
			Msg("advanced to step")
	}
	if s.arrived {
		s.logger.Info().Float64("distance_traveled_m", p.DistanceTraveled()).Msg("arrived at destination")
	}
	s.logger.Debug().
		Int("leg", p.LegIndex()).
		Int("step", p.StepIndex()).
		Float64("remaining_on_step_m", p.DistanceRemainingOnStep()).
		Float64("fraction", p.FractionTraveled()).
		Stringer("alert", p.AlertLevel()).
		Msg("fix processed")

	snap := s.Snapshot()
	snap.Snapped = snapped
	return snap, nil
}

// measure updates the step and route distances for a fix on the current step.
func (s *Session) measure(fix geo.Coordinate) (geo.Coordinate, error) {
	p := s.progress
	leg := p.CurrentLeg()
	idx := p.StepIndex()

	remaining, err := s.matcher.DistanceToEndOfStep(fix, leg, idx, geo.Meters)
	if err != nil {
		return geo.Coordinate{}, err
	}
	snapped, err := s.matcher.SnapToRoute(fix, leg, idx)
	if err != nil {
		return geo.Coordinate{}, err
	}

	step := p.CurrentStep()
	duration := 0.0
	if step.Distance > 0 {
		duration = step.Duration * math.Min(1, remaining/step.Distance)
	}

	if err := p.SetDistanceRemainingOnStep(remaining); err != nil {
		return geo.Coordinate{}, err
	}
	if err := p.SetDurationRemainingOnStep(duration); err != nil {
		return geo.Coordinate{}, err
	}
	if err := p.SetUserSnapDistanceFromManeuver(remaining); err != nil {
		return geo.Coordinate{}, err
	}
	if err := p.SetDistanceTraveled(s.completedDistance() + p.DistanceTraveledOnStep()); err != nil {
		return geo.Coordinate{}, err
	}
	return snapped, nil
}

// completedDistance sums the legs and steps finished before the current step.
func (s *Session) completedDistance() float64 {
	p := s.progress
	var total float64
	for i := 0; i < p.LegIndex(); i++ {
		total += p.Route().Legs[i].Distance
	}
	leg := p.CurrentLeg()
	for i := 0; i < p.StepIndex(); i++ {
		total += leg.Steps[i].Distance
	}
	return total
}

// remainingOnLeg is the distance left on the current step plus every later
// step of the leg, in meters.
func (s *Session) remainingOnLeg() float64 {
	p := s.progress
	remaining := p.DistanceRemainingOnStep()
	steps := p.CurrentLeg().Steps
	for i := p.StepIndex() + 1; i < len(steps); i++ {
		remaining += steps[i].Distance
	}
	return remaining
}

// completeLeg moves to the last step of the current leg, then either arrives
// or crosses the waypoint into the next leg.
func (s *Session) completeLeg() error {
	p := s.progress
	if last := len(p.CurrentLeg().Steps) - 1; p.StepIndex() < last {
		if err := p.SetStepIndex(last); err != nil {
			return err
		}
	}

	if !p.IsFinalStep() {
		p.AdvanceToNextStep()
		return p.SetDistanceTraveled(s.completedDistance())
	}

	s.arrived = true
	if err := p.SetDistanceRemainingOnStep(0); err != nil {
		return err
	}
	if err := p.SetDurationRemainingOnStep(0); err != nil {
		return err
	}
	return p.SetDistanceTraveled(p.Route().Distance)
}

// stepsBetween counts the steps moved since (leg, step).
func (s *Session) stepsBetween(leg, step int) int {
	p := s.progress
	if p.LegIndex() == leg {
		return p.StepIndex() - step
	}
	n := len(p.Route().Legs[leg].Steps) - step
	for i := leg + 1; i < p.LegIndex(); i++ {
		n += len(p.Route().Legs[i].Steps)
	}
	return n + p.StepIndex()
}

func (s *Session) alertLevel(advanced int) AlertLevel {
	p := s.progress
	switch {
	case s.arrived:
		return AlertArrive
	case s.fixes == 0 && p.LegIndex() == 0 && p.StepIndex() == 0:
		return AlertDepart
	case p.DurationRemainingOnStep() <= highAlertSeconds:
		return AlertHigh
	case p.DurationRemainingOnStep() <= mediumAlertSeconds:
		return AlertMedium
	case advanced > 0:
		return AlertLow
	}
	return AlertNone
}

// Result is the outcome of one fix processed by Run.
type Result struct {
	Snapshot Snapshot
	Err      error
}

// Run processes fixes in order on a single goroutine until fixes is closed
// or ctx is done. The returned channel is closed when Run stops.
func (s *Session) Run(ctx context.Context, fixes <-chan geo.Coordinate) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case fix, ok := <-fixes:
				if !ok {
					return
				}
				snap, err := s.Update(ctx, fix)
				select {
				case out <- Result{Snapshot: snap, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
