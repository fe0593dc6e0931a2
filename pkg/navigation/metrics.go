package navigation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/breatheroute/routeprogress/pkg/navigation"

// Metrics holds the OpenTelemetry instruments recorded by sessions.
// A nil *Metrics records nothing.
type Metrics struct {
	fixesTotal       metric.Int64Counter
	offRouteTotal    metric.Int64Counter
	stepAdvances     metric.Int64Counter
	fractionTraveled metric.Float64Histogram
}

// NewMetrics creates the instruments on mp, or on the global meter
// provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	fixesTotal, err := meter.Int64Counter(
		"navigation.fixes.total",
		metric.WithDescription("Total number of position fixes processed"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return nil, err
	}

	offRouteTotal, err := meter.Int64Counter(
		"navigation.off_route.total",
		metric.WithDescription("Total number of fixes found off-route"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return nil, err
	}

	stepAdvances, err := meter.Int64Counter(
		"navigation.step.advances.total",
		metric.WithDescription("Total number of step transitions"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, err
	}

	fractionTraveled, err := meter.Float64Histogram(
		"navigation.fraction_traveled",
		metric.WithDescription("Fraction of the route travelled at each fix"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 0.75, 0.9, 1),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		fixesTotal:       fixesTotal,
		offRouteTotal:    offRouteTotal,
		stepAdvances:     stepAdvances,
		fractionTraveled: fractionTraveled,
	}, nil
}

func (m *Metrics) recordFix(ctx context.Context, sessionID string, offRoute bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Bool("off_route", offRoute),
	)
	m.fixesTotal.Add(ctx, 1, attrs)
	if offRoute {
		m.offRouteTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("session.id", sessionID)))
	}
}

func (m *Metrics) recordAdvance(ctx context.Context, sessionID string, steps int) {
	if m == nil || steps <= 0 {
		return
	}
	m.stepAdvances.Add(ctx, int64(steps), metric.WithAttributes(attribute.String("session.id", sessionID)))
}

func (m *Metrics) recordFraction(ctx context.Context, sessionID string, fraction float64) {
	if m == nil {
		return
	}
	m.fractionTraveled.Record(ctx, fraction, metric.WithAttributes(attribute.String("session.id", sessionID)))
}
