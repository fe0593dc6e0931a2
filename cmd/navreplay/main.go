// Package main provides navreplay, which replays recorded position fixes
// against a directions route and logs the navigation progress.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/breatheroute/routeprogress/internal/config"
	"github.com/breatheroute/routeprogress/internal/telemetry"
	"github.com/breatheroute/routeprogress/pkg/geo"
	"github.com/breatheroute/routeprogress/pkg/navigation"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "navreplay"

var errNoFixes = errors.New("replay file has no fixes")

// replayFile is the input format: a directions route plus fixes as
// [longitude, latitude] pairs in travel order.
type replayFile struct {
	Route navigation.Route `json:"route"`
	Fixes [][2]float64     `json:"fixes"`
}

func main() {
	routePath := flag.String("file", "", "Path to a JSON replay file with a route and fixes")
	interval := flag.Duration("interval", 0, "Delay between fixes")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if *routePath == "" {
		fmt.Fprintln(os.Stderr, "usage: navreplay -file replay.json [-interval 1s]")
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("file", *routePath).
		Msg("starting navreplay")

	if err := run(cfg, *routePath, *interval, log); err != nil {
		log.Error().Err(err).Msg("replay failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, path string, interval time.Duration, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	route, fixes, err := loadReplay(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	reader := sdkmetric.NewManualReader()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		MetricReader:   reader,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	matcher, err := navigation.NewMatcher(cfg.MatcherConfig())
	if err != nil {
		return err
	}
	metrics, err := navigation.NewMetrics(tp.Meters())
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}
	session, err := navigation.NewSession(navigation.SessionConfig{
		Route:               route,
		Matcher:             matcher,
		Logger:              log,
		Metrics:             metrics,
		Tracer:              tp.Tracers().Tracer(serviceName),
		ArrivalRadiusMeters: cfg.ArrivalRadiusMeters,
	})
	if err != nil {
		return err
	}

	last, err := replay(ctx, session, fixes, interval, cfg.DistanceUnit, log)
	if err != nil {
		return err
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}
	log.Info().
		Str("session_id", session.ID()).
		Bool("arrived", last.Arrived).
		Float64("fraction", last.FractionTraveled).
		Int64("fixes", sumCounter(rm, "navigation.fixes.total")).
		Int64("off_route", sumCounter(rm, "navigation.off_route.total")).
		Msg("replay finished")
	return nil
}

// loadReplay decodes a replay file and validates every fix.
func loadReplay(r io.Reader) (*navigation.Route, []geo.Coordinate, error) {
	var file replayFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, err
	}
	if len(file.Fixes) == 0 {
		return nil, nil, errNoFixes
	}

	fixes := make([]geo.Coordinate, len(file.Fixes))
	for i, pair := range file.Fixes {
		c, err := geo.NewCoordinate(pair[0], pair[1])
		if err != nil {
			return nil, nil, fmt.Errorf("fix %d: %w", i, err)
		}
		fixes[i] = c
	}
	if _, err := navigation.NewRouteProgress(&file.Route); err != nil {
		return nil, nil, err
	}
	return &file.Route, fixes, nil
}

// replay feeds fixes to the session and logs each result, returning the
// last snapshot.
func replay(
	ctx context.Context,
	session *navigation.Session,
	fixes []geo.Coordinate,
	interval time.Duration,
	unit geo.Unit,
	log zerolog.Logger,
) (navigation.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan geo.Coordinate)
	go func() {
		defer close(in)
		for i, fix := range fixes {
			if i > 0 && interval > 0 {
				select {
				case <-time.After(interval):
				case <-ctx.Done():
					return
				}
			}
			select {
			case in <- fix:
			case <-ctx.Done():
				return
			}
		}
	}()

	last := session.Snapshot()
	for res := range session.Run(ctx, in) {
		if res.Err != nil {
			return last, res.Err
		}
		last = res.Snapshot

		remaining, err := geo.ConvertDistance(last.DistanceRemainingOnRoute, geo.Meters, unit)
		if err != nil {
			return last, err
		}
		log.Info().
			Int("leg", last.LegIndex).
			Int("step", last.StepIndex).
			Bool("off_route", last.OffRoute).
			Stringer("alert", last.AlertLevel).
			Float64("remaining", remaining).
			Str("unit", string(unit)).
			Stringer("snapped", last.Snapped).
			Msg("progress")
	}
	return last, ctx.Err()
}

func sumCounter(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
