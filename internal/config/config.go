// Package config loads runtime settings for the navigation tools from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/breatheroute/routeprogress/pkg/geo"
	"github.com/breatheroute/routeprogress/pkg/navigation"
	"github.com/breatheroute/routeprogress/pkg/polyline"
)

// Environment variable names.
const (
	EnvOffRouteThresholdKm = "NAV_OFF_ROUTE_THRESHOLD_KM"
	EnvPolylinePrecision   = "NAV_POLYLINE_PRECISION"
	EnvArrivalRadiusMeters = "NAV_ARRIVAL_RADIUS_M"
	EnvDistanceUnit        = "NAV_DISTANCE_UNIT"
	EnvLogLevel            = "LOG_LEVEL"
	EnvEnvironment         = "APP_ENV"
	EnvOTelEnabled         = "OTEL_ENABLED"
	EnvOTLPEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// ErrInvalidConfig is returned when a setting is present but unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the navigation runtime settings.
type Config struct {
	Environment string
	LogLevel    zerolog.Level

	OffRouteThresholdKm float64
	Precision           polyline.Precision
	ArrivalRadiusMeters float64
	DistanceUnit        geo.Unit

	OTelEnabled  bool
	OTLPEndpoint string
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Environment:         "development",
		LogLevel:            zerolog.InfoLevel,
		OffRouteThresholdKm: navigation.DefaultOffRouteThresholdKm,
		Precision:           polyline.DefaultPrecision,
		ArrivalRadiusMeters: navigation.DefaultArrivalRadiusMeters,
		DistanceUnit:        geo.DefaultUnit,
		OTLPEndpoint:        "localhost:4317",
	}
}

// FromEnv reads the configuration from environment variables, falling back
// to Default for unset keys.
func FromEnv() (Config, error) {
	def := Default()

	threshold, err := parseFloat(EnvOffRouteThresholdKm, def.OffRouteThresholdKm)
	if err != nil {
		return Config{}, err
	}
	radius, err := parseFloat(EnvArrivalRadiusMeters, def.ArrivalRadiusMeters)
	if err != nil {
		return Config{}, err
	}

	precision, err := strconv.Atoi(getEnvOrDefault(EnvPolylinePrecision, strconv.Itoa(int(def.Precision))))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvPolylinePrecision, err)
	}

	unit, err := geo.ParseUnit(getEnvOrDefault(EnvDistanceUnit, string(def.DistanceUnit)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvDistanceUnit, err)
	}

	level, err := zerolog.ParseLevel(getEnvOrDefault(EnvLogLevel, def.LogLevel.String()))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvLogLevel, err)
	}

	cfg := Config{
		Environment:         getEnvOrDefault(EnvEnvironment, def.Environment),
		LogLevel:            level,
		OffRouteThresholdKm: threshold,
		Precision:           polyline.Precision(precision),
		ArrivalRadiusMeters: radius,
		DistanceUnit:        unit,
		OTelEnabled:         os.Getenv(EnvOTelEnabled) == "true",
		OTLPEndpoint:        getEnvOrDefault(EnvOTLPEndpoint, def.OTLPEndpoint),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if !(c.OffRouteThresholdKm > 0) {
		return fmt.Errorf("%w: off-route threshold must be positive, got %v", ErrInvalidConfig, c.OffRouteThresholdKm)
	}
	if !(c.ArrivalRadiusMeters > 0) {
		return fmt.Errorf("%w: arrival radius must be positive, got %v", ErrInvalidConfig, c.ArrivalRadiusMeters)
	}
	if err := c.Precision.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.DistanceUnit.Factor(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// MatcherConfig returns the matcher settings.
func (c Config) MatcherConfig() navigation.MatcherConfig {
	return navigation.MatcherConfig{
		OffRouteThresholdKm: c.OffRouteThresholdKm,
		Precision:           c.Precision,
	}
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	v, err := strconv.ParseFloat(getEnvOrDefault(key, strconv.FormatFloat(defaultValue, 'f', -1, 64)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
