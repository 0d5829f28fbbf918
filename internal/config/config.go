package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Year orderings for the yearly incidents chart.
const (
	YearOrderFrequency     = "frequency"
	YearOrderChronological = "chronological"
)

// ErrInvalidYearOrder is returned for a yearly chart order other than
// YearOrderFrequency or YearOrderChronological.
var ErrInvalidYearOrder = errors.New("year order must be \"frequency\" or \"chronological\"")

// ParseYearOrder validates a yearly chart order.
func ParseYearOrder(s string) (string, error) {
	switch s {
	case YearOrderFrequency, YearOrderChronological:
		return s, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidYearOrder, s)
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetPath     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// View configuration.
	YearOrder        string
	ImpactMinRadius  float64
	SessionCacheSize int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Kafka publishing of the cleaned dataset.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	impactMinRadius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("IMPACT_MIN_RADIUS", "1000"), 64)
	if err != nil || impactMinRadius < 0 {
		return nil, errors.New("invalid IMPACT_MIN_RADIUS")
	}

	yearOrder, err := ParseYearOrder(sharedcfg.EnvOrDefault("YEAR_ORDER", YearOrderFrequency))
	if err != nil {
		return nil, fmt.Errorf("YEAR_ORDER: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DatasetPath:     sharedcfg.EnvOrDefault("DATASET_PATH", "dataset/incidents.csv"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		YearOrder:        yearOrder,
		ImpactMinRadius:  impactMinRadius,
		SessionCacheSize: parsePositiveInt("SESSION_CACHE_SIZE", 1000),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cleaned-spill-incidents"),
		BatchSize:      batchSize,
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
