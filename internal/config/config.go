package config

import (
	"errors"
	"os"
	"strconv"

	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
// Input and output paths are per-invocation concerns and come in as flags,
// not environment.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// BatchSize is the number of raw records per extract cycle; Workers
	// bounds the normalization fan-out (0 means one per CPU).
	BatchSize int
	Workers   int

	// TopN is the default table depth for ranked reports.
	TopN int

	// AuditUnmappedLabels controls whether distinct unmapped event labels
	// are collected and logged at the end of a run. The Prometheus drop
	// counters stay on regardless; this only gates the per-label side list.
	AuditUnmappedLabels bool

	// Kafka sink configuration. When disabled the run is purely local.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	workers, err := parsePositiveInt("WORKERS", 0)
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("TOP_N", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		BatchSize:       batchSize,
		Workers:         workers,
		TopN:            topN,

		AuditUnmappedLabels: sharedcfg.EnvOrDefault("AUDIT_UNMAPPED_LABELS", "true") == "true",

		KafkaEnabled:   os.Getenv("KAFKA_SINK_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "normalized-storm-harm"),
	}

	if cfg.TopN <= 0 {
		return nil, errors.New("TOP_N must be positive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_SINK_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// parsePositiveInt reads an integer env var, allowing the default to stand
// in when unset. Zero is allowed only when the default is zero.
func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
