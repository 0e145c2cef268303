package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	InputPath      string
	InputSheet     string
	OutputPath     string
	TargetLocality string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Schedule is a standard 5-field cron expression. Empty means run once and exit.
	Schedule   string
	RunOnStart bool

	// Run-summary notifications. Disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string

	ObjectStore ObjectStoreConfig
}

// ObjectStoreConfig configures the S3-compatible artifact mirror.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Key       string
	UseSSL    bool
}

// Enabled reports whether an object store endpoint is configured.
func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != ""
}

// KafkaEnabled reports whether run summaries should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Scheduled reports whether the service runs on a cron schedule.
func (c *Config) Scheduled() bool {
	return c.Schedule != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	runOnStart, err := parseBool("RUN_ON_START", "false")
	if err != nil {
		return nil, err
	}

	useSSL, err := parseBool("OBJECT_STORE_USE_SSL", "true")
	if err != nil {
		return nil, err
	}

	outputPath := sharedcfg.EnvOrDefault("OUTPUT_PATH", "data/processed/dados_tratados_tcc.csv")

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("INPUT_PATH", "data/raw/dados_brutos.xlsx"),
		InputSheet:      sharedcfg.EnvOrDefault("INPUT_SHEET", ""),
		OutputPath:      outputPath,
		TargetLocality:  domain.NormalizeText(sharedcfg.EnvOrDefault("TARGET_LOCALITY", "SAO LUIS")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		Schedule:        sharedcfg.EnvOrDefault("SCHEDULE", ""),
		RunOnStart:      runOnStart,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "water-quality-runs"),
		ObjectStore: ObjectStoreConfig{
			Endpoint:  sharedcfg.EnvOrDefault("OBJECT_STORE_ENDPOINT", ""),
			AccessKey: sharedcfg.EnvOrDefault("OBJECT_STORE_ACCESS_KEY", ""),
			SecretKey: sharedcfg.EnvOrDefault("OBJECT_STORE_SECRET_KEY", ""),
			Bucket:    sharedcfg.EnvOrDefault("OBJECT_STORE_BUCKET", ""),
			Key:       sharedcfg.EnvOrDefault("OBJECT_STORE_KEY", filepath.Base(outputPath)),
			UseSSL:    useSSL,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TargetLocality == "" {
		return errors.New("TARGET_LOCALITY is empty after normalization")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid SCHEDULE: %w", err)
		}
	}
	if c.ObjectStore.Enabled() {
		if c.ObjectStore.Bucket == "" {
			return errors.New("OBJECT_STORE_BUCKET is required when OBJECT_STORE_ENDPOINT is set")
		}
		if c.ObjectStore.AccessKey == "" || c.ObjectStore.SecretKey == "" {
			return errors.New("OBJECT_STORE_ACCESS_KEY and OBJECT_STORE_SECRET_KEY are required when OBJECT_STORE_ENDPOINT is set")
		}
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func parseBool(key, fallback string) (bool, error) {
	v, err := strconv.ParseBool(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return v, nil
}
