// Package config provides configuration management for the feed sync job.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values used when neither the config file nor the environment sets them.
const (
	DefaultFeedURL                = "https://www.horsimo.cz/google/export/products.xml"
	DefaultMaxRedirects           = 5
	DefaultTimeoutSec             = 60
	DefaultAffiliateParam         = "aff_id"
	DefaultAffiliateID            = "123"
	DefaultOutputDir              = "public"
	DefaultSampleSize             = 100
	DefaultSearchDescriptionLimit = 200
	DefaultProgressStepMB         = 10
)

// Output sinks.
const (
	SinkLocal = "local"
	SinkGCS   = "gcs"
)

// Configuration validation errors.
var (
	ErrMissingFeedSource       = errors.New("feed.url or feed.file is required")
	ErrInvalidMaxRedirects     = errors.New("feed.max_redirects must be non-negative")
	ErrInvalidTimeout          = errors.New("feed.timeout_sec must be at least 1")
	ErrMissingAffiliateParam   = errors.New("affiliate.param is required")
	ErrInvalidSink             = errors.New("output.sink must be 'local' or 'gcs'")
	ErrMissingOutputDir        = errors.New("output.dir is required for the local sink")
	ErrMissingBucket           = errors.New("output.gcs.bucket is required for the gcs sink")
	ErrInvalidSampleSize       = errors.New("catalog.sample_size must be non-negative")
	ErrInvalidDescriptionLimit = errors.New("catalog.search_description_limit must be non-negative")
	ErrInvalidProgressStep     = errors.New("logging.progress_step_mb must be at least 1")
	ErrInvalidLogLevel         = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete job configuration.
type Config struct {
	Feed      FeedConfig      `yaml:"feed"`
	Affiliate AffiliateConfig `yaml:"affiliate"`
	Output    OutputConfig    `yaml:"output"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// FeedConfig describes where the product feed comes from.
type FeedConfig struct {
	Headers      map[string]string `yaml:"headers"`
	URL          string            `yaml:"url"`
	File         string            `yaml:"file"`
	MaxRedirects int               `yaml:"max_redirects"`
	TimeoutSec   int               `yaml:"timeout_sec"`
}

// IsLocalFile returns true if the feed is read from disk instead of HTTP.
func (f *FeedConfig) IsLocalFile() bool {
	return f.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (f *FeedConfig) GetSource() string {
	if f.IsLocalFile() {
		return f.File
	}

	return f.URL
}

// GetTimeout returns the per-request timeout.
func (f *FeedConfig) GetTimeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// AffiliateConfig holds the tracking parameter appended to product links.
type AffiliateConfig struct {
	Param string `yaml:"param"`
	ID    string `yaml:"id"`
}

// OutputConfig defines where and how artifacts are written.
type OutputConfig struct {
	Sink        string    `yaml:"sink"`
	Dir         string    `yaml:"dir"`
	GCS         GCSConfig `yaml:"gcs"`
	PrettyPrint bool      `yaml:"pretty_print"`
}

// GCSConfig configures the Cloud Storage sink.
type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// CatalogConfig tunes the derived views.
type CatalogConfig struct {
	SampleSize             int `yaml:"sample_size"`
	SearchDescriptionLimit int `yaml:"search_description_limit"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	ShowProgress   bool   `yaml:"show_progress"`
	ShowSummary    bool   `yaml:"show_summary"`
	ProgressStepMB int    `yaml:"progress_step_mb"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration the job runs with when nothing is overridden.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:          DefaultFeedURL,
			MaxRedirects: DefaultMaxRedirects,
			TimeoutSec:   DefaultTimeoutSec,
		},
		Affiliate: AffiliateConfig{
			Param: DefaultAffiliateParam,
			ID:    DefaultAffiliateID,
		},
		Output: OutputConfig{
			Sink: SinkLocal,
			Dir:  DefaultOutputDir,
		},
		Catalog: CatalogConfig{
			SampleSize:             DefaultSampleSize,
			SearchDescriptionLimit: DefaultSearchDescriptionLimit,
		},
		Logging: LoggingConfig{
			Level:          "info",
			ShowProgress:   true,
			ShowSummary:    true,
			ProgressStepMB: DefaultProgressStepMB,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides configuration values from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FEED_URL"); v != "" {
		c.Feed.URL = v
		c.Feed.File = ""
	}

	if v := os.Getenv("FEED_FILE"); v != "" {
		c.Feed.File = v
	}

	if v := os.Getenv("FEED_MAX_REDIRECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FEED_MAX_REDIRECTS: %w", err)
		}

		c.Feed.MaxRedirects = n
	}

	if v := os.Getenv("AFFILIATE_ID"); v != "" {
		c.Affiliate.ID = v
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}

	if v := os.Getenv("OUTPUT_SINK"); v != "" {
		c.Output.Sink = strings.ToLower(v)
	}

	if v := os.Getenv("GCS_BUCKET"); v != "" {
		c.Output.GCS.Bucket = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Feed.URL == "" && c.Feed.File == "" {
		return ErrMissingFeedSource
	}

	if c.Feed.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	if c.Feed.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Affiliate.Param == "" {
		return ErrMissingAffiliateParam
	}

	switch c.Output.Sink {
	case SinkLocal:
		if c.Output.Dir == "" {
			return ErrMissingOutputDir
		}
	case SinkGCS:
		if c.Output.GCS.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return ErrInvalidSink
	}

	if c.Catalog.SampleSize < 0 {
		return ErrInvalidSampleSize
	}

	if c.Catalog.SearchDescriptionLimit < 0 {
		return ErrInvalidDescriptionLimit
	}

	if c.Logging.ProgressStepMB < 1 {
		return ErrInvalidProgressStep
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ProgressStepBytes returns the download progress milestone in bytes.
func (c *Config) ProgressStepBytes() int64 {
	return int64(c.Logging.ProgressStepMB) * 1024 * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s, Sink: %s, Output: %s, Affiliate: %s=%s}",
		c.Feed.GetSource(),
		c.Output.Sink,
		c.outputTarget(),
		c.Affiliate.Param,
		c.Affiliate.ID,
	)
}

func (c *Config) outputTarget() string {
	if c.Output.Sink == SinkGCS {
		return "gs://" + c.Output.GCS.Bucket + "/" + c.Output.GCS.Prefix
	}

	return c.Output.Dir
}
