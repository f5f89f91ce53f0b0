// Package config loads and validates the sampler's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	defaults "github.com/xtxerr/sampler/config"
	"github.com/xtxerr/sampler/internal/measurement"
	"gopkg.in/yaml.v3"
)

// Config represents the complete sampler configuration.
type Config struct {
	// Sampling configures bucketing.
	Sampling SamplingConfig `yaml:"sampling"`

	// Input configures where raw readings are loaded from.
	Input InputConfig `yaml:"input"`

	// Output configures how sampled readings are presented or persisted.
	Output OutputConfig `yaml:"output"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures run metrics export.
	Metrics MetricsConfig `yaml:"metrics"`
}

// SamplingConfig configures bucketing.
type SamplingConfig struct {
	// Interval is the bucket width applied to every kind.
	// Format: "5m", "30s", "1h" or ISO 8601 "PT5M"
	Interval Duration `yaml:"interval"`

	// Start anchors the buckets; readings before it are dropped.
	// Format: "2017-01-03T10:00:00" or RFC 3339. No default.
	Start string `yaml:"start"`

	// ParallelKinds is the number of kinds sampled concurrently.
	ParallelKinds int `yaml:"parallel_kinds"`
}

// InputConfig configures the readings source.
type InputConfig struct {
	// Path is the readings file.
	Path string `yaml:"path"`

	// Format is one of: json, parquet, csv. Empty detects from the extension.
	Format string `yaml:"format"`
}

// OutputConfig configures the sampled readings sink.
type OutputConfig struct {
	// Format is one of: console, json, parquet, protodelim.
	Format string `yaml:"format"`

	// Path is the output file. Empty writes to stdout; parquet requires a path.
	Path string `yaml:"path"`

	// Compression configures Parquet compression.
	Compression CompressionConfig `yaml:"compression"`
}

// CompressionConfig configures Parquet compression.
type CompressionConfig struct {
	// Algorithm is the compression algorithm: snappy, zstd, lz4, gzip, none.
	Algorithm string `yaml:"algorithm"`

	// Level is the compression level (for zstd: 1-22).
	Level int `yaml:"level"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of: text, json, auto.
	Format string `yaml:"format"`
}

// MetricsConfig configures run metrics export.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after each run,
	// for collection by node_exporter. Empty disables the export.
	Textfile string `yaml:"textfile"`
}

// Load loads configuration from a YAML file.
// Environment variables in the file (${VAR}) are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
// The sampling start is left empty on purpose: it has to be supplied.
func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Interval:      Duration(defaults.DefaultSamplingInterval),
			ParallelKinds: defaults.DefaultParallelKinds,
		},
		Input: InputConfig{
			Path:   defaults.DefaultInputPath,
			Format: defaults.DefaultInputFormat,
		},
		Output: OutputConfig{
			Format: defaults.DefaultOutputFormat,
			Compression: CompressionConfig{
				Algorithm: defaults.DefaultCompression,
				Level:     defaults.DefaultCompressionLevel,
			},
		},
		Logging: LoggingConfig{
			Level:  defaults.DefaultLogLevel,
			Format: defaults.DefaultLogFormat,
		},
	}
}

// StartTime parses the configured sampling start.
func (c *SamplingConfig) StartTime() (time.Time, error) {
	return measurement.ParseTime(c.Start)
}
