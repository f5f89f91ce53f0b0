// Package config provides configuration defaults and utilities
// for the sampler application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command line flags.
package config

import "time"

// =============================================================================
// Sampling Defaults
// =============================================================================

const (
	// DefaultSamplingInterval is the width of one sampling bucket.
	// Every measurement kind is sampled with the same interval.
	// Override via config: sampling.interval
	DefaultSamplingInterval = 5 * time.Minute

	// DefaultParallelKinds is the number of kinds sampled concurrently.
	// Zero or one keeps sampling on the calling goroutine.
	// Override via config: sampling.parallel_kinds
	DefaultParallelKinds = 0
)

// =============================================================================
// Input / Output Defaults
// =============================================================================

const (
	// DefaultInputPath is the readings file used when none is configured.
	// Override via config: input.path
	DefaultInputPath = "./data/sample.json"

	// DefaultInputFormat leaves the format to be detected from the file
	// extension (.json, .parquet, .csv, .pb).
	// Override via config: input.format
	DefaultInputFormat = ""

	// DefaultOutputFormat renders one "{time, kind, value}" line per reading.
	// Override via config: output.format
	DefaultOutputFormat = "console"

	// DefaultCompression is the Parquet compression algorithm for output files.
	// Override via config: output.compression.algorithm
	DefaultCompression = "zstd"

	// DefaultCompressionLevel is the zstd compression level.
	// Override via config: output.compression.level
	DefaultCompressionLevel = 3

	// DefaultMaxMessageSize limits a single delimited protobuf record on read.
	DefaultMaxMessageSize = 1024 * 1024
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the minimum level written to stderr.
	// Override via config: logging.level
	DefaultLogLevel = "info"

	// DefaultLogFormat selects JSON logs when stderr is not a terminal and
	// human-readable text otherwise.
	// Override via config: logging.format
	DefaultLogFormat = "auto"
)
