package config

import (
	"path/filepath"
	"strings"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
)

// Input formats.
const (
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Output formats.
const (
	FormatConsole    = "console"
	FormatProtodelim = "protodelim"
)

var (
	validInputFormats = map[string]bool{
		FormatJSON:       true,
		FormatParquet:    true,
		FormatCSV:        true,
		FormatProtodelim: true,
		"":               true, // Empty detects from the extension
	}

	validOutputFormats = map[string]bool{
		FormatConsole:    true,
		FormatJSON:       true,
		FormatParquet:    true,
		FormatProtodelim: true,
	}

	validAlgorithms = map[string]bool{
		"snappy": true,
		"zstd":   true,
		"lz4":    true,
		"gzip":   true,
		"none":   true,
		"":       true, // Empty defaults to none
	}

	validLogFormats = map[string]bool{
		"text": true,
		"json": true,
		"auto": true,
		"":     true,
	}
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	errs := errors.NewValidationErrors()

	errs.Add(c.Sampling.Validate())
	errs.Add(c.Input.Validate())
	errs.Add(c.Output.Validate())
	errs.Add(c.Logging.Validate())

	return errs.Err()
}

// Validate checks the sampling configuration.
func (c *SamplingConfig) Validate() error {
	errs := errors.NewValidationErrors()

	if c.Interval <= 0 {
		errs.Add(errors.Wrapf(errors.ErrInvalidInterval, "sampling.interval %v must be positive", c.Interval))
	}

	if strings.TrimSpace(c.Start) == "" {
		errs.AddMissing("sampling.start")
	} else if _, err := c.StartTime(); err != nil {
		errs.Add(errors.Wrap(err, "sampling.start"))
	}

	if c.ParallelKinds < 0 {
		errs.AddField("sampling.parallel_kinds", "must be non-negative")
	}

	return errs.Err()
}

// Validate checks the input configuration.
func (c *InputConfig) Validate() error {
	errs := errors.NewValidationErrors()

	if c.Path == "" {
		errs.AddMissing("input.path")
	}

	if !validInputFormats[c.Format] {
		errs.AddField("input.format", "must be one of: json, parquet, csv, protodelim")
	} else if c.Path != "" {
		if _, err := c.ResolvedFormat(); err != nil {
			errs.Add(err)
		}
	}

	return errs.Err()
}

// ResolvedFormat returns the configured format, or the one implied by the
// file extension when no format is configured.
func (c *InputConfig) ResolvedFormat() (string, error) {
	if c.Format != "" {
		return c.Format, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(c.Path), "."))
	switch ext {
	case FormatJSON, FormatParquet, FormatCSV:
		return ext, nil
	case "pb", FormatProtodelim:
		return FormatProtodelim, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "input %s: cannot detect format from extension %q", c.Path, ext)
	}
}

// Validate checks the output configuration.
func (c *OutputConfig) Validate() error {
	errs := errors.NewValidationErrors()

	if !validOutputFormats[c.Format] {
		errs.AddField("output.format", "must be one of: console, json, parquet, protodelim")
	}

	if c.Format == FormatParquet && c.Path == "" {
		errs.AddMissing("output.path (required for parquet)")
	}

	if !validAlgorithms[c.Compression.Algorithm] {
		errs.AddField("output.compression.algorithm", "must be one of: snappy, zstd, lz4, gzip, none")
	}

	if c.Compression.Algorithm == "zstd" && (c.Compression.Level < 0 || c.Compression.Level > 22) {
		errs.AddField("output.compression.level", "for zstd must be between 0 and 22")
	}

	return errs.Err()
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	errs := errors.NewValidationErrors()

	if _, err := logging.ParseLevel(c.Level); err != nil {
		errs.AddField("logging.level", err.Error())
	}

	if !validLogFormats[c.Format] {
		errs.AddField("logging.format", "must be one of: text, json, auto")
	}

	return errs.Err()
}
