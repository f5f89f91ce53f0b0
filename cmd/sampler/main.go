// sampler downsamples device readings into fixed time buckets.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtxerr/sampler/internal/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/metrics"
	"github.com/xtxerr/sampler/internal/pipeline"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/sink"
	"github.com/xtxerr/sampler/internal/source"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds command line overrides. Zero values leave the config as is,
// except for -interval which applies whenever it is given.
type flags struct {
	configPath   string
	input        string
	format       string
	output       string
	outputFormat string
	start        string
	interval     config.Duration
	intervalSet  bool
	logLevel     string
	logFormat    string
	parallel     int
	textfile     string
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("sampler", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configPath, "config", "config.yaml", "config file path")
	fs.StringVar(&f.input, "input", "", "readings file (overrides config)")
	fs.StringVar(&f.format, "format", "", "input format: json, parquet, csv, protodelim")
	fs.StringVar(&f.output, "output", "", "output file, stdout when empty (overrides config)")
	fs.StringVar(&f.outputFormat, "output-format", "", "output format: console, json, parquet, protodelim")
	fs.StringVar(&f.start, "start", "", "sampling start, e.g. 2017-01-03T10:00:00")
	fs.Var(&f.interval, "interval", "bucket interval, e.g. 5m or PT5M")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json, auto")
	fs.IntVar(&f.parallel, "parallel", -1, "kinds sampled concurrently")
	fs.StringVar(&f.textfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "interval" {
			f.intervalSet = true
		}
	})
	if fs.NArg() > 0 {
		return nil, errors.NewValidation("arguments", fmt.Sprintf("unexpected %q", fs.Args()))
	}
	return f, nil
}

// apply copies the set flags over cfg.
func (f *flags) apply(cfg *config.Config) {
	if f.input != "" {
		cfg.Input.Path = f.input
	}
	if f.format != "" {
		cfg.Input.Format = f.format
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	if f.outputFormat != "" {
		cfg.Output.Format = f.outputFormat
	}
	if f.start != "" {
		cfg.Sampling.Start = f.start
	}
	// An explicit zero must reach validation.
	if f.intervalSet {
		cfg.Sampling.Interval = f.interval
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}
	if f.parallel >= 0 {
		cfg.Sampling.ParallelKinds = f.parallel
	}
	if f.textfile != "" {
		cfg.Metrics.Textfile = f.textfile
	}
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist. Validation happens after the flags are applied.
func loadConfig(path string) (*config.Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.DefaultConfig(), false, nil
		}
		return nil, false, errors.Wrapf(errors.ErrInvalidConfig, "read config file: %v", err)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, false, errors.Wrapf(errors.ErrInvalidConfig, "%v", err)
	}
	return cfg, true, nil
}

// initLogging configures the global logger. The auto format writes text to
// a terminal and JSON otherwise.
func initLogging(cfg config.LoggingConfig, stderr io.Writer) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	jsonFormat := cfg.Format == "json"
	if cfg.Format == "auto" || cfg.Format == "" {
		jsonFormat = !logging.IsTerminal(stderr)
	}

	logging.InitWriter(stderr, level, jsonFormat)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errors.CodeOK
		}
		fmt.Fprintf(stderr, "sampler: %v\n", err)
		return errors.CodeInvalidConfig
	}

	if f.version {
		fmt.Fprintf(stdout, "sampler %s\n", Version)
		return errors.CodeOK
	}

	cfg, found, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "sampler: %v\n", err)
		return errors.ExitCode(err)
	}
	f.apply(cfg)

	initLogging(cfg.Logging, stderr)
	log := logging.Component("main")

	if !found {
		log.Debug("no config file found, using defaults", "path", f.configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return errors.ExitCode(err)
	}

	err = execute(ctx, cfg, stdout)
	code := errors.ExitCode(err)
	if err != nil {
		log.Error("sampler failed", "error", err, "exit_code", errors.CodeName(code))
	}
	return code
}

// execute builds the pipeline from a validated configuration and runs it once.
func execute(ctx context.Context, cfg *config.Config, stdout io.Writer) (err error) {
	log := logging.Component("main")

	start, err := cfg.Sampling.StartTime()
	if err != nil {
		return err
	}

	s, err := sampling.New(cfg.Sampling.Interval.Duration(), sampling.Options{
		Aggregator:    sampling.LatestInBucket,
		ParallelKinds: cfg.Sampling.ParallelKinds,
	})
	if err != nil {
		return err
	}

	src, err := source.Open(cfg.Input)
	if err != nil {
		return err
	}

	out, err := sink.Open(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	m := metrics.New()
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
				log.Warn("metrics textfile not written", "path", cfg.Metrics.Textfile, "error", werr)
			}
		}()
	}

	log.Info("sampler starting",
		"version", Version,
		"input", src.Name(),
		"output", cfg.Output.Format,
		"start", cfg.Sampling.Start,
		"interval", cfg.Sampling.Interval,
	)

	p := pipeline.New(src, s, out, pipeline.WithMetrics(m))
	_, err = p.Run(ctx, start)
	return err
}
