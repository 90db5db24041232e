// Command vpconvert converts an ODIM_H5 2.2 vertical profile file to the
// 2.1 layout.
//
// Usage:
//
//	vpconvert [flags] <input.h5> [output.h5]
//
// Without an output name the input name gets a _v21 suffix.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/baltrad/vpconvert/internal/config"
	"github.com/baltrad/vpconvert/internal/job"
	"github.com/baltrad/vpconvert/internal/observability"
	"github.com/baltrad/vpconvert/odim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vpconvert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file (default: search standard locations)")
	quantities := fs.String("quantities", "", "comma-separated quantities (default: configuration or "+strings.Join(odim.DefaultQuantities, ",")+")")
	compression := fs.Int("compression", -1, "deflate level 0-9 (default: configuration)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: text or json")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: vpconvert [flags] <input.h5> [output.h5]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "vpconvert: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *quantities != "" {
		cfg.Quantities = *quantities
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	if cfg.Source != "" {
		logger.Debug("configuration loaded", "path", cfg.Source)
	}

	j := job.Job{ID: "cli", Input: fs.Arg(0), Output: fs.Arg(1)}
	if *compression >= 0 {
		if *compression > 9 {
			fmt.Fprintf(stderr, "vpconvert: compression must be between 0 and 9\n")
			return 2
		}
		j.Compression = compression
	}

	runner := job.NewRunner(job.RunnerConfig{
		Compression: cfg.Compression,
		OutputDir:   cfg.OutputDir,
		Quantities:  cfg.Quantities,
	}, nil, logger)

	res := runner.Run(ctx, j)
	if res.Status != job.StatusOK {
		fmt.Fprintf(stderr, "vpconvert: %s\n", res.Error)
		return 1
	}
	fmt.Fprintln(stdout, res.Output)
	return 0
}
