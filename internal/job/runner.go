package job

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/baltrad/vpconvert/odim"
)

// Runner converts the file named by a job.
type Runner struct {
	clock       clockwork.Clock
	logger      *slog.Logger
	compression int
	outputDir   string
	quantities  string
}

// RunnerConfig holds the defaults applied to jobs that leave them unset.
type RunnerConfig struct {
	Compression int
	OutputDir   string
	Quantities  string
}

// NewRunner returns a Runner. A nil clock uses the real clock.
func NewRunner(cfg RunnerConfig, clock clockwork.Clock, logger *slog.Logger) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		clock:       clock,
		logger:      logger,
		compression: cfg.Compression,
		outputDir:   cfg.OutputDir,
		quantities:  cfg.Quantities,
	}
}

// Run loads, converts and stores the job's file. Failures are reported in
// the result; Run itself never fails.
func (r *Runner) Run(ctx context.Context, j Job) Result {
	start := r.clock.Now()

	quantities := j.Quantities
	if quantities == "" {
		quantities = r.quantities
	}
	compression := r.compression
	if j.Compression != nil {
		compression = *j.Compression
	}

	res := Result{
		ID:         j.ID,
		Input:      j.Input,
		Output:     j.OutputPath(r.outputDir),
		Quantities: odim.ParseQuantities(quantities),
	}

	err := ctx.Err()
	if err == nil {
		err = r.convert(j.Input, quantities, res.Output, compression)
	}

	end := r.clock.Now()
	res.DurationMS = end.Sub(start).Milliseconds()
	res.ProcessedAt = end.UTC()
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		r.logger.Warn("conversion failed", "job", j.ID, "input", j.Input, "error", err)
		return res
	}

	res.Status = StatusOK
	r.logger.Info("conversion done", "job", j.ID, "input", j.Input, "output", res.Output,
		"quantities", len(res.Quantities), "duration_ms", res.DurationMS)
	return res
}

func (r *Runner) convert(input, quantities, output string, compression int) error {
	opts := []odim.Option{odim.WithLogger(r.logger), odim.WithCompression(compression)}

	tree, err := odim.Load(input, opts...)
	if err != nil {
		return err
	}
	res, err := odim.NewConverter(tree, opts...).Convert(quantities, output)
	if err != nil {
		return err
	}
	return odim.Store(res.Tree, res.Filename, opts...)
}
