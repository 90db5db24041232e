// Package pipeline runs the consume, convert and publish loop of the
// conversion service.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/baltrad/vpconvert/internal/job"
	"github.com/baltrad/vpconvert/internal/observability"
)

// Source delivers job messages. Fetch blocks until a message is available.
type Source interface {
	Fetch(ctx context.Context) (job.Message, error)
}

// Converter processes one job.
type Converter interface {
	Run(ctx context.Context, j job.Job) job.Result
}

// Publisher writes job results.
type Publisher interface {
	Publish(ctx context.Context, r job.Result) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline converts jobs one at a time until its context is cancelled.
type Pipeline struct {
	source    Source
	converter Converter
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	converted atomic.Int64
	failed    atomic.Int64
	lastJob   atomic.Pointer[string]
}

// Status is a snapshot of the jobs the pipeline has published.
type Status struct {
	Ready     bool   `json:"ready"`
	Converted int64  `json:"jobs_converted"`
	Failed    int64  `json:"jobs_failed"`
	LastJob   string `json:"last_job,omitempty"`
}

// New creates a Pipeline.
func New(s Source, c Converter, p Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    s,
		converter: c,
		publisher: p,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ready reports whether at least one result has been published.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Status returns the counters behind the health report.
func (p *Pipeline) Status() Status {
	st := Status{
		Ready:     p.ready.Load(),
		Converted: p.converted.Load(),
		Failed:    p.failed.Load(),
	}
	if id := p.lastJob.Load(); id != nil {
		st.LastJob = *id
	}
	return st
}

// CheckReadiness returns nil once a result has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any jobs yet")
	}
	return nil
}

// Run executes the loop until ctx is cancelled. Broker errors are retried
// with exponential backoff; conversion failures are published and never
// retried.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if !p.processOne(ctx, &backoff) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// processOne handles a single message. It returns false when the pipeline
// should stop.
func (p *Pipeline) processOne(ctx context.Context, backoff *time.Duration) bool {
	msg, err := p.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("fetch job failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	p.metrics.JobsConsumed.Inc()
	*backoff = initialBackoff

	j, err := job.Decode(msg.Value)
	if err != nil {
		p.logger.Warn("invalid job, skipping message",
			"error", err,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		p.metrics.InvalidJobs.Inc()
		p.commit(ctx, msg)
		return true
	}
	if j.ID == "" {
		j.ID = string(msg.Key)
	}

	res := p.converter.Run(ctx, j)
	outcome := observability.OutcomeOK
	if res.Status != job.StatusOK {
		outcome = observability.OutcomeFailed
	} else {
		p.metrics.QuantitiesConverted.Add(float64(len(res.Quantities)))
	}
	p.metrics.Conversions.WithLabelValues(outcome).Inc()
	p.metrics.ConversionDuration.Observe(float64(res.DurationMS) / 1000)

	for {
		err := p.publisher.Publish(ctx, res)
		if err == nil {
			break
		}
		p.logger.Error("publish result failed", "error", err, "job", res.ID)
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}
	*backoff = initialBackoff
	p.metrics.ResultsPublished.Inc()
	if res.Status == job.StatusOK {
		p.converted.Add(1)
	} else {
		p.failed.Add(1)
	}
	p.lastJob.Store(&res.ID)
	p.ready.Store(true)

	p.commit(ctx, msg)
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. It returns
// false if ctx is cancelled.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, msg job.Message) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
