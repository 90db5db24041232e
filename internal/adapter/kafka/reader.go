// Package kafka connects the conversion pipeline to Kafka topics.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/baltrad/vpconvert/internal/config"
	"github.com/baltrad/vpconvert/internal/job"
)

// fetcher is the part of kafkago.Reader the adapter uses.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Reader consumes job messages from the jobs topic.
// It implements pipeline.Source.
type Reader struct {
	reader fetcher
	logger *slog.Logger
}

// NewReader creates a consumer group reader for the configured jobs topic.
// Offsets are committed explicitly once a job's result is published.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaJobsTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Reader{reader: r, logger: logger}
}

// Fetch blocks until the next job message is available.
func (r *Reader) Fetch(ctx context.Context) (job.Message, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return job.Message{}, fmt.Errorf("fetch job message: %w", err)
	}
	out := mapMessage(msg)
	out.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return out, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func mapMessage(msg kafkago.Message) job.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return job.Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Headers:   headers,
	}
}
