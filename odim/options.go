package odim

import (
	"io"
	"log/slog"
)

// DefaultCompression is the deflate level used for stored datasets.
const DefaultCompression = 6

// Option configures Load, Store and NewConverter.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	compression int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		compression: DefaultCompression,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCompression sets the deflate level used by Store (0 disables
// compression). Levels outside 0-9 are ignored.
func WithCompression(level int) Option {
	return func(o *options) {
		if level >= 0 && level <= 9 {
			o.compression = level
		}
	}
}
