package app

import (
	"github.com/okian/pregame/internal/adapters/sink"
	"github.com/okian/pregame/pkg/logger"
	"github.com/okian/pregame/pkg/metrics"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWriter overrides the sink chosen from the configured output format.
func WithWriter(w sink.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.writer = w
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}
