// Package source loads per-season team-game and pitcher-appearance files.
package source

import (
	"github.com/okian/pregame/pkg/logger"
	"github.com/okian/pregame/pkg/metrics"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithDataDir sets the directory holding the season files.
func WithDataDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.dataDir = dir
		}
	}
}

// WithFilePatterns sets the team and pitching file name patterns; %d is the season.
func WithFilePatterns(team, pitching string) Option {
	return func(l *Loader) {
		if team != "" {
			l.teamPattern = team
		}
		if pitching != "" {
			l.pitchingPattern = pitching
		}
	}
}

// WithSeasons sets the inclusive season range.
func WithSeasons(start, end int) Option {
	return func(l *Loader) {
		if start > 0 && end >= start {
			l.seasonStart = start
			l.seasonEnd = end
		}
	}
}

// WithWorkerCount bounds how many files are parsed concurrently.
func WithWorkerCount(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithMetrics sets the metrics manager the loader reports to.
func WithMetrics(m *metrics.Manager) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}
