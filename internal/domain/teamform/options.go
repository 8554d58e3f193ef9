// Package teamform computes each team's pre-game rolling form and win rate.
package teamform

import "github.com/okian/pregame/internal/domain/model"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindow sets how many preceding games feed the rolling means.
func WithWindow(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithStats sets the tracked counting stats, in output order.
func WithStats(stats []model.CountingStat) Option {
	return func(a *Aggregator) {
		if len(stats) > 0 {
			a.stats = stats
		}
	}
}

// WithNeutralWinRate sets the win rate reported before a team's first game.
func WithNeutralWinRate(r float64) Option {
	return func(a *Aggregator) {
		if r >= 0 && r <= 1 {
			a.neutralWinRate = r
		}
	}
}

// WithWorkerCount bounds how many team-seasons are aggregated concurrently.
func WithWorkerCount(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}
