// Package merge joins starter and team form onto the team-game records.
package merge

import "github.com/okian/pregame/internal/domain/model"

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithStarterDefaults sets the rates given to team-games with no starter record.
func WithStarterDefaults(era, whip float64) Option {
	return func(m *Merger) {
		m.defaultERA = era
		m.defaultWHIP = whip
	}
}

// WithStats sets the rolled stats, in the order of TeamForm.Rolling.
func WithStats(stats []model.CountingStat) Option {
	return func(m *Merger) {
		if len(stats) > 0 {
			m.stats = stats
		}
	}
}
