// Package starter computes starting pitchers' pre-game cumulative rates.
package starter

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithDefaults sets the rates used when no prior data defines a value.
func WithDefaults(era, whip float64) Option {
	return func(a *Aggregator) {
		if era >= 0 {
			a.defaultERA = era
		}
		if whip >= 0 {
			a.defaultWHIP = whip
		}
	}
}

// WithWorkerCount bounds how many pitchers are aggregated concurrently.
func WithWorkerCount(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}
