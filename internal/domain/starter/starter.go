package starter

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pregame/internal/domain/model"
)

// League-average fallbacks and rate scales.
const (
	DefaultERA  = 4.50
	DefaultWHIP = 1.35

	outsPerNine   = 27 // ERA is earned runs per nine innings
	outsPerInning = 3
)

// Aggregator computes pre-game ERA and WHIP for every starting appearance.
type Aggregator struct {
	defaultERA  float64
	defaultWHIP float64
	workers     int
}

// NewAggregator creates an Aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		defaultERA:  DefaultERA,
		defaultWHIP: DefaultWHIP,
		workers:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate filters starters and returns one StarterForm per starting
// appearance, ordered by pitcher and then chronologically. Each form is built
// only from the same pitcher's earlier starts.
func (a *Aggregator) Aggregate(ctx context.Context, appearances []model.PitcherGameRecord) ([]model.StarterForm, error) {
	starts := make([]model.PitcherGameRecord, 0, len(appearances))
	for i := range appearances {
		if appearances[i].IsStarter() {
			starts = append(starts, appearances[i])
		}
	}
	sort.SliceStable(starts, func(i, j int) bool {
		return model.AppearanceLess(&starts[i], &starts[j])
	})

	out := make([]model.StarterForm, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for lo := 0; lo < len(starts); {
		hi := lo + 1
		for hi < len(starts) && starts[hi].PitcherID == starts[lo].PitcherID {
			hi++
		}
		group := starts[lo:hi]
		dst := out[lo:hi]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.accumulate(group, dst)
			return nil
		})
		lo = hi
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// accumulate walks one pitcher's starts in order, emitting the rates from the
// running totals before adding the current start to them.
func (a *Aggregator) accumulate(group []model.PitcherGameRecord, dst []model.StarterForm) {
	var earnedRuns, outs, walksHits float64
	for i := range group {
		r := &group[i]
		dst[i] = model.StarterForm{
			GameID:    r.GameID,
			Team:      r.Team,
			PitcherID: r.PitcherID,
			Order:     r.Order,
			ERA:       finiteOr(outsPerNine*earnedRuns/outs, a.defaultERA),
			WHIP:      finiteOr(outsPerInning*walksHits/outs, a.defaultWHIP),
		}
		earnedRuns += r.EarnedRuns
		outs += r.Outs
		walksHits += r.HitsAllowed + r.Walks
	}
}

// finiteOr returns v, or fallback when v is NaN or infinite.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
