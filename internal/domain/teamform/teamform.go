package teamform

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pregame/internal/domain/model"
)

// Defaults used when no option overrides them.
const (
	DefaultWindow         = 10
	DefaultNeutralWinRate = 0.5
)

// Aggregator computes TeamForm for every team-game.
type Aggregator struct {
	window         int
	stats          []model.CountingStat
	neutralWinRate float64
	workers        int
}

// NewAggregator creates an Aggregator tracking the default stats.
func NewAggregator(opts ...Option) *Aggregator {
	stats, _, _ := model.ResolveStats(model.DefaultRollStats())
	a := &Aggregator{
		window:         DefaultWindow,
		stats:          stats,
		neutralWinRate: DefaultNeutralWinRate,
		workers:        runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats returns the tracked stats in the order of TeamForm.Rolling.
func (a *Aggregator) Stats() []model.CountingStat { return a.stats }

// Aggregate returns one TeamForm per team-game, ordered chronologically within
// each team-season. Every value describes only the games before it.
func (a *Aggregator) Aggregate(ctx context.Context, games []model.GameTeamRecord) ([]model.TeamForm, error) {
	ordered := make([]*model.GameTeamRecord, len(games))
	for i := range games {
		ordered[i] = &games[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.ChronologicalLess(ordered[i], ordered[j])
	})

	out := make([]model.TeamForm, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for lo := 0; lo < len(ordered); {
		key := model.TeamSeasonKey{Team: ordered[lo].Team, Season: ordered[lo].Season}
		hi := lo + 1
		for hi < len(ordered) && ordered[hi].Team == key.Team && ordered[hi].Season == key.Season {
			hi++
		}
		group := ordered[lo:hi]
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

// accumulate walks one team-season in order. Rolling means cover the
// preceding window of games; win counts cover every preceding game.
func (a *Aggregator) accumulate(group []*model.GameTeamRecord, dst []model.TeamForm) {
	values := make([][]float64, len(a.stats))
	for s, stat := range a.stats {
		values[s] = make([]float64, len(group))
		for i, r := range group {
			values[s][i] = stat.Value(r)
		}
	}

	wins := 0
	for i, r := range group {
		rolling := make([]float64, len(a.stats))
		from := max(0, i-a.window)
		for s := range a.stats {
			rolling[s] = meanDefined(values[s][from:i])
		}

		rate := a.neutralWinRate
		if i > 0 {
			rate = float64(wins) / float64(i)
		}
		dst[i] = model.TeamForm{
			Team:       r.Team,
			Season:     r.Season,
			GameID:     r.GameID,
			Rolling:    rolling,
			PriorWins:  wins,
			PriorGames: i,
			PreWinRate: rate,
		}
		if r.Win {
			wins++
		}
	}
}

// meanDefined averages the non-NaN values, returning NaN when there are none.
func meanDefined(vs []float64) float64 {
	var sum float64
	n := 0
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
