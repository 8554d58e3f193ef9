package merge

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/internal/domain/starter"
)

// Engineered column names.
const (
	ColSeason     = "season"
	ColTarget     = "target"
	ColStarterID  = "starter_id"
	ColERA        = "sp_era"
	ColWHIP       = "sp_whip"
	ColCumWins    = "cum_wins"
	ColCumGames   = "cum_games"
	ColPreWinRate = "pre_win_rate"

	rollPrefix = "roll_"
	emptyCell  = "0"
)

// RollColumn names the rolling mean column of a stat.
func RollColumn(stat string) string { return rollPrefix + stat }

// Stats counts what the merge had to resolve.
type Stats struct {
	Rows              int
	MissingStarters   int
	DuplicateStarters int
}

// Merger left-joins StarterForm and TeamForm onto team-game records.
type Merger struct {
	defaultERA  float64
	defaultWHIP float64
	stats       []model.CountingStat
}

// NewMerger creates a Merger with configuration options.
func NewMerger(opts ...Option) *Merger {
	stats, _, _ := model.ResolveStats(model.DefaultRollStats())
	m := &Merger{
		defaultERA:  starter.DefaultERA,
		defaultWHIP: starter.DefaultWHIP,
		stats:       stats,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Columns returns the merged layout for the given source columns: source
// columns first, minus any that clash with an engineered name, then the
// engineered columns.
func (m *Merger) Columns(source []string) ([]string, []model.ColumnKind, []int) {
	engineered := m.engineered()
	taken := make(map[string]bool, len(engineered))
	for _, c := range engineered {
		taken[c] = true
	}

	var cols []string
	var kinds []model.ColumnKind
	var keep []int
	for i, c := range source {
		if taken[c] {
			continue
		}
		taken[c] = true
		cols = append(cols, c)
		kinds = append(kinds, model.KindText)
		keep = append(keep, i)
	}
	for _, c := range engineered {
		cols = append(cols, c)
		if c == ColStarterID {
			kinds = append(kinds, model.KindText)
		} else {
			kinds = append(kinds, model.KindNumber)
		}
	}
	return cols, kinds, keep
}

func (m *Merger) engineered() []string {
	cols := []string{ColSeason, ColTarget, ColStarterID, ColERA, ColWHIP}
	for _, s := range m.stats {
		cols = append(cols, RollColumn(s.Column))
	}
	return append(cols, ColCumWins, ColCumGames, ColPreWinRate)
}

// Merge builds one row per team-game in chronological team order. Team-games
// without a starter record get the default rates. Blank cells, including a
// missing starter id, and undefined form values become zero.
func (m *Merger) Merge(
	ctx context.Context,
	source []string,
	games []model.GameTeamRecord,
	starters []model.StarterForm,
	forms []model.TeamForm,
) (*model.MergedTable, Stats, error) {
	var st Stats
	if err := ctx.Err(); err != nil {
		return nil, st, err
	}

	byStarter := make(map[model.StarterKey]*model.StarterForm, len(starters))
	for i := range starters {
		s := &starters[i]
		prev, ok := byStarter[s.Key()]
		if !ok {
			byStarter[s.Key()] = s
			continue
		}
		st.DuplicateStarters++
		if s.Order < prev.Order {
			byStarter[s.Key()] = s
		}
	}

	byForm := make(map[model.TeamFormKey]*model.TeamForm, len(forms))
	for i := range forms {
		if _, ok := byForm[forms[i].Key()]; !ok {
			byForm[forms[i].Key()] = &forms[i]
		}
	}

	ordered := make([]*model.GameTeamRecord, len(games))
	for i := range games {
		ordered[i] = &games[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.ChronologicalLess(ordered[i], ordered[j])
	})

	cols, kinds, keep := m.Columns(source)
	table := &model.MergedTable{
		Columns: cols,
		Kinds:   kinds,
		Rows:    make([]model.MergedRow, 0, len(ordered)),
	}
	for _, g := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		cells := make([]string, 0, len(cols))
		for _, j := range keep {
			v := ""
			if j < len(g.Raw) {
				v = g.Raw[j]
			}
			if v == "" {
				v = emptyCell
			}
			cells = append(cells, v)
		}

		starterID, era, whip := emptyCell, m.defaultERA, m.defaultWHIP
		if s, ok := byStarter[model.StarterKey{GameID: g.GameID, Team: g.Team}]; ok {
			era, whip = s.ERA, s.WHIP
			if s.PitcherID != "" {
				starterID = s.PitcherID
			}
		} else {
			st.MissingStarters++
		}
		cells = append(cells,
			strconv.Itoa(g.Season),
			strconv.Itoa(g.Target()),
			starterID,
			formatFloat(era),
			formatFloat(whip),
		)

		form := byForm[model.KeyOf(g)]
		for s := range m.stats {
			v := math.NaN()
			if form != nil && s < len(form.Rolling) {
				v = form.Rolling[s]
			}
			cells = append(cells, formatFloat(zeroIfUndefined(v)))
		}
		var wins, played int
		rate := math.NaN()
		if form != nil {
			wins, played, rate = form.PriorWins, form.PriorGames, form.PreWinRate
		}
		cells = append(cells,
			strconv.Itoa(wins),
			strconv.Itoa(played),
			formatFloat(zeroIfUndefined(rate)),
		)

		table.Rows = append(table.Rows, model.MergedRow{GameID: g.GameID, Site: g.Site, Cells: cells})
	}
	st.Rows = len(table.Rows)
	return table, st, nil
}

func zeroIfUndefined(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// formatFloat renders floats the same way on every run.
func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
