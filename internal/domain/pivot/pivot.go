// Package pivot turns per-team rows into one home-versus-visitor row per game.
package pivot

import (
	"context"

	"github.com/okian/pregame/internal/domain/model"
)

// Column prefixes for each side of a matchup.
const (
	HomePrefix    = "home_"
	VisitorPrefix = "vis_"
)

// Stats counts games that could not be paired.
type Stats struct {
	HomeRows      int
	VisitorRows   int
	UnmatchedGIDs int
}

// Pivot splits merged rows by site and inner-joins them on game id. Rows come
// out in the order of the home rows. Game ids present on one side only are
// dropped and counted.
func Pivot(ctx context.Context, merged *model.MergedTable) (*model.MatchupTable, Stats, error) {
	var st Stats
	if err := ctx.Err(); err != nil {
		return nil, st, err
	}

	var home []*model.MergedRow
	visitors := make(map[string][]*model.MergedRow)
	homeIDs := make(map[string]bool)
	for i := range merged.Rows {
		r := &merged.Rows[i]
		switch r.Site {
		case model.SiteHome:
			home = append(home, r)
			homeIDs[r.GameID] = true
		case model.SiteVisitor:
			visitors[r.GameID] = append(visitors[r.GameID], r)
			st.VisitorRows++
		}
	}
	st.HomeRows = len(home)

	width := len(merged.Columns)
	out := &model.MatchupTable{
		Columns: make([]string, 0, 2*width),
		Kinds:   make([]model.ColumnKind, 0, 2*width),
	}
	for _, prefix := range []string{HomePrefix, VisitorPrefix} {
		for i, c := range merged.Columns {
			out.Columns = append(out.Columns, prefix+c)
			out.Kinds = append(out.Kinds, merged.Kinds[i])
		}
	}

	unmatched := make(map[string]bool)
	for _, h := range home {
		vs, ok := visitors[h.GameID]
		if !ok {
			unmatched[h.GameID] = true
			continue
		}
		for _, v := range vs {
			row := make([]string, 0, 2*width)
			row = append(row, h.Cells...)
			row = append(row, v.Cells...)
			out.Rows = append(out.Rows, row)
		}
	}
	for gid := range visitors {
		if !homeIDs[gid] {
			unmatched[gid] = true
		}
	}
	st.UnmatchedGIDs = len(unmatched)

	if len(out.Rows) == 0 {
		return nil, st, ErrEmptyResult
	}
	return out, st, nil
}
