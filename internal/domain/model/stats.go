package model

// CountingStat describes a per-game counting stat that can be rolled.
type CountingStat struct {
	Column string
	Value  func(r *GameTeamRecord) float64
}

var countingStats = []CountingStat{ //nolint:gochecknoglobals // fixed registry of rollable columns
	{Column: "b_r", Value: func(r *GameTeamRecord) float64 { return r.RunsScored }},
	{Column: "b_h", Value: func(r *GameTeamRecord) float64 { return r.Hits }},
	{Column: "b_hr", Value: func(r *GameTeamRecord) float64 { return r.HomeRuns }},
	{Column: "p_r", Value: func(r *GameTeamRecord) float64 { return r.RunsAllowed }},
	{Column: "p_h", Value: func(r *GameTeamRecord) float64 { return r.HitsAllowed }},
	{Column: "d_e", Value: func(r *GameTeamRecord) float64 { return r.Errors }},
}

// DefaultRollStats lists the columns rolled when configuration does not say otherwise.
func DefaultRollStats() []string {
	cols := make([]string, len(countingStats))
	for i, s := range countingStats {
		cols[i] = s.Column
	}
	return cols
}

// LookupStat finds a counting stat by source column name.
func LookupStat(column string) (CountingStat, bool) {
	for _, s := range countingStats {
		if s.Column == column {
			return s, true
		}
	}
	return CountingStat{}, false
}

// ResolveStats maps column names to counting stats, reporting the first unknown name.
func ResolveStats(columns []string) ([]CountingStat, string, bool) {
	out := make([]CountingStat, 0, len(columns))
	for _, c := range columns {
		s, ok := LookupStat(c)
		if !ok {
			return nil, c, false
		}
		out = append(out, s)
	}
	return out, "", true
}
