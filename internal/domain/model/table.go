package model

// ColumnKind tells writers how to type a column.
type ColumnKind int

// Column kinds.
const (
	KindText ColumnKind = iota
	KindNumber
)

// MergedRow is one team-game with every output cell already formatted.
type MergedRow struct {
	GameID string
	Site   string
	Cells  []string
}

// MergedTable is the per-team-game table handed to the pivot.
type MergedTable struct {
	Columns []string
	Kinds   []ColumnKind
	Rows    []MergedRow
}

// MatchupTable is the final one-row-per-game table.
type MatchupTable struct {
	Columns []string
	Kinds   []ColumnKind
	Rows    [][]string
}

// Index returns the position of a column or -1.
func (t *MatchupTable) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the cell of row i in the named column, or "" if the column is unknown.
func (t *MatchupTable) Value(i int, column string) string {
	j := t.Index(column)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][j]
}
