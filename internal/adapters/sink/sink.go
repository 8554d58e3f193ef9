// Package sink persists the matchup table.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/pkg/logger"
)

// Output formats.
const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatPostgres = "postgres"
)

// Writer persists a complete matchup table, replacing any previous output.
type Writer interface {
	Write(ctx context.Context, table *model.MatchupTable) error
}

// New returns the writer for a format.
func New(format string, opts ...Option) (Writer, error) {
	s := &settings{table: "matchups"}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("sink")
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return &CSVWriter{path: s.path, log: s.log}, nil
	case FormatXLSX:
		return &XLSXWriter{path: s.path, log: s.log}, nil
	case FormatPostgres:
		return &PostgresWriter{dsn: s.dsn, table: s.table, log: s.log}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func checkTable(t *model.MatchupTable) error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidTable)
	}
	if len(t.Kinds) != len(t.Columns) {
		return fmt.Errorf("%w: %d kinds for %d columns", ErrInvalidTable, len(t.Kinds), len(t.Columns))
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidTable, i, len(r), len(t.Columns))
		}
	}
	return nil
}
