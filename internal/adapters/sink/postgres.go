package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/pkg/logger"
)

// PostgresWriter replaces a table with the matchup rows using COPY.
type PostgresWriter struct {
	dsn   string
	table string
	log   logger.Logger
}

// NewPostgresWriter creates a writer for the given connection string and table.
func NewPostgresWriter(dsn, table string, log logger.Logger) *PostgresWriter {
	return &PostgresWriter{dsn: dsn, table: table, log: log}
}

// Write drops, recreates and fills the table in one transaction.
func (w *PostgresWriter) Write(ctx context.Context, table *model.MatchupTable) error {
	if err := checkTable(table); err != nil {
		return err
	}
	db, err := connect(ctx, w.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, dropTableSQL(w.table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(w.table, table.Columns, table.Kinds)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(w.table, table.Columns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for i, r := range table.Rows {
		if _, err := stmt.ExecContext(ctx, copyValues(table.Kinds, r)...); err != nil {
			stmt.Close()
			return fmt.Errorf("copy record %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	w.log.Info(ctx, "matchup table loaded",
		logger.String("table", w.table), logger.Int("rows", len(table.Rows)))
	return nil
}

func connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func dropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(table)
}

func createTableSQL(table string, columns []string, kinds []model.ColumnKind) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(pq.QuoteIdentifier(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pq.QuoteIdentifier(c))
		if kinds[i] == model.KindNumber {
			b.WriteString(" DOUBLE PRECISION")
		} else {
			b.WriteString(" TEXT")
		}
	}
	b.WriteString(")")
	return b.String()
}

// copyValues types number cells as float64; blank or unparseable ones are NULL.
func copyValues(kinds []model.ColumnKind, cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		if kinds[i] != model.KindNumber {
			out[i] = c
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			out[i] = nil
			continue
		}
		out[i] = v
	}
	return out
}
