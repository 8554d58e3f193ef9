package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/pkg/logger"
)

// CSVWriter writes the table as a header row followed by data rows.
type CSVWriter struct {
	path string
	log  logger.Logger
}

// NewCSVWriter creates a CSV writer for path.
func NewCSVWriter(path string, log logger.Logger) *CSVWriter {
	return &CSVWriter{path: path, log: log}
}

// Write replaces the file atomically by writing a sibling temp file and renaming it.
func (w *CSVWriter) Write(ctx context.Context, table *model.MatchupTable) error {
	if err := checkTable(table); err != nil {
		return err
	}
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := writeCSV(ctx, tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}

	w.log.Info(ctx, "matchup csv written",
		logger.String("path", w.path), logger.Int("rows", len(table.Rows)), logger.Int("columns", len(table.Columns)))
	return nil
}

func writeCSV(ctx context.Context, f *os.File, table *model.MatchupTable) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range table.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
