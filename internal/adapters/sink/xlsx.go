package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/pkg/logger"
)

// SheetName is the worksheet holding the matchup table.
const SheetName = "matchups"

// XLSXWriter writes the table to a single worksheet.
type XLSXWriter struct {
	path string
	log  logger.Logger
}

// NewXLSXWriter creates an XLSX writer for path.
func NewXLSXWriter(path string, log logger.Logger) *XLSXWriter {
	return &XLSXWriter{path: path, log: log}
}

// Write saves the workbook, with number columns stored as numeric cells.
func (w *XLSXWriter) Write(ctx context.Context, table *model.MatchupTable) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet stream: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range table.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, typedRow(table.Kinds, r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}

	w.log.Info(ctx, "matchup workbook written",
		logger.String("path", w.path), logger.Int("rows", len(table.Rows)))
	return nil
}

// typedRow converts number cells to float64; cells that do not parse stay text.
func typedRow(kinds []model.ColumnKind, cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
		if kinds[i] != model.KindNumber {
			continue
		}
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			out[i] = v
		}
	}
	return out
}
