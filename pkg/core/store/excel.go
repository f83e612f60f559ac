// Package store persists the result matrices: an Excel workbook adapter
// and an optional Postgres connection pool for the statement cache.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"dart_collector/pkg/core/reconcile"
)

// ExcelStore reads and writes sheet-name -> matrix workbooks. Each sheet
// is an entity-row x period-column table: header row holds the period
// labels, column A the entity names, and empty cells are the missing
// sentinel.
type ExcelStore struct{}

func NewExcelStore() *ExcelStore {
	return &ExcelStore{}
}

// Write saves every matrix as its own sheet, rows lexicographic and
// columns chronological, with best-fit column widths. The parent
// directory is created when absent.
func (s *ExcelStore) Write(path string, sheets map[string]*reconcile.Matrix) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, name := range sheetOrder(sheets) {
		matrix := sheets[name]
		index, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if first {
			f.DeleteSheet("Sheet1")
			f.SetActiveSheet(index)
			first = false
		}
		if err := writeSheet(f, name, matrix); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Read loads every sheet of the workbook into a matrix. Cells that do not
// parse as numbers read back as the missing sentinel.
func (s *ExcelStore) Read(path string) (map[string]*reconcile.Matrix, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := make(map[string]*reconcile.Matrix)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets[name] = readSheet(rows)
	}
	return sheets, nil
}

func writeSheet(f *excelize.File, name string, matrix *reconcile.Matrix) error {
	entities := matrix.Entities()
	periods := matrix.Periods()

	widths := make([]int, len(periods)+1)
	for _, e := range entities {
		widths[0] = max(widths[0], utf8.RuneCountInString(e))
	}

	for c, period := range periods {
		cell, err := excelize.CoordinatesToCellName(c+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, period); err != nil {
			return err
		}
		widths[c+1] = max(widths[c+1], utf8.RuneCountInString(period))
	}

	for r, entity := range entities {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, entity); err != nil {
			return err
		}
		for c, period := range periods {
			v := matrix.Get(entity, period)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+2, r+2)
			if err != nil {
				return err
			}
			fv, _ := v.Float64()
			if err := f.SetCellValue(name, cell, fv); err != nil {
				return err
			}
			widths[c+1] = max(widths[c+1], len(v.String()))
		}
	}

	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(w+2)); err != nil {
			return err
		}
	}
	return nil
}

func readSheet(rows [][]string) *reconcile.Matrix {
	m := reconcile.NewMatrix()
	if len(rows) == 0 {
		return m
	}

	header := rows[0]
	for c := 1; c < len(header); c++ {
		if header[c] != "" {
			m.AddPeriod(header[c])
		}
	}

	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		entity := row[0]
		m.AddEntity(entity)
		for c := 1; c < len(row) && c < len(header); c++ {
			label := header[c]
			if label == "" || row[c] == "" {
				continue
			}
			if d, err := decimal.NewFromString(row[c]); err == nil {
				m.Set(entity, label, &d)
			}
		}
	}
	return m
}

func sheetOrder(sheets map[string]*reconcile.Matrix) []string {
	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	// Stable workbook layout run to run.
	sort.Strings(names)
	return names
}
