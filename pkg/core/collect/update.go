package collect

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dart_collector/pkg/core/reconcile"
	"dart_collector/pkg/models"
)

// WorkbookStore reads and writes the sheet-name -> matrix workbook.
// Implemented by store.ExcelStore.
type WorkbookStore interface {
	Read(path string) (map[string]*reconcile.Matrix, error)
	Write(path string, sheets map[string]*reconcile.Matrix) error
}

// Updater fills missing (entity, period) cells of an existing workbook
// without disturbing values already present.
type Updater struct {
	collector *Collector
	store     WorkbookStore
}

func NewUpdater(collector *Collector, store WorkbookStore) *Updater {
	return &Updater{collector: collector, store: store}
}

// UpdateMissing finds entities whose target-quarter cell is empty, collects
// the whole target year for each, and merges the fresh values in with
// existing cells always winning. Budget exhaustion stops collection but the
// partial results are still merged and saved.
func (u *Updater) UpdateMissing(ctx context.Context, path string, year, quarter int, backup bool) error {
	if quarter < 1 || quarter > 4 {
		return fmt.Errorf("quarter must be 1-4, got %d", quarter)
	}
	period := fmt.Sprintf("%d.%dQ", year, quarter)
	fmt.Printf("[update] incremental update for %s (%s)\n", period, path)

	if backup {
		backupPath, err := backupFile(path)
		if err != nil {
			fmt.Printf("[update] WARNING: backup failed: %v\n", err)
		} else {
			fmt.Printf("[update] backup written: %s\n", backupPath)
		}
	}

	existing, err := u.store.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}

	// Gap detection keys off the quarterly revenue sheet: an entity in the
	// workbook is a row there even when every metric is missing.
	revenue, ok := existing[SheetRevenueQuarterly]
	if !ok {
		fmt.Printf("[update] WARNING: sheet %q not found, nothing to update\n", SheetRevenueQuarterly)
		return nil
	}

	missing := reconcile.FindMissing(revenue, period)
	if len(missing) == 0 {
		fmt.Printf("[update] no missing data for %s\n", period)
		return nil
	}
	fmt.Printf("[update] %d entities missing %s\n", len(missing), period)

	fresh := u.collectMissing(ctx, missing, year)

	merged := make(map[string]*reconcile.Matrix, len(existing))
	for sheet, matrix := range existing {
		if f, ok := fresh[sheet]; ok && isQuarterlySheet(sheet) {
			merged[sheet] = reconcile.Merge(matrix, f)
		} else {
			merged[sheet] = matrix
		}
	}

	if err := u.store.Write(path, merged); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	fmt.Printf("[update] done: %d/%d calls used\n", u.collector.Calls(), u.collector.Budget())
	return nil
}

// collectMissing gathers the full target year for each missing entity,
// stopping early when the call budget runs out. Whatever was collected
// before the stop is returned for merging: partial success, not failure.
func (u *Updater) collectMissing(ctx context.Context, names []string, year int) map[string]*reconcile.Matrix {
	sheets := newSheetSet(QuarterlySheets)

	for i, name := range names {
		if u.collector.exhausted() {
			fmt.Printf("[update] WARNING: call budget reached (%d/%d), saving partial results\n",
				u.collector.Calls(), u.collector.Budget())
			break
		}

		code, err := u.collector.resolver.Resolve(name)
		if err != nil {
			fmt.Printf("[update] corp code lookup failed for %s: %v\n", name, err)
			continue
		}
		if code == "" {
			fmt.Printf("[update] corp code not found: %s\n", name)
			continue
		}

		fmt.Printf("[update] [%d/%d] %s (calls: %d)\n", i+1, len(names), name, u.collector.Calls())
		series := u.collector.collectYear(ctx, code, year)
		appendQuarterly(sheets, name, year, series)
	}
	return sheets
}

// appendQuarterly is appendSeries without the annual sheets: the
// incremental updater only amends quarterly data.
func appendQuarterly(sheets map[string]*reconcile.Matrix, name string, year int, series models.QuarterlySeries) {
	for _, label := range models.QuarterLabels {
		period := fmt.Sprintf("%d.%s", year, label)
		q := series.Quarters[label]
		setCell(sheets[SheetRevenueQuarterly], name, period, q.Revenue)
		setCell(sheets[SheetOpProfitQuarterly], name, period, q.OperatingProfit)
		setCell(sheets[SheetNetIncomeQuarterly], name, period, q.NetIncome)
	}
}

func isQuarterlySheet(name string) bool {
	for _, s := range QuarterlySheets {
		if s == name {
			return true
		}
	}
	return false
}

// backupFile copies the workbook next to itself with a timestamp suffix.
func backupFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	stamp := time.Now().Format("20060102_150405")
	backupPath := strings.TrimSuffix(path, ".xlsx") + "_backup_" + stamp + ".xlsx"
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return backupPath, nil
}
