// Package collect drives statement retrieval per entity and year under a
// hard call-count ceiling and shapes the derived metrics into the result
// matrices the persistence layer consumes.
//
// Execution is strictly sequential: one entity, one year, one period kind
// at a time. The budget accounting depends on that; do not pipeline.
package collect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dart_collector/pkg/core/derive"
	"dart_collector/pkg/core/reconcile"
	"dart_collector/pkg/models"
)

// Result sheet names, matching the workbook layout: the three canonical
// metrics at quarterly and annual granularity.
const (
	SheetRevenueQuarterly   = "매출액_분기"
	SheetOpProfitQuarterly  = "영업이익_분기"
	SheetNetIncomeQuarterly = "당기순이익_분기"
	SheetRevenueAnnual      = "매출액_연간"
	SheetOpProfitAnnual     = "영업이익_연간"
	SheetNetIncomeAnnual    = "당기순이익_연간"
)

// QuarterlySheets lists the sheets the incremental updater touches.
var QuarterlySheets = []string{SheetRevenueQuarterly, SheetOpProfitQuarterly, SheetNetIncomeQuarterly}

// AllSheets lists every sheet family a full collection produces.
var AllSheets = []string{
	SheetRevenueQuarterly, SheetOpProfitQuarterly, SheetNetIncomeQuarterly,
	SheetRevenueAnnual, SheetOpProfitAnnual, SheetNetIncomeAnnual,
}

// DefaultMaxCalls is the per-run retrieval budget, a little under the DART
// daily limit of 10,000 requests per key.
const DefaultMaxCalls = 9950

// StatementSource retrieves one periodic report, nil when unavailable for
// any reason. Implemented by dart.Client.
type StatementSource interface {
	GetStatement(ctx context.Context, corpCode string, year int, kind models.ReportKind, preferConsolidated bool) *models.PeriodStatement
}

// CodeResolver maps entity names to corp codes; "" means unknown.
// Implemented by dart.CorpCodeResolver.
type CodeResolver interface {
	Resolve(name string) (string, error)
	ResolveAll(names []string) ([]string, error)
}

// kindForQuarter maps a quarter number to the report that covers it.
var kindForQuarter = map[int]models.ReportKind{
	1: models.ReportQ1,
	2: models.ReportSemiAnnual,
	3: models.ReportQ3,
	4: models.ReportAnnual,
}

// unitDivisor converts raw ₩ amounts to ₩ millions for the result sheets.
var unitDivisor = decimal.NewFromInt(1_000_000)

// RunSummary describes one collection run.
type RunSummary struct {
	RunID     string
	Processed int
	Skipped   int
	Calls     int
	Exhausted bool
}

// Collector is the budgeted collection loop. Not safe for concurrent use;
// the call counter and accumulating results are owned by one run at a time.
type Collector struct {
	resolver CodeResolver
	source   StatementSource
	engine   *derive.Engine

	preferConsolidated bool
	maxCalls           int
	calls              int
}

func NewCollector(resolver CodeResolver, source StatementSource, engine *derive.Engine, maxCalls int) *Collector {
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	return &Collector{
		resolver:           resolver,
		source:             source,
		engine:             engine,
		preferConsolidated: true,
		maxCalls:           maxCalls,
	}
}

// Calls returns the number of attempted retrievals so far. Cache hits
// count too: the overcount is the conservative side of the budget.
func (c *Collector) Calls() int { return c.calls }

// Budget returns the configured ceiling.
func (c *Collector) Budget() int { return c.maxCalls }

// exhausted reports whether the ceiling has been reached.
func (c *Collector) exhausted() bool { return c.calls >= c.maxCalls }

// CollectRange fetches and derives metrics for every entity over
// [startYear, endYear] and returns the six result matrices. The ceiling is
// checked before each entity; once hit, the run stops entirely and the
// partial matrices are returned as a success.
func (c *Collector) CollectRange(ctx context.Context, names []string, startYear, endYear int) (map[string]*reconcile.Matrix, RunSummary) {
	summary := RunSummary{RunID: uuid.NewString()}
	sheets := newSheetSet(AllSheets)

	codes, err := c.resolver.ResolveAll(names)
	if err != nil {
		fmt.Printf("[collect] corp code resolution failed: %v\n", err)
		summary.Skipped = len(names)
		return sheets, summary
	}

	fmt.Printf("[collect] run %s: %d entities, years %d-%d, budget %d calls\n",
		summary.RunID, len(names), startYear, endYear, c.maxCalls)

	for i, name := range names {
		code := codes[i]
		if code == "" {
			fmt.Printf("[collect] corp code not found: %s\n", name)
			summary.Skipped++
			continue
		}
		if c.exhausted() {
			fmt.Printf("[collect] WARNING: call budget reached (%d/%d), stopping with partial results\n", c.calls, c.maxCalls)
			summary.Exhausted = true
			summary.Skipped += len(names) - i
			break
		}

		fmt.Printf("[collect] [%d/%d] %s (%s)\n", i+1, len(names), name, code)
		for year := startYear; year <= endYear; year++ {
			series := c.collectYear(ctx, code, year)
			appendSeries(sheets, name, year, series)
		}
		summary.Processed++
	}

	summary.Calls = c.calls
	fmt.Printf("[collect] run %s done: %d processed, %d skipped, %d calls\n",
		summary.RunID, summary.Processed, summary.Skipped, summary.Calls)
	return sheets, summary
}

// CollectYear fetches the four reports for one entity/year and derives the
// quarterly series. Every attempted retrieval increments the call counter.
func (c *Collector) CollectYear(ctx context.Context, corpCode string, year int) models.QuarterlySeries {
	return c.collectYear(ctx, corpCode, year)
}

func (c *Collector) collectYear(ctx context.Context, corpCode string, year int) models.QuarterlySeries {
	stmts := make([]*models.PeriodStatement, 0, 4)
	for q := 1; q <= 4; q++ {
		c.calls++
		stmts = append(stmts, c.source.GetStatement(ctx, corpCode, year, kindForQuarter[q], c.preferConsolidated))
	}
	return c.engine.Quarters(stmts[0], stmts[1], stmts[2], stmts[3])
}

func newSheetSet(names []string) map[string]*reconcile.Matrix {
	sheets := make(map[string]*reconcile.Matrix, len(names))
	for _, name := range names {
		sheets[name] = reconcile.NewMatrix()
	}
	return sheets
}

// appendSeries writes one entity-year series into the quarterly sheets and
// its annual total into the annual sheets. Values are stored in ₩ millions.
func appendSeries(sheets map[string]*reconcile.Matrix, name string, year int, series models.QuarterlySeries) {
	for _, label := range models.QuarterLabels {
		period := fmt.Sprintf("%d.%s", year, label)
		q := series.Quarters[label]
		setCell(sheets[SheetRevenueQuarterly], name, period, q.Revenue)
		setCell(sheets[SheetOpProfitQuarterly], name, period, q.OperatingProfit)
		setCell(sheets[SheetNetIncomeQuarterly], name, period, q.NetIncome)
	}

	total := derive.AnnualTotal(series)
	yearLabel := fmt.Sprintf("%d", year)
	setCell(sheets[SheetRevenueAnnual], name, yearLabel, total.Revenue)
	setCell(sheets[SheetOpProfitAnnual], name, yearLabel, total.OperatingProfit)
	setCell(sheets[SheetNetIncomeAnnual], name, yearLabel, total.NetIncome)
}

func setCell(m *reconcile.Matrix, entity, period string, v *decimal.Decimal) {
	if m == nil {
		return
	}
	if v == nil {
		m.Set(entity, period, nil)
		return
	}
	millions := v.Div(unitDivisor).Round(0)
	m.Set(entity, period, &millions)
}
