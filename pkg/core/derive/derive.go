// Package derive turns up to four period statements for one entity/year
// into non-overlapping quarterly metrics plus an annual total.
//
// Whether a report is year-to-date cumulative or standalone is decided
// solely by the statement's IsCumulative flag, never by comparing
// magnitudes. The four quarters are spelled out case by case on purpose:
// each branch is individually auditable against the reporting rules.
package derive

import (
	"github.com/shopspring/decimal"

	"dart_collector/pkg/core/extract"
	"dart_collector/pkg/models"
)

// Engine derives quarterly series from statements.
type Engine struct {
	extractor *extract.Extractor
}

func New(extractor *extract.Extractor) *Engine {
	return &Engine{extractor: extractor}
}

// Quarters computes the 1Q..4Q metric triples for one entity and fiscal
// year. Any statement may be nil; a quarter that cannot be derived is an
// all-absent triple, never an error.
//
//	1Q = q1 verbatim
//	2Q = h1 - q1           when h1 is cumulative and q1 present, else h1
//	3Q = q3 - h1           when q3 is cumulative and h1 present, else q3
//	4Q = annual - cumulative-through-Q3
func (e *Engine) Quarters(q1, h1, q3, annual *models.PeriodStatement) models.QuarterlySeries {
	q1m := e.extractor.Metrics(q1)
	h1m := e.extractor.Metrics(h1)
	q3m := e.extractor.Metrics(q3)
	annualm := e.extractor.Metrics(annual)

	series := models.NewQuarterlySeries(firstCorpName(q1, h1, q3, annual))

	// 1Q: the first-quarter report is already a standalone period.
	series.Quarters["1Q"] = q1m

	// 2Q: the half-year report is normally cumulative (Jan 1 - Jun 30) and
	// needs Q1 subtracted; a standalone half (rare) is used as-is, as is a
	// cumulative half when no Q1 report exists to subtract.
	switch {
	case h1 == nil:
		series.Quarters["2Q"] = models.MetricTriple{}
	case h1.IsCumulative && q1 != nil:
		series.Quarters["2Q"] = h1m.Sub(q1m)
	default:
		series.Quarters["2Q"] = h1m
	}

	// 3Q: cumulative third-quarter report minus the cumulative half; a
	// standalone Q3 report is used as-is.
	switch {
	case q3 == nil:
		series.Quarters["3Q"] = models.MetricTriple{}
	case q3.IsCumulative && h1 != nil:
		series.Quarters["3Q"] = q3m.Sub(h1m)
	default:
		series.Quarters["3Q"] = q3m
	}

	// 4Q: annual total minus the nine-month cumulative.
	cumQ3, ok := cumulativeThroughQ3(h1, q3, h1m, q3m)
	if annual != nil && ok {
		series.Quarters["4Q"] = annualm.Sub(cumQ3)
	} else {
		series.Quarters["4Q"] = models.MetricTriple{}
	}

	return series
}

// cumulativeThroughQ3 reconstructs the Jan 1 - Sep 30 cumulative figures.
// A cumulative Q3 report already is that figure; a standalone Q3 report is
// added onto the cumulative half-year. With neither combination available
// the nine-month cumulative is unknowable.
func cumulativeThroughQ3(h1, q3 *models.PeriodStatement, h1m, q3m models.MetricTriple) (models.MetricTriple, bool) {
	if q3 != nil && q3.IsCumulative {
		return q3m, true
	}
	if h1 != nil && q3 != nil {
		return h1m.Add(q3m), true
	}
	return models.MetricTriple{}, false
}

// AnnualTotal sums the four derived quarters per metric. Unlike quarter
// subtraction, an absent term is skipped rather than poisoning the sum:
// three present quarters still produce a three-quarter total, and only a
// metric absent in all four quarters stays absent. The annual figure is a
// distinct derivation - it is never the annual statement's raw total.
func AnnualTotal(series models.QuarterlySeries) models.MetricTriple {
	var total models.MetricTriple
	for _, label := range models.QuarterLabels {
		q := series.Quarters[label]
		total.Revenue = sumSkipAbsent(total.Revenue, q.Revenue)
		total.OperatingProfit = sumSkipAbsent(total.OperatingProfit, q.OperatingProfit)
		total.NetIncome = sumSkipAbsent(total.NetIncome, q.NetIncome)
	}
	return total
}

func sumSkipAbsent(acc, term *decimal.Decimal) *decimal.Decimal {
	if term == nil {
		return acc
	}
	if acc == nil {
		v := *term
		return &v
	}
	v := acc.Add(*term)
	return &v
}

func firstCorpName(stmts ...*models.PeriodStatement) string {
	for _, s := range stmts {
		if s != nil {
			return s.CorpName
		}
	}
	return ""
}
