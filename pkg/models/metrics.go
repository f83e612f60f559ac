package models

import (
	"github.com/shopspring/decimal"
)

// Quarter labels used as QuarterlySeries keys and in period column labels
// like "2024.1Q". All four are always present in a series.
var QuarterLabels = []string{"1Q", "2Q", "3Q", "4Q"}

// MetricTriple carries the three canonical metrics for one period.
// Each field is independently optional: a nil pointer means the value is
// absent (no account matched, unparseable amount, or underivable), which is
// never an error condition.
type MetricTriple struct {
	Revenue         *decimal.Decimal `json:"revenue"`
	OperatingProfit *decimal.Decimal `json:"operating_profit"`
	NetIncome       *decimal.Decimal `json:"net_income"`
}

// Sub returns m - o component-wise. A nil operand on either side makes that
// component nil: a subtraction cannot be trusted with a missing term.
func (m MetricTriple) Sub(o MetricTriple) MetricTriple {
	return MetricTriple{
		Revenue:         subOpt(m.Revenue, o.Revenue),
		OperatingProfit: subOpt(m.OperatingProfit, o.OperatingProfit),
		NetIncome:       subOpt(m.NetIncome, o.NetIncome),
	}
}

// Add returns m + o component-wise with the same nil-propagation rule as Sub.
// Note this is NOT the annual-aggregation sum, which skips absent terms
// instead of propagating them (see derive.AnnualTotal).
func (m MetricTriple) Add(o MetricTriple) MetricTriple {
	return MetricTriple{
		Revenue:         addOpt(m.Revenue, o.Revenue),
		OperatingProfit: addOpt(m.OperatingProfit, o.OperatingProfit),
		NetIncome:       addOpt(m.NetIncome, o.NetIncome),
	}
}

// IsEmpty reports whether all three metrics are absent.
func (m MetricTriple) IsEmpty() bool {
	return m.Revenue == nil && m.OperatingProfit == nil && m.NetIncome == nil
}

func subOpt(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Sub(*b)
	return &d
}

func addOpt(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Add(*b)
	return &d
}

// Dec is a literal helper for building metric values in fixtures and
// defaults: Dec("150") -> *decimal.Decimal. Panics on bad input, so it is
// only for trusted literals.
func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// QuarterlySeries holds the derived non-overlapping quarterly metrics for
// one entity and fiscal year. All four quarter keys are always present;
// an underivable quarter maps to an all-nil triple.
type QuarterlySeries struct {
	CorpName string                  `json:"corp_name"`
	Quarters map[string]MetricTriple `json:"metrics_by_quarter"`
}

// NewQuarterlySeries returns a series with all four quarters initialized
// to absent triples.
func NewQuarterlySeries(corpName string) QuarterlySeries {
	q := make(map[string]MetricTriple, len(QuarterLabels))
	for _, label := range QuarterLabels {
		q[label] = MetricTriple{}
	}
	return QuarterlySeries{CorpName: corpName, Quarters: q}
}
