// Package extract builds canonical metric records from raw statements.
package extract

import (
	"dart_collector/pkg/core/config"
	"dart_collector/pkg/core/match"
	"dart_collector/pkg/models"
)

// Extractor applies the configured keyword lists across a statement's line
// items. It is pure: no state beyond the keyword configuration captured at
// construction.
type Extractor struct {
	keywords config.Keywords
}

func New(keywords config.Keywords) *Extractor {
	return &Extractor{keywords: keywords}
}

// Metrics resolves revenue, operating profit and net income from the
// statement. A nil statement yields an all-absent triple.
func (e *Extractor) Metrics(stmt *models.PeriodStatement) models.MetricTriple {
	if stmt == nil {
		return models.MetricTriple{}
	}
	return models.MetricTriple{
		Revenue:         match.FindValue(stmt.LineItems, e.keywords.Revenue),
		OperatingProfit: match.FindValue(stmt.LineItems, e.keywords.OperatingProfit),
		NetIncome:       match.FindValue(stmt.LineItems, e.keywords.NetIncome),
	}
}
