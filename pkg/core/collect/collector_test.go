package collect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dart_collector/pkg/core/config"
	"dart_collector/pkg/core/derive"
	"dart_collector/pkg/core/extract"
	"dart_collector/pkg/models"
)

type fakeResolver struct {
	codes map[string]string
}

func (r *fakeResolver) Resolve(name string) (string, error) {
	return r.codes[name], nil
}

func (r *fakeResolver) ResolveAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = r.codes[n]
	}
	return out, nil
}

type fakeSource struct {
	statements map[string]*models.PeriodStatement // key corp/year/kind
	requests   int
}

func sourceKey(corp string, year int, kind models.ReportKind) string {
	return fmt.Sprintf("%s/%d/%s", corp, year, kind)
}

func (s *fakeSource) GetStatement(_ context.Context, corp string, year int, kind models.ReportKind, _ bool) *models.PeriodStatement {
	s.requests++
	return s.statements[sourceKey(corp, year, kind)]
}

// addYear populates a full cumulative-report year: Q1=q1, H1=h1, Q3=q3,
// Annual=annual, revenue only, amounts in raw won.
func (s *fakeSource) addYear(corp string, year int, q1, h1, q3, annual string) {
	if s.statements == nil {
		s.statements = make(map[string]*models.PeriodStatement)
	}
	add := func(kind models.ReportKind, amount string) {
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		s.statements[sourceKey(corp, year, kind)] = &models.PeriodStatement{
			CorpCode:     corp,
			CorpName:     "기업" + corp,
			FiscalYear:   year,
			Report:       kind,
			IsCumulative: true,
			PeriodStart:  &start,
			LineItems: []models.AccountLineItem{
				{Name: "매출액", RawAmount: amount},
			},
		}
	}
	add(models.ReportQ1, q1)
	add(models.ReportSemiAnnual, h1)
	add(models.ReportQ3, q3)
	add(models.ReportAnnual, annual)
}

func newTestCollector(resolver *fakeResolver, source *fakeSource, maxCalls int) *Collector {
	engine := derive.New(extract.New(config.DefaultKeywords()))
	return NewCollector(resolver, source, engine, maxCalls)
}

func TestCollectRangeDerivesSheets(t *testing.T) {
	resolver := &fakeResolver{codes: map[string]string{"삼성전자": "00126380"}}
	source := &fakeSource{}
	// Raw won; sheets hold millions.
	source.addYear("00126380", 2024, "100000000", "250000000", "450000000", "800000000")

	c := newTestCollector(resolver, source, 0)
	sheets, summary := c.CollectRange(context.Background(), []string{"삼성전자"}, 2024, 2024)

	if summary.Processed != 1 || summary.Skipped != 0 || summary.Exhausted {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Calls != 4 {
		t.Errorf("calls = %d, want 4 (one per period kind)", summary.Calls)
	}

	rev := sheets[SheetRevenueQuarterly]
	for period, want := range map[string]string{
		"2024.1Q": "100", "2024.2Q": "150", "2024.3Q": "200", "2024.4Q": "350",
	} {
		got := rev.Get("삼성전자", period)
		if got == nil || !got.Equal(*models.Dec(want)) {
			t.Errorf("%s = %v, want %s (millions)", period, got, want)
		}
	}

	annual := sheets[SheetRevenueAnnual].Get("삼성전자", "2024")
	if annual == nil || !annual.Equal(*models.Dec("800")) {
		t.Errorf("annual = %v, want 800 (sum of quarters)", annual)
	}
}

func TestCollectRangeBudgetStopsBeforeNextEntity(t *testing.T) {
	resolver := &fakeResolver{codes: map[string]string{
		"삼성전자": "00126380",
		"현대차":  "00164742",
		"카카오":  "00258801",
	}}
	source := &fakeSource{}
	source.addYear("00126380", 2024, "100000000", "250000000", "450000000", "800000000")
	source.addYear("00164742", 2024, "100000000", "250000000", "450000000", "800000000")
	source.addYear("00258801", 2024, "100000000", "250000000", "450000000", "800000000")

	// Budget of 4: the first entity consumes it; the second never starts.
	c := newTestCollector(resolver, source, 4)
	sheets, summary := c.CollectRange(context.Background(), []string{"삼성전자", "현대차", "카카오"}, 2024, 2024)

	if !summary.Exhausted {
		t.Fatal("budget exhaustion not reported")
	}
	if summary.Processed != 1 || summary.Skipped != 2 {
		t.Fatalf("summary = %+v, want 1 processed / 2 skipped", summary)
	}
	if source.requests != 4 {
		t.Errorf("upstream requests = %d, want 4", source.requests)
	}

	// Partial results survive.
	if v := sheets[SheetRevenueQuarterly].Get("삼성전자", "2024.1Q"); v == nil {
		t.Error("partial results lost on budget stop")
	}
	if v := sheets[SheetRevenueQuarterly].Get("현대차", "2024.1Q"); v != nil {
		t.Error("entity past the ceiling was still collected")
	}
}

func TestCollectRangeCountsAttemptsNotHits(t *testing.T) {
	// Absent statements still consume budget: every attempt counts.
	resolver := &fakeResolver{codes: map[string]string{"삼성전자": "00126380"}}
	source := &fakeSource{} // serves nothing

	c := newTestCollector(resolver, source, 0)
	sheets, summary := c.CollectRange(context.Background(), []string{"삼성전자"}, 2023, 2024)

	if summary.Calls != 8 {
		t.Errorf("calls = %d, want 8 (4 kinds x 2 years)", summary.Calls)
	}
	// All-absent quarters still register the entity row with empty cells.
	if v := sheets[SheetRevenueQuarterly].Get("삼성전자", "2023.1Q"); v != nil {
		t.Errorf("absent statement produced value %v", v)
	}
}

func TestCollectRangeUnknownEntitySkipped(t *testing.T) {
	resolver := &fakeResolver{codes: map[string]string{"삼성전자": "00126380"}}
	source := &fakeSource{}
	source.addYear("00126380", 2024, "100000000", "250000000", "450000000", "800000000")

	c := newTestCollector(resolver, source, 0)
	_, summary := c.CollectRange(context.Background(), []string{"없는회사", "삼성전자"}, 2024, 2024)

	if summary.Processed != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.RunID == "" {
		t.Error("run id missing")
	}
}
