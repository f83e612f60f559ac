package dart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dart_collector/pkg/models"
)

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func TestParseStatementCumulative(t *testing.T) {
	resp := &apiResponse{
		Status: "000",
		List: []apiAccountRow{
			{CorpName: "삼성전자", AccountNm: "매출액", Amount: "1,000,000", PeriodDt: "2023.01.01 ~ 2023.09.30"},
			{CorpName: "삼성전자", AccountNm: "영업이익", Amount: "100,000", PeriodDt: "2023.01.01 ~ 2023.09.30"},
		},
	}
	stmt := parseStatement(resp, "00126380", 2023, models.ReportQ3, models.Consolidated)
	if stmt == nil {
		t.Fatal("parseStatement returned nil for valid response")
	}
	if stmt.CorpName != "삼성전자" || stmt.FiscalYear != 2023 {
		t.Errorf("header fields wrong: %+v", stmt)
	}
	if len(stmt.LineItems) != 2 || stmt.LineItems[0].Name != "매출액" {
		t.Errorf("line items wrong: %+v", stmt.LineItems)
	}
	if !stmt.IsCumulative {
		t.Error("period starting Jan 1 must be cumulative")
	}
	if stmt.PeriodStart == nil || !stmt.PeriodStart.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("period start = %v", stmt.PeriodStart)
	}
	if stmt.PeriodEnd == nil || !stmt.PeriodEnd.Equal(time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("period end = %v", stmt.PeriodEnd)
	}
}

func TestParseStatementStandalone(t *testing.T) {
	resp := &apiResponse{
		Status: "000",
		List: []apiAccountRow{
			{CorpName: "현대차", AccountNm: "매출액", Amount: "500", PeriodDt: "2023.07.01 ~ 2023.09.30"},
		},
	}
	stmt := parseStatement(resp, "00164742", 2023, models.ReportQ3, models.Consolidated)
	if stmt == nil {
		t.Fatal("parseStatement returned nil")
	}
	if stmt.IsCumulative {
		t.Error("period starting Jul 1 must not be cumulative")
	}
}

func TestParseStatementErrorStatus(t *testing.T) {
	resp := &apiResponse{Status: "013", Message: "조회된 데이타가 없습니다."}
	if stmt := parseStatement(resp, "00126380", 2023, models.ReportQ1, models.Consolidated); stmt != nil {
		t.Fatalf("error status parsed to %+v, want nil", stmt)
	}
}

func TestParseStatementEmptyList(t *testing.T) {
	resp := &apiResponse{Status: "000"}
	if stmt := parseStatement(resp, "00126380", 2023, models.ReportQ1, models.Consolidated); stmt != nil {
		t.Fatalf("empty list parsed to %+v, want nil", stmt)
	}
}

func TestParsePeriodRangeMalformed(t *testing.T) {
	for _, raw := range []string{"", "2023.01.01", "garbage ~ garbage", "2023.13.01 ~ 2023.09.30"} {
		start, end, cumulative := parsePeriodRange(raw, 2023)
		if start != nil || end != nil || cumulative {
			t.Errorf("parsePeriodRange(%q) = (%v,%v,%v), want all-zero", raw, start, end, cumulative)
		}
	}
}

func TestParsePeriodRangePriorYearStartNotCumulative(t *testing.T) {
	// A range starting Jan 1 of a different year is not year-to-date for
	// this fiscal year.
	_, _, cumulative := parsePeriodRange("2022.01.01 ~ 2022.12.31", 2023)
	if cumulative {
		t.Error("prior-year Jan 1 start flagged cumulative")
	}
}

func TestParseCorpCodeXML(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<result>
  <list>
    <corp_code>00126380</corp_code>
    <corp_name>삼성전자</corp_name>
    <stock_code>005930</stock_code>
  </list>
  <list>
    <corp_code>00164742</corp_code>
    <corp_name> 현대자동차 </corp_name>
  </list>
  <list>
    <corp_code></corp_code>
    <corp_name>이름만있는회사</corp_name>
  </list>
</result>`)

	mapping, err := parseCorpCodeXML(data)
	if err != nil {
		t.Fatal(err)
	}
	if mapping["삼성전자"] != "00126380" {
		t.Errorf("삼성전자 -> %q", mapping["삼성전자"])
	}
	if mapping["현대자동차"] != "00164742" {
		t.Errorf("whitespace not trimmed: %q", mapping["현대자동차"])
	}
	if _, ok := mapping["이름만있는회사"]; ok {
		t.Error("entry without corp_code should be skipped")
	}
}

func TestStatementCacheFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewStatementCache(nil, dir)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stmt := &models.PeriodStatement{
		CorpCode:      "00126380",
		CorpName:      "삼성전자",
		FiscalYear:    2024,
		Report:        models.ReportSemiAnnual,
		Consolidation: models.Consolidated,
		LineItems: []models.AccountLineItem{
			{Name: "매출액", RawAmount: "250"},
		},
		PeriodStart:  &start,
		IsCumulative: true,
		FetchedAt:    time.Now().UTC(),
	}
	if err := cache.Put(context.Background(), stmt); err != nil {
		t.Fatal(err)
	}

	got := cache.Get(context.Background(), "00126380", 2024, models.ReportSemiAnnual, models.Consolidated)
	if got == nil {
		t.Fatal("cache miss after put")
	}
	if got.CorpName != "삼성전자" || !got.IsCumulative || len(got.LineItems) != 1 {
		t.Errorf("cached statement corrupted: %+v", got)
	}

	// Different consolidation kind is a distinct key.
	if hit := cache.Get(context.Background(), "00126380", 2024, models.ReportSemiAnnual, models.Separate); hit != nil {
		t.Errorf("separate-kind lookup hit the consolidated entry")
	}
}

func TestStatementCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache := NewStatementCache(nil, dir)

	path := cache.filePath("00126380", 2024, models.ReportQ1, models.Consolidated)
	if err := writeFile(path, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if got := cache.Get(context.Background(), "00126380", 2024, models.ReportQ1, models.Consolidated); got != nil {
		t.Fatalf("corrupt entry returned %+v, want miss", got)
	}
}
