package dart

import (
	"fmt"
	"strings"
	"time"

	"dart_collector/pkg/models"
)

// parseStatement converts a DART API response into a PeriodStatement.
// A non-success status or an empty account list yields nil: the caller
// treats both the same as "unavailable".
func parseStatement(resp *apiResponse, corpCode string, year int, kind models.ReportKind, fs models.ConsolidationKind) *models.PeriodStatement {
	if resp.Status != statusOK {
		if resp.Status != "013" { // 013 = no data, the routine case
			fmt.Printf("[dart] API error status=%s message=%s corp=%s year=%d report=%s fs=%s\n",
				resp.Status, resp.Message, corpCode, year, kind, fs)
		}
		return nil
	}
	if len(resp.List) == 0 {
		return nil
	}

	items := make([]models.AccountLineItem, 0, len(resp.List))
	for _, row := range resp.List {
		items = append(items, models.AccountLineItem{
			Name:      row.AccountNm,
			RawAmount: row.Amount,
		})
	}

	start, end, cumulative := parsePeriodRange(resp.List[0].PeriodDt, year)

	return &models.PeriodStatement{
		CorpCode:      corpCode,
		CorpName:      resp.List[0].CorpName,
		FiscalYear:    year,
		Report:        kind,
		Consolidation: fs,
		LineItems:     items,
		PeriodStart:   start,
		PeriodEnd:     end,
		IsCumulative:  cumulative,
		FetchedAt:     time.Now(),
	}
}

// parsePeriodRange parses the thstrm_dt field, "2023.01.01 ~ 2023.09.30".
// The cumulative flag is set iff the period starts on January 1 of the
// fiscal year; a range that fails to parse leaves both dates nil and the
// flag false.
func parsePeriodRange(raw string, year int) (start, end *time.Time, cumulative bool) {
	parts := strings.Split(raw, "~")
	if len(parts) != 2 {
		return nil, nil, false
	}
	s, err := time.Parse("2006.01.02", strings.TrimSpace(parts[0]))
	if err != nil {
		fmt.Printf("[dart] WARNING: period date parsing failed: %q\n", raw)
		return nil, nil, false
	}
	e, err := time.Parse("2006.01.02", strings.TrimSpace(parts[1]))
	if err != nil {
		fmt.Printf("[dart] WARNING: period date parsing failed: %q\n", raw)
		return nil, nil, false
	}
	cumulative = s.Year() == year && s.Month() == time.January && s.Day() == 1
	return &s, &e, cumulative
}
