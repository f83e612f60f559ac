// Package models holds the shared domain types for DART financial statements
// and the metrics derived from them.
package models

import (
	"time"
)

// ReportKind identifies one of the four DART periodic report types.
// The values are the reprt_code parameters the open API expects.
type ReportKind string

const (
	ReportAnnual     ReportKind = "11011" // 사업보고서 (annual)
	ReportSemiAnnual ReportKind = "11012" // 반기보고서 (first half)
	ReportQ1         ReportKind = "11013" // 1분기보고서
	ReportQ3         ReportKind = "11014" // 3분기보고서
)

// ShortName returns the cache-path fragment for the report kind.
func (k ReportKind) ShortName() string {
	switch k {
	case ReportAnnual:
		return "annual"
	case ReportSemiAnnual:
		return "semi"
	case ReportQ1:
		return "q1"
	case ReportQ3:
		return "q3"
	}
	return "unknown"
}

// ConsolidationKind distinguishes consolidated group statements from
// single-entity statements. Values are DART fs_div parameters.
type ConsolidationKind string

const (
	Consolidated ConsolidationKind = "CFS" // 연결
	Separate     ConsolidationKind = "OFS" // 개별
)

// AccountLineItem is one raw account row of a statement. The amount stays a
// string exactly as DART reports it: locale commas, "(1,234)" for negatives,
// "-" for no value. Parsing happens at match time, never here.
type AccountLineItem struct {
	Name      string `json:"account_nm"`
	RawAmount string `json:"thstrm_amount"`
}

// PeriodStatement is one fetched report for one entity and fiscal year.
// Immutable after construction by the dart adapter.
type PeriodStatement struct {
	CorpCode      string            `json:"corp_code"`
	CorpName      string            `json:"corp_name"`
	FiscalYear    int               `json:"bsns_year"`
	Report        ReportKind        `json:"reprt_type"`
	Consolidation ConsolidationKind `json:"fs_type"`
	LineItems     []AccountLineItem `json:"accounts"`

	// PeriodStart/PeriodEnd come from the thstrm_dt range of the first
	// account row; nil when DART omits or mangles the field.
	PeriodStart *time.Time `json:"start_date,omitempty"`
	PeriodEnd   *time.Time `json:"end_date,omitempty"`

	// IsCumulative is true iff PeriodStart is January 1 of FiscalYear,
	// meaning the reported figures are year-to-date totals. This single
	// bit drives every derivation branch; it is never inferred from the
	// magnitude of the values.
	IsCumulative bool `json:"is_cumulative"`

	FetchedAt time.Time `json:"extracted_at"`
}
