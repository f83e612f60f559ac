// Package match resolves raw DART account names to canonical metric values
// using ordered keyword lists.
//
// Keyword order is load-bearing: lists are scanned highest-priority first,
// with a full exact pass before any partial pass, so this stays an ordered
// slice scan rather than a map lookup.
package match

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"dart_collector/pkg/models"
)

// FindValue scans the statement line items against the keyword list and
// returns the parsed amount of the first match, or nil when no keyword
// matches. Two passes over the full keyword list:
//
//  1. exact: normalized item name == normalized keyword
//  2. partial: normalized keyword is a substring of the normalized name
//
// A match whose amount fails to parse still wins the scan; it just yields
// nil. Absence is never an error.
func FindValue(items []models.AccountLineItem, keywords []string) *decimal.Decimal {
	// Exact pass.
	for _, kw := range keywords {
		norm := Normalize(kw)
		if norm == "" {
			continue
		}
		for _, item := range items {
			if Normalize(item.Name) == norm {
				return ParseAmount(item.RawAmount)
			}
		}
	}

	// Partial pass.
	for _, kw := range keywords {
		norm := Normalize(kw)
		if norm == "" {
			continue
		}
		for _, item := range items {
			if strings.Contains(Normalize(item.Name), norm) {
				return ParseAmount(item.RawAmount)
			}
		}
	}

	return nil
}

// Normalize reduces an account name or keyword to its Hangul core:
// parenthesized qualifiers like "(손실)" are stripped together with their
// parentheses, then every rune that is not Hangul is dropped, which removes
// spaces, digits, punctuation and Latin letters in one rule.
// "영업이익(손실)" and "영업 이익" both normalize to "영업이익".
func Normalize(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(' || r == '（':
			depth++
		case r == ')' || r == '）':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isHangul(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isHangul(r rune) bool {
	return unicode.Is(unicode.Hangul, r)
}

// ParseAmount converts a DART amount string to a decimal. DART formats:
// thousands commas, "(1,234)" for negatives, a lone dash or empty string
// for no value. Anything unparseable yields nil rather than an error.
func ParseAmount(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
