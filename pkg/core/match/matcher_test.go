package match

import (
	"testing"

	"dart_collector/pkg/models"
)

func item(name, amount string) models.AccountLineItem {
	return models.AccountLineItem{Name: name, RawAmount: amount}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"영업이익(손실)", "영업이익"},
		{"당기순이익(손실)", "당기순이익"},
		{"수익(매출액)", "수익"},
		{"매출 액", "매출액"},
		{"Ⅰ. 매출액", "매출액"},
		{"1. 매출액 (주석 5)", "매출액"},
		{"Revenue", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if got := ParseAmount("1,234,567"); got == nil || !got.Equal(*models.Dec("1234567")) {
		t.Errorf("comma amount parsed to %v", got)
	}
	if got := ParseAmount("(1,234)"); got == nil || !got.Equal(*models.Dec("-1234")) {
		t.Errorf("parenthesized amount parsed to %v, want -1234", got)
	}
	for _, raw := range []string{"-", "", "  ", "n/a", "(abc)"} {
		if got := ParseAmount(raw); got != nil {
			t.Errorf("ParseAmount(%q) = %v, want nil", raw, got)
		}
	}
}

func TestFindValueExactBeatsPartial(t *testing.T) {
	// "매출" is a substring of both names; the exact pass must win before
	// any partial match is considered.
	items := []models.AccountLineItem{
		item("상품매출원가", "999"),
		item("매출액", "1,000"),
	}
	got := FindValue(items, []string{"매출액", "매출"})
	if got == nil || !got.Equal(*models.Dec("1000")) {
		t.Fatalf("FindValue = %v, want 1000", got)
	}
}

func TestFindValueKeywordPriority(t *testing.T) {
	// Both keywords match exactly somewhere; the first keyword in the list
	// decides, not item order.
	items := []models.AccountLineItem{
		item("영업수익", "200"),
		item("매출액", "100"),
	}
	got := FindValue(items, []string{"매출액", "영업수익"})
	if got == nil || !got.Equal(*models.Dec("100")) {
		t.Fatalf("FindValue = %v, want 100 (first keyword wins)", got)
	}
}

func TestFindValuePartialMatch(t *testing.T) {
	items := []models.AccountLineItem{
		item("Ⅳ. 연결당기순이익(손실)", "(5,500)"),
	}
	got := FindValue(items, []string{"당기순이익"})
	if got == nil || !got.Equal(*models.Dec("-5500")) {
		t.Fatalf("FindValue = %v, want -5500 via partial match", got)
	}
}

func TestFindValueParenthesizedNamesMatchExactly(t *testing.T) {
	items := []models.AccountLineItem{
		item("영업이익(손실)", "42"),
	}
	got := FindValue(items, []string{"영업이익"})
	if got == nil || !got.Equal(*models.Dec("42")) {
		t.Fatalf("FindValue = %v, want 42", got)
	}
}

func TestFindValueNoMatchIsNil(t *testing.T) {
	items := []models.AccountLineItem{
		item("자산총계", "1,000"),
	}
	if got := FindValue(items, []string{"매출액"}); got != nil {
		t.Fatalf("FindValue = %v, want nil", got)
	}
	if got := FindValue(nil, []string{"매출액"}); got != nil {
		t.Fatalf("FindValue on nil items = %v, want nil", got)
	}
}

func TestFindValueDashAmountIsNil(t *testing.T) {
	items := []models.AccountLineItem{
		item("매출액", "-"),
	}
	if got := FindValue(items, []string{"매출액"}); got != nil {
		t.Fatalf("FindValue = %v, want nil for dash amount", got)
	}
}
