// Package reconcile maintains the entity x period result matrix: gap
// detection for incremental collection and existing-value-wins merging.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Matrix is a sparse two-dimensional table keyed by entity name (rows) and
// period label (columns, "2024.1Q" or plain "2024"). A nil cell is the
// missing sentinel. Columns exist independently of values so an all-empty
// column read back from a sheet is still "present".
type Matrix struct {
	cells   map[string]map[string]*decimal.Decimal
	periods map[string]struct{}
}

func NewMatrix() *Matrix {
	return &Matrix{
		cells:   make(map[string]map[string]*decimal.Decimal),
		periods: make(map[string]struct{}),
	}
}

// AddEntity registers a row without any values.
func (m *Matrix) AddEntity(entity string) {
	if _, ok := m.cells[entity]; !ok {
		m.cells[entity] = make(map[string]*decimal.Decimal)
	}
}

// AddPeriod registers a column without any values.
func (m *Matrix) AddPeriod(period string) {
	m.periods[period] = struct{}{}
}

// Set stores a cell value. A nil value still registers the row and column.
func (m *Matrix) Set(entity, period string, v *decimal.Decimal) {
	m.AddEntity(entity)
	m.AddPeriod(period)
	if v != nil {
		d := *v
		m.cells[entity][period] = &d
	}
}

// Get returns the cell value, nil when missing.
func (m *Matrix) Get(entity, period string) *decimal.Decimal {
	row, ok := m.cells[entity]
	if !ok {
		return nil
	}
	return row[period]
}

// HasPeriod reports whether the column exists at all.
func (m *Matrix) HasPeriod(period string) bool {
	_, ok := m.periods[period]
	return ok
}

// Len returns the number of entity rows.
func (m *Matrix) Len() int {
	return len(m.cells)
}

// Entities returns the row names sorted lexicographically.
func (m *Matrix) Entities() []string {
	names := make([]string, 0, len(m.cells))
	for name := range m.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Periods returns the column labels in chronological order. Labels that do
// not parse as "<year>.<n>Q" or a plain year sort first, deterministically.
func (m *Matrix) Periods() []string {
	labels := make([]string, 0, len(m.periods))
	for label := range m.periods {
		labels = append(labels, label)
	}
	sort.SliceStable(labels, func(i, j int) bool {
		yi, qi := periodKey(labels[i])
		yj, qj := periodKey(labels[j])
		if yi != yj {
			return yi < yj
		}
		if qi != qj {
			return qi < qj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// periodKey parses a period label into its natural sort key. "2024.1Q"
// keys (2024, 1), a plain "2024" keys (2024, 0), and anything else keys
// (0, 0) so malformed labels cluster at the front instead of erroring.
func periodKey(label string) (year, quarter int) {
	for i, r := range label {
		switch {
		case r >= '0' && r <= '9':
			year = year*10 + int(r-'0')
		case r == '.':
			rest := label[i+1:]
			if len(rest) == 2 && rest[0] >= '1' && rest[0] <= '4' && rest[1] == 'Q' {
				return year, int(rest[0] - '0')
			}
			return 0, 0
		default:
			return 0, 0
		}
	}
	if label == "" {
		return 0, 0
	}
	return year, 0
}
