package transform

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single cell. Raw holds the string form as read from the
// source; Null marks a missing cell.
type Value struct {
	Raw  string
	Null bool
}

func (v Value) String() string {
	if v.Null {
		return ""
	}
	return v.Raw
}

// Row maps column name to cell value.
type Row map[string]Value

// Table is an ordered sequence of rows with a fixed column order.
// All transform functions treat it as immutable and return new tables.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) RowCount() int { return len(t.Rows) }

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// parseNumber parses a cell or comparison value as a float.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ColumnNumeric reports whether a column holds numeric data: at least
// one non-null cell parses as a number. Mixed columns count as numeric
// so that non-parsing cells surface a conversion error instead of
// silently comparing as text.
func (t Table) ColumnNumeric(name string) bool {
	for _, row := range t.Rows {
		v, ok := row[name]
		if !ok || v.Null {
			continue
		}
		if _, ok := parseNumber(v.Raw); ok {
			return true
		}
	}
	return false
}

// rowKey builds an equality key over the given columns. Each cell is
// length-prefixed so no byte sequence inside a cell can collide with
// the framing, and null cells never collide with any string value,
// including empty or NUL-containing ones.
func rowKey(columns []string, row Row) string {
	var b strings.Builder
	for _, c := range columns {
		v := row[c]
		if v.Null {
			b.WriteString("n;")
			continue
		}
		b.WriteByte('v')
		b.WriteString(strconv.Itoa(len(v.Raw)))
		b.WriteByte(';')
		b.WriteString(v.Raw)
	}
	return b.String()
}

// Sanitize normalizes non-finite numeric cells (positive/negative
// infinity, NaN) and empty cells to the missing-value marker, so they
// never propagate into comparisons or serialized output.
func Sanitize(t Table) Table {
	out := Table{Columns: t.Columns, Rows: make([]Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		clean := make(Row, len(row))
		for col, v := range row {
			if !v.Null {
				if v.Raw == "" {
					v = Value{Null: true}
				} else if f, ok := parseNumber(v.Raw); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
					v = Value{Null: true}
				}
			}
			clean[col] = v
		}
		out.Rows = append(out.Rows, clean)
	}
	return out
}

// Summary is the metadata a transform reports alongside its output.
// Meta is merged into the task's stored operation parameters.
type Summary struct {
	OriginalRows  int
	ProcessedRows int
	Meta          map[string]interface{}
}
