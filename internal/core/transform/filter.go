package transform

import (
	"strings"

	"github.com/csvflow/backend/internal/domain"
)

// Filter applies the conditions as a sequential conjunction: each
// condition narrows the surviving row set of the prior step. Column
// typing is decided against the input table, so a later condition on an
// already-filtered column behaves the same as the first.
func Filter(t Table, conds []domain.FilterCondition) (Table, Summary, error) {
	surviving := t.Rows
	applied := make([]interface{}, 0, len(conds))

	for _, cond := range conds {
		if !t.HasColumn(cond.Column) {
			return Table{}, Summary{}, &ColumnNotFoundError{Column: cond.Column}
		}

		// On numeric columns the condition value must be numeric for any
		// operator; substring matching still runs on the string form.
		numeric := t.ColumnNumeric(cond.Column)
		var target float64
		if numeric {
			f, ok := parseNumber(cond.Value)
			if !ok {
				return Table{}, Summary{}, &TypeConversionError{Column: cond.Column, Value: cond.Value}
			}
			target = f
		}

		kept := make([]Row, 0, len(surviving))
		for _, row := range surviving {
			match, err := matchCondition(row[cond.Column], cond, numeric, target)
			if err != nil {
				return Table{}, Summary{}, err
			}
			if match {
				kept = append(kept, row)
			}
		}
		surviving = kept

		applied = append(applied, map[string]interface{}{
			"column":   cond.Column,
			"operator": cond.Operator,
			"value":    cond.Value,
		})
	}

	out := Table{Columns: t.Columns, Rows: surviving}
	return out, Summary{
		OriginalRows:  t.RowCount(),
		ProcessedRows: out.RowCount(),
		Meta: map[string]interface{}{
			"filters_applied": applied,
			"filter_count":    len(conds),
		},
	}, nil
}

func isComparison(op string) bool {
	switch op {
	case domain.OpGreater, domain.OpGreaterOrEqual, domain.OpLess,
		domain.OpLessOrEqual, domain.OpEqual, domain.OpNotEqual:
		return true
	}
	return false
}

func matchCondition(cell Value, cond domain.FilterCondition, numeric bool, target float64) (bool, error) {
	switch cond.Operator {
	case domain.OpContains:
		// Missing cells never contain anything.
		if cell.Null {
			return false, nil
		}
		return strings.Contains(cell.String(), cond.Value), nil
	case domain.OpNotContains:
		if cell.Null {
			return true, nil
		}
		return !strings.Contains(cell.String(), cond.Value), nil
	}

	if !isComparison(cond.Operator) {
		return false, &UnsupportedOperatorError{Operator: cond.Operator}
	}

	// A missing cell differs from every value, so it matches != and
	// fails every other comparison.
	if cell.Null {
		return cond.Operator == domain.OpNotEqual, nil
	}

	if numeric {
		f, ok := parseNumber(cell.Raw)
		if !ok {
			return false, &TypeConversionError{Column: cond.Column, Value: cell.Raw}
		}
		return compareFloat(f, cond.Operator, target), nil
	}
	return compareString(cell.Raw, cond.Operator, cond.Value), nil
}

func compareFloat(a float64, op string, b float64) bool {
	switch op {
	case domain.OpGreater:
		return a > b
	case domain.OpGreaterOrEqual:
		return a >= b
	case domain.OpLess:
		return a < b
	case domain.OpLessOrEqual:
		return a <= b
	case domain.OpEqual:
		return a == b
	case domain.OpNotEqual:
		return a != b
	}
	return false
}

func compareString(a, op, b string) bool {
	switch op {
	case domain.OpGreater:
		return a > b
	case domain.OpGreaterOrEqual:
		return a >= b
	case domain.OpLess:
		return a < b
	case domain.OpLessOrEqual:
		return a <= b
	case domain.OpEqual:
		return a == b
	case domain.OpNotEqual:
		return a != b
	}
	return false
}
