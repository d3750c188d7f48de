package transform

// uniqueSampleCap bounds the stringified distinct-value sample stored on
// the task. The true distinct count is always reported in full.
const uniqueSampleCap = 10

// Unique keeps the first full row encountered for each distinct value
// of the given column, in first-occurrence order. Equivalent to
// de-duplicating on that single column.
func Unique(t Table, column string) (Table, Summary, error) {
	if !t.HasColumn(column) {
		return Table{}, Summary{}, &ColumnNotFoundError{Column: column}
	}

	seen := make(map[string]struct{}, len(t.Rows))
	sample := make([]string, 0, uniqueSampleCap)
	distinct := 0
	out := Table{Columns: t.Columns, Rows: make([]Row, 0, len(t.Rows))}

	for _, row := range t.Rows {
		key := rowKey([]string{column}, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		distinct++
		if len(sample) < uniqueSampleCap {
			sample = append(sample, row[column].String())
		}
		out.Rows = append(out.Rows, row)
	}

	return out, Summary{
		OriginalRows:  t.RowCount(),
		ProcessedRows: out.RowCount(),
		Meta: map[string]interface{}{
			"column":               column,
			"unique_count":         distinct,
			"unique_values_sample": sample,
		},
	}, nil
}
