package transform

// Dedup removes rows that are exact duplicates of an earlier row across
// all columns, preserving first-occurrence order. Equality is exact on
// the raw cell values; no type or whitespace normalization.
func Dedup(t Table) (Table, Summary) {
	seen := make(map[string]struct{}, len(t.Rows))
	out := Table{Columns: t.Columns, Rows: make([]Row, 0, len(t.Rows))}

	for _, row := range t.Rows {
		key := rowKey(t.Columns, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}

	return out, Summary{
		OriginalRows:  t.RowCount(),
		ProcessedRows: out.RowCount(),
	}
}
