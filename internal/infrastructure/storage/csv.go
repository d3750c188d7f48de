package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/csvflow/backend/internal/core/transform"
)

// DecodeTable reads a CSV stream into the in-memory table the transform
// engine operates on. The first record is the header; an empty stream
// decodes to an empty table.
func DecodeTable(r io.Reader) (transform.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return transform.Table{}, nil
	}
	if err != nil {
		return transform.Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := transform.Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return transform.Table{}, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(transform.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = transform.Value{Raw: record[i]}
			} else {
				// Short records pad with missing cells.
				row[col] = transform.Value{Null: true}
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// EncodeTable writes the table back out as CSV, null cells as empty
// fields, preserving row and column order.
func EncodeTable(w io.Writer, t transform.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row[col].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
