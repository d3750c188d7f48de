package storage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvflow/backend/internal/core/transform"
	"github.com/csvflow/backend/internal/infrastructure/storage"
)

func TestDecodeTableReadsHeaderAndRows(t *testing.T) {
	table, err := storage.DecodeTable(strings.NewReader("name,age\nalice,30\nbob,25\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "alice", table.Rows[0]["name"].Raw)
	assert.Equal(t, "25", table.Rows[1]["age"].Raw)
}

func TestDecodeTableEmptyStream(t *testing.T) {
	table, err := storage.DecodeTable(strings.NewReader(""))
	require.NoError(t, err)

	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestDecodeTableHeaderOnly(t *testing.T) {
	table, err := storage.DecodeTable(strings.NewReader("name,age\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestDecodeTablePadsShortRecords(t *testing.T) {
	table, err := storage.DecodeTable(strings.NewReader("name,age,city\nalice,30\n"))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "alice", table.Rows[0]["name"].Raw)
	assert.True(t, table.Rows[0]["city"].Null)
}

func TestDecodeTableQuotedFields(t *testing.T) {
	table, err := storage.DecodeTable(strings.NewReader("name,note\nalice,\"likes, commas\"\n"))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "likes, commas", table.Rows[0]["note"].Raw)
}

func TestEncodeTablePreservesOrderAndNulls(t *testing.T) {
	table := transform.Table{
		Columns: []string{"name", "age"},
		Rows: []transform.Row{
			{"name": transform.Value{Raw: "alice"}, "age": transform.Value{Raw: "30"}},
			{"name": transform.Value{Raw: "bob"}, "age": transform.Value{Null: true}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, storage.EncodeTable(&buf, table))

	assert.Equal(t, "name,age\nalice,30\nbob,\n", buf.String())
}

func TestEncodeDecodeRoundTripKeepsRowOrder(t *testing.T) {
	in := transform.Table{
		Columns: []string{"a", "b"},
		Rows: []transform.Row{
			{"a": transform.Value{Raw: "3"}, "b": transform.Value{Raw: "z"}},
			{"a": transform.Value{Raw: "1"}, "b": transform.Value{Raw: "y"}},
			{"a": transform.Value{Raw: "2"}, "b": transform.Value{Raw: "x"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, storage.EncodeTable(&buf, in))
	out, err := storage.DecodeTable(&buf)
	require.NoError(t, err)

	require.Len(t, out.Rows, 3)
	for i := range in.Rows {
		assert.Equal(t, in.Rows[i]["a"].Raw, out.Rows[i]["a"].Raw)
		assert.Equal(t, in.Rows[i]["b"].Raw, out.Rows[i]["b"].Raw)
	}
}
