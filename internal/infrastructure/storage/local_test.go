package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/infrastructure/storage"
)

func newLocalStore() *storage.LocalStore {
	return storage.NewLocalStore(afero.NewMemMapFs(), "data", logger.NewNop())
}

func TestLocalStoreWriteThenOpen(t *testing.T) {
	store := newLocalStore()
	ctx := context.Background()

	n, err := store.Write(ctx, "csv_files/2026/08/people.csv", strings.NewReader("name\nalice\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	rc, err := store.Open(ctx, "csv_files/2026/08/people.csv")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "name\nalice\n", string(body))
}

func TestLocalStoreOverwriteReplacesContent(t *testing.T) {
	store := newLocalStore()
	ctx := context.Background()

	_, err := store.Write(ctx, "blob.csv", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Write(ctx, "blob.csv", strings.NewReader("second"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, "blob.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(body))
}

func TestLocalStoreSize(t *testing.T) {
	store := newLocalStore()
	ctx := context.Background()

	_, err := store.Write(ctx, "blob.csv", strings.NewReader("12345"))
	require.NoError(t, err)

	size, err := store.Size(ctx, "blob.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}

func TestLocalStoreOpenMissingPath(t *testing.T) {
	store := newLocalStore()

	_, err := store.Open(context.Background(), "nope.csv")
	assert.Error(t, err)

	_, err = store.Size(context.Background(), "nope.csv")
	assert.Error(t, err)
}
