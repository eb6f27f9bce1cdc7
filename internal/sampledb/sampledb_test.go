package sampledb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb-labs/askdb/pkg/adapters/sqlite"
	"github.com/askdb-labs/askdb/pkg/core"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")

	require.NoError(t, Create(path, nil))

	ad := sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: path}))
	t.Cleanup(func() { _ = ad.Close() })

	tables, err := ad.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders", "products"}, tables)

	counts := map[string]int{"customers": 5, "orders": 7, "products": 5}
	for table, want := range counts {
		rows, err := ad.Query(ctx, "SELECT COUNT(*) FROM "+table)
		require.NoError(t, err)
		require.True(t, rows.Next())
		var got int
		require.NoError(t, rows.Scan(&got))
		require.NoError(t, rows.Close())
		assert.Equal(t, want, got, table)
	}
}

func TestCreate_ReplacesExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")

	require.NoError(t, Create(path, nil))

	// Mutate, then recreate: the second run must restore the original data.
	ad := sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: path}))
	require.NoError(t, ad.Exec(ctx, "UPDATE customers SET country = 'Mars'"))
	require.NoError(t, ad.Close())

	require.NoError(t, Create(path, nil))

	ad = sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: path}))
	t.Cleanup(func() { _ = ad.Close() })

	rows, err := ad.Query(ctx, "SELECT country FROM customers WHERE id = 1")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var country string
	require.NoError(t, rows.Scan(&country))
	require.NoError(t, rows.Close())
	assert.Equal(t, "USA", country)
}

func TestCreate_FixtureValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")

	require.NoError(t, Create(path, nil))

	ad := sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: path}))
	t.Cleanup(func() { _ = ad.Close() })

	rows, err := ad.Query(ctx, "SELECT name, email FROM customers WHERE id = 1")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var name, email string
	require.NoError(t, rows.Scan(&name, &email))
	require.NoError(t, rows.Close())
	assert.Equal(t, "Alice Johnson", name)
	assert.Equal(t, "alice@example.com", email)
}
