package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp, "New() should return non-nil adapter")
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected(), "should not be connected initially")
	assert.Equal(t, "sqlite", adp.Type())

	// Verify interface compliance
	var _ adapter.Adapter = (*Adapter)(nil)
	var _ adapter.Adapter = adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "empty path defaults to memory",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.db")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: dbPath}))
			defer func() { _ = adp.Close() }()

			require.NoError(t, adp.Ping(ctx))
			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "list tables without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.ListTables(ctx)
				return err
			},
		},
		{
			name: "describe table without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.DescribeTable(ctx, "customers")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			err := tt.operation(ctx, adp)
			require.Error(t, err, "expected error when operating without connection")
			assert.Contains(t, err.Error(), "not established")
		})
	}
}

func setupCustomersDB(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })

	require.NoError(t, adp.Exec(ctx, `
		CREATE TABLE customers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT,
			created_date TEXT
		)
	`))
	require.NoError(t, adp.Exec(ctx, `
		INSERT INTO customers (name, country, created_date) VALUES
			('Alice Johnson', 'USA', '2023-01-15'),
			('Hiroshi Tanaka', 'Japan', '2023-03-10')
	`))
	return adp
}

func TestAdapter_ListTables(t *testing.T) {
	ctx := context.Background()
	adp := setupCustomersDB(t)

	tables, err := adp.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, tables)
}

func TestAdapter_DescribeTable(t *testing.T) {
	ctx := context.Background()
	adp := setupCustomersDB(t)

	schema, err := adp.DescribeTable(ctx, "customers")
	require.NoError(t, err)

	assert.Equal(t, "customers", schema.Name)
	require.Len(t, schema.Columns, 4)

	assert.Equal(t, "id", schema.Columns[0].Name)
	assert.Equal(t, 1, schema.Columns[0].Position)

	name := schema.Columns[1]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "TEXT", name.Type)
	assert.False(t, name.Nullable)

	country := schema.Columns[2]
	assert.Equal(t, "country", country.Name)
	assert.True(t, country.Nullable)
}

func TestAdapter_DescribeTable_NotFound(t *testing.T) {
	ctx := context.Background()
	adp := setupCustomersDB(t)

	_, err := adp.DescribeTable(ctx, "no_such_table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAdapter_Query(t *testing.T) {
	ctx := context.Background()
	adp := setupCustomersDB(t)

	rows, err := adp.Query(ctx, "SELECT name FROM customers WHERE country = 'USA'")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Alice Johnson"}, names)
}
