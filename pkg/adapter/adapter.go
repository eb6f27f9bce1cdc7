// Package adapter provides database adapter interfaces and implementations
// for askdb's query gate.
//
// This package contains the public contract that all database adapters must
// implement. Concrete adapter implementations are in pkg/adapters/
// subdirectories and register themselves with the registry in their init()
// functions.
package adapter

import (
	"context"

	"github.com/askdb-labs/askdb/pkg/core"
)

// Type aliases so adapter implementations can stay on a single import.
type (
	// Config is an alias for core.ConnectionConfig.
	Config = core.ConnectionConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// TableSchema is an alias for core.TableSchema.
	TableSchema = core.TableSchema

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Adapter defines the interface that all database adapters must implement.
// An adapter owns exactly one connection handle: Connect opens it, Close
// releases it, and the caller that opened it is responsible for closing it
// on every exit path.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// ListTables returns the user table names visible on the connection,
	// sorted by name.
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable retrieves the column layout of a single table.
	DescribeTable(ctx context.Context, table string) (*TableSchema, error)

	// Type returns the backend name the adapter was registered under.
	Type() string
}
