// Package core defines the shared language of the askdb system.
//
// This package contains:
//   - Connection configuration consumed by database adapters
//   - Table/column metadata returned by schema introspection
//   - The candidate-query record that flows through validation and approval
//   - The connection error type shared by all backends
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core

import (
	"database/sql"
	"fmt"
)

// ConnectionConfig holds configuration for connecting to a database.
// Type selects the backend; embedded engines (sqlite, duckdb) use Path,
// client/server engines (postgres, mysql) use the network fields.
type ConnectionConfig struct {
	Type     string            `koanf:"type" json:"type"`
	Path     string            `koanf:"path" json:"path,omitempty"`
	Host     string            `koanf:"host" json:"host,omitempty"`
	Port     int               `koanf:"port" json:"port,omitempty"`
	Database string            `koanf:"database" json:"database,omitempty"`
	Username string            `koanf:"username" json:"username,omitempty"`
	Password string            `koanf:"password" json:"-"`
	Options  map[string]string `koanf:"options" json:"options,omitempty"`
}

// Column represents a column in a database table.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Position int    `json:"position"`
}

// TableSchema holds the introspected shape of a single table.
type TableSchema struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// CandidateQuery is a SQL string awaiting validation and approval, together
// with the natural-language question it was derived from. It is consumed by
// the validator and the confirmation workflow and discarded after execution
// or rejection.
type CandidateQuery struct {
	SQL      string `json:"sql"`
	Question string `json:"question,omitempty"`
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}

// ConnectionError reports a failure to reach or authenticate against a
// backend. It is fatal to the current request sequence and is never retried.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
