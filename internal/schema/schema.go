// Package schema assembles a point-in-time snapshot of the connected
// database's tables and columns. Snapshots are never cached; every call
// re-reads the catalog so the LLM always grounds on the live schema.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// Table is one table with its columns in catalog order.
type Table struct {
	Name    string
	Columns []core.Column
}

// Descriptor is an ordered snapshot of the database schema.
type Descriptor struct {
	Tables []Table
}

// Describe introspects the connected database through the adapter's catalog
// queries. Any backend failure is wrapped as a core.ConnectionError since a
// database that cannot answer catalog queries cannot serve the session.
func Describe(ctx context.Context, ad adapter.Adapter) (*Descriptor, error) {
	names, err := ad.ListTables(ctx)
	if err != nil {
		return nil, &core.ConnectionError{Backend: ad.Type(), Err: fmt.Errorf("list tables: %w", err)}
	}

	desc := &Descriptor{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		ts, err := ad.DescribeTable(ctx, name)
		if err != nil {
			return nil, &core.ConnectionError{Backend: ad.Type(), Err: fmt.Errorf("describe table %s: %w", name, err)}
		}
		desc.Tables = append(desc.Tables, Table{Name: ts.Name, Columns: ts.Columns})
	}

	return desc, nil
}

// IsEmpty reports whether the snapshot contains no tables.
func (d *Descriptor) IsEmpty() bool {
	return d == nil || len(d.Tables) == 0
}

// TableNames returns the table names in snapshot order.
func (d *Descriptor) TableNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		names = append(names, t.Name)
	}
	return names
}

// PromptContext renders the snapshot as LLM grounding text, one line per
// table:
//
//	Table 'customers': id (INTEGER), name (TEXT), country (TEXT)
func (d *Descriptor) PromptContext() string {
	if d.IsEmpty() {
		return "No tables found in database"
	}

	var b strings.Builder
	for i, t := range d.Tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, fmt.Sprintf("%s (%s)", c.Name, c.Type))
		}
		fmt.Fprintf(&b, "Table '%s': %s", t.Name, strings.Join(cols, ", "))
	}
	return b.String()
}
