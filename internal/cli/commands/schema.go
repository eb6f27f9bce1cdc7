package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/cli/output"
	"github.com/askdb-labs/askdb/internal/schema"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the connected database's schema",
		Long: `Inspect the tables visible on the configured connection.

Without arguments every table is listed with its columns; pass a table name
to inspect just that one. The same snapshot grounds the LLM when it writes
SQL, so what you see here is what the model sees.`,
		Example: `  askdb schema
  askdb schema customers
  askdb schema --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			return cc.WithDatabase(cmd.Context(), func(conn adapter.Adapter) error {
				desc, err := schema.Describe(cmd.Context(), conn)
				if err != nil {
					return err
				}

				if len(args) == 1 {
					desc, err = filterTable(desc, args[0])
					if err != nil {
						return err
					}
				}

				return renderSchema(cc.Renderer, desc)
			})
		},
	}
}

// filterTable narrows a snapshot to one table, matching case-insensitively.
func filterTable(desc *schema.Descriptor, name string) (*schema.Descriptor, error) {
	for _, t := range desc.Tables {
		if strings.EqualFold(t.Name, name) {
			return &schema.Descriptor{Tables: []schema.Table{t}}, nil
		}
	}
	return nil, fmt.Errorf("table %q not found (tables: %s)", name, strings.Join(desc.TableNames(), ", "))
}

func renderSchema(r *output.Renderer, desc *schema.Descriptor) error {
	if desc.IsEmpty() {
		r.Warning("no tables found in database")
		return nil
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		tables := make([]core.TableSchema, 0, len(desc.Tables))
		for _, t := range desc.Tables {
			tables = append(tables, core.TableSchema{Name: t.Name, Columns: t.Columns})
		}
		return r.JSON(map[string]any{"tables": tables})

	case output.ModeMarkdown:
		for i, t := range desc.Tables {
			if i > 0 {
				r.Println("")
			}
			r.Println(output.FormatHeader(2, t.Name))
			r.Println("")
			for _, c := range t.Columns {
				r.Println(output.FormatKeyValue(c.Name, columnAttrs(c)))
			}
		}
		return nil

	default:
		styles := r.Styles()
		for i, t := range desc.Tables {
			if i > 0 {
				r.Println("")
			}
			r.Println(styles.Header2.Render(t.Name))
			for _, c := range t.Columns {
				r.Printf("  %-24s %s\n", c.Name, columnAttrs(c))
			}
		}
		return nil
	}
}

func columnAttrs(c core.Column) string {
	if c.Nullable {
		return c.Type
	}
	return c.Type + " NOT NULL"
}
