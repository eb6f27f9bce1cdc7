package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/render"
	"github.com/askdb-labs/askdb/internal/report"
	"github.com/askdb-labs/askdb/internal/safety"
	"github.com/askdb-labs/askdb/internal/sqlexec"
	"github.com/askdb-labs/askdb/internal/workflow"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format  string
	Input   string
	Approve bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run one SQL statement through the safety gate",
		Long: `Run a SQL statement you wrote yourself through the same screen and
approval gate as generated queries.

The statement is validated first: DROP, TRUNCATE, DELETE, ALTER and CREATE
statements, stacked statements and comment markers are refused. What passes
is previewed and runs only after approval. Use --approve to skip the prompt
in scripts.`,
		Example: `  # Validate, preview, confirm, run
  askdb query "SELECT country, COUNT(*) FROM customers GROUP BY country"

  # Non-interactive, rendered as JSON
  askdb query --approve --format json "SELECT * FROM products"

  # Read the statement from a file or a pipe
  askdb query --input monthly_revenue.sql --approve
  echo "SELECT COUNT(*) FROM orders" | askdb query --approve`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", render.FormatTable, "Output format: table, json, csv, markdown, plain")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from a file")
	cmd.Flags().BoolVarP(&opts.Approve, "approve", "y", false, "Execute without the interactive prompt")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc := NewCommandContext(cmd)

	sqlText, err := readSQL(cmd, args, opts)
	if err != nil {
		return err
	}

	verdict := safety.Validate(sqlText)
	if !verdict.Allowed {
		return fmt.Errorf("query blocked: %s", verdict.Reason)
	}

	return cc.WithDatabase(cmd.Context(), func(conn adapter.Adapter) error {
		if opts.Approve {
			result := sqlexec.New(cc.Logger).Execute(cmd.Context(), conn, sqlText)
			if !result.OK() {
				return fmt.Errorf("query failed: %s", result.Err)
			}
			return render.Render(cmd.OutOrStdout(), result, opts.Format)
		}

		session := &workflow.Session{
			Prompter:     newPrompter(cmd),
			Out:          cmd.OutOrStdout(),
			Executor:     sqlexec.New(cc.Logger),
			Exporter:     report.NewPDFWriter(cc.Cfg.Export.Dir, cc.Logger),
			Logger:       cc.Logger,
			DatabaseInfo: databaseInfo(cc.Cfg.Database),
		}
		session.Run(cmd.Context(), conn, core.CandidateQuery{SQL: sqlText})
		return nil
	})
}

// readSQL resolves the statement from args, --input, or piped stdin, in that
// order of preference.
func readSQL(cmd *cobra.Command, args []string, opts *QueryOptions) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil

	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.Input, err)
		}
		return strings.TrimSpace(string(content)), nil

	case !stdinIsTerminal():
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(content)), nil

	default:
		return "", fmt.Errorf("no SQL given (try 'askdb chat' for an interactive session)")
	}
}
