package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/internal/report"
	"github.com/askdb-labs/askdb/internal/sqlexec"
	"github.com/askdb-labs/askdb/internal/tools"
	"github.com/askdb-labs/askdb/internal/workflow"
	"github.com/askdb-labs/askdb/pkg/adapter"
)

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the database one question",
		Long: `Translate a natural-language question into SQL, preview it, and run it
after your approval.

The generated statement is screened before it is shown: DROP, TRUNCATE,
DELETE, ALTER and CREATE statements, stacked statements and comment markers
are refused outright. After a successful run with results, askdb offers to
export them as a PDF report.`,
		Example: `  # One question, interactive approval
  askdb ask "How many customers do we have in each country?"

  # Answers can be piped for scripting (approve, then decline the export)
  printf 'yes\nno\n' | askdb ask "Total revenue by month in 2023"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			question := strings.Join(args, " ")

			translator, err := cc.NewTranslator()
			if err != nil {
				return err
			}

			return cc.WithDatabase(cmd.Context(), func(conn adapter.Adapter) error {
				return askQuestion(cmd.Context(), cmd, cc, conn, translator, newPrompter(cmd), question)
			})
		},
	}
}

// askQuestion drives one question through preview, approval and execution.
// A blocked candidate is a domain outcome: it is reported and nil is
// returned. Only translator and connection failures surface as errors.
func askQuestion(ctx context.Context, cmd *cobra.Command, cc *CommandContext, conn adapter.Adapter, translator nl2sql.Translator, prompter workflow.Prompter, question string) error {
	tk := tools.New(conn, translator, cc.Logger)

	candidate, verdict, err := tk.PreviewQuery(ctx, question)
	if err != nil {
		return err
	}
	if !verdict.Allowed {
		cc.Renderer.Error("Query validation failed: " + verdict.Reason)
		cc.Renderer.Println("Rephrase the question and try again.")
		return nil
	}

	session := &workflow.Session{
		Prompter:     prompter,
		Out:          cmd.OutOrStdout(),
		Executor:     sqlexec.New(cc.Logger),
		Exporter:     report.NewPDFWriter(cc.Cfg.Export.Dir, cc.Logger),
		Logger:       cc.Logger,
		DatabaseInfo: databaseInfo(cc.Cfg.Database),
	}
	session.Run(ctx, conn, candidate)
	return nil
}
