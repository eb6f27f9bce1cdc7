package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/internal/schema"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

const chatPrompt = "askdb> "

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question session",
		Long: `Start an interactive session and ask questions in plain language.

Each question is translated to SQL against the live schema, previewed, and
only executed after you approve it. Dot-commands inspect the database
without involving the model:

  .tables          list tables
  .schema [table]  show columns
  .clear           clear the screen
  .help            show available commands
  .quit            exit`,
		Example: `  askdb chat
  askdb --db-path sales.db chat`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			translator, err := cc.NewTranslator()
			if err != nil {
				return err
			}

			return cc.WithDatabase(cmd.Context(), func(conn adapter.Adapter) error {
				return chatLoop(cmd, cc, conn, translator)
			})
		},
	}
}

func chatLoop(cmd *cobra.Command, cc *CommandContext, conn adapter.Adapter, translator nl2sql.Translator) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newChatCompleter(ctx, conn),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(out, "askdb chat (%s)\n", databaseInfo(cc.Cfg.Database))
	_, _ = fmt.Fprintln(out, "Ask questions in plain language. Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	prompter := &readlinePrompter{rl: rl, restore: chatPrompt}

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := runChatCommand(ctx, out, conn, line); quit {
				break
			}
			continue
		}

		if err := askQuestion(ctx, cmd, cc, conn, translator, prompter, line); err != nil {
			var connErr *core.ConnectionError
			if errors.As(err, &connErr) {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintln(out, "Goodbye!")
	return nil
}

// runChatCommand handles a dot-command line and reports whether the session
// should end.
func runChatCommand(ctx context.Context, out io.Writer, conn adapter.Adapter, line string) bool {
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printChatHelp(out)

	case ".tables":
		desc, err := schema.Describe(ctx, conn)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		if desc.IsEmpty() {
			_, _ = fmt.Fprintln(out, "No tables found in database")
			break
		}
		for _, name := range desc.TableNames() {
			_, _ = fmt.Fprintln(out, "  "+name)
		}

	case ".schema":
		table := ""
		if len(parts) > 1 {
			table = parts[1]
		}
		printChatSchema(ctx, out, conn, table)

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(out, "Unknown command: %s (try .help)\n", parts[0])
	}

	return false
}

func printChatHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  .tables          List tables")
	_, _ = fmt.Fprintln(out, "  .schema [table]  Show columns for all tables or one table")
	_, _ = fmt.Fprintln(out, "  .clear           Clear the screen")
	_, _ = fmt.Fprintln(out, "  .help            Show this help")
	_, _ = fmt.Fprintln(out, "  .quit            Exit the session")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Anything else is treated as a question about your data.")
}

func printChatSchema(ctx context.Context, out io.Writer, conn adapter.Adapter, table string) {
	desc, err := schema.Describe(ctx, conn)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if table != "" {
		for _, t := range desc.Tables {
			if strings.EqualFold(t.Name, table) {
				single := &schema.Descriptor{Tables: []schema.Table{t}}
				_, _ = fmt.Fprintln(out, single.PromptContext())
				return
			}
		}
		_, _ = fmt.Fprintf(out, "Unknown table: %s\n", table)
		return
	}

	_, _ = fmt.Fprintln(out, desc.PromptContext())
}

// historyFile returns the chat history path, or empty (history disabled)
// when the home directory cannot be resolved.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".askdb_history")
}

// newChatCompleter completes table names and dot-commands. Completion is a
// convenience; a failed table listing just means fewer suggestions.
func newChatCompleter(ctx context.Context, conn adapter.Adapter) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	tableItems := func() []readline.PrefixCompleterInterface {
		names, err := conn.ListTables(ctx)
		if err != nil {
			return nil
		}
		var pcs []readline.PrefixCompleterInterface
		for _, name := range names {
			pcs = append(pcs, readline.PcItem(name))
		}
		return pcs
	}()

	items = append(items, tableItems...)
	items = append(items,
		readline.PcItem(".tables"),
		readline.PcItem(".schema", tableItems...),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
