package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/askdb-labs/askdb/internal/cli/output"
	"github.com/askdb-labs/askdb/internal/config"
	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store logger in context.
type loggerKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// WithDeps returns a context carrying the per-invocation dependencies. The
// root command stores them once config and flags are resolved; commands read
// them back through GetConfig, GetLogger and GetRenderer.
func WithDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger, r *output.Renderer) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	ctx = context.WithValue(ctx, loggerKey{}, logger)
	ctx = context.WithValue(ctx, rendererKey{}, r)
	return ctx
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Database: core.ConnectionConfig{Type: config.DefaultDatabaseType},
		LLM:      config.LLMConfig{Provider: config.DefaultProvider, Timeout: config.DefaultTimeout},
		Export:   config.ExportConfig{Dir: config.DefaultExportDir},
		Output:   config.OutputConfig{Format: config.DefaultOutput},
		Logging:  config.LoggingConfig{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat},
		Server:   config.ServerConfig{Addr: config.DefaultServerAddr},
	}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(cmd *cobra.Command) *output.Renderer {
	if r, ok := cmd.Context().Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles the dependencies the root command stored on
// the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:      GetConfig(cmd.Context()),
		Logger:   GetLogger(cmd.Context()),
		Renderer: GetRenderer(cmd),
	}
}

// WithDatabase validates the database settings and runs fn over an open
// connection. The connection is released when fn returns, on every path.
func (c *CommandContext) WithDatabase(ctx context.Context, fn func(adapter.Adapter) error) error {
	if err := c.Cfg.Validate(); err != nil {
		return err
	}
	return adapter.WithConnection(ctx, c.Cfg.Database, c.Logger, fn)
}

// NewTranslator builds the LLM translation client from the llm section.
func (c *CommandContext) NewTranslator() (nl2sql.Translator, error) {
	return nl2sql.NewClient(c.Cfg.LLM.ClientConfig(), c.Logger)
}

// databaseInfo is the connection summary shown in query preview banners.
func databaseInfo(db core.ConnectionConfig) string {
	switch db.Type {
	case "sqlite", "duckdb":
		if db.Path == "" {
			return db.Type
		}
		return fmt.Sprintf("%s (%s)", db.Type, db.Path)
	default:
		if db.Host == "" && db.Database == "" {
			return db.Type
		}
		return fmt.Sprintf("%s (%s:%d/%s)", db.Type, db.Host, db.Port, db.Database)
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
