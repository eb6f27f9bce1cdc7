package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/config"
	"github.com/askdb-labs/askdb/internal/tools"
	"github.com/askdb-labs/askdb/internal/toolserver"
	"github.com/askdb-labs/askdb/pkg/adapter"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query tools over HTTP",
		Long: `Expose the three tool operations as JSON endpoints:

  POST /v1/tools/get_schema      schema snapshot
  POST /v1/tools/preview_query   question -> screened SQL candidate
  POST /v1/tools/execute_query   screened execution
  GET  /healthz                  liveness

Statements arriving over HTTP pass the same validator as interactive ones.
There is no approval prompt; blocked statements are refused and the refusal
reported in the response. One database connection is opened for the lifetime
of the server and closed with it.`,
		Example: `  # Serve on the configured address (default :8000)
  askdb serve

  # Pick a port
  askdb serve --addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			translator, err := cc.NewTranslator()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cc.WithDatabase(ctx, func(conn adapter.Adapter) error {
				srv := toolserver.NewServer(toolserver.Config{
					Addr:    cc.Cfg.Server.Addr,
					Toolkit: tools.New(conn, translator, cc.Logger),
					Logger:  cc.Logger,
				})
				return srv.Serve(ctx)
			})
		},
	}

	cmd.Flags().String("addr", config.DefaultServerAddr, "Listen address (host:port)")

	return cmd
}
