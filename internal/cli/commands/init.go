package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/askdb-labs/askdb/internal/config"
	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/internal/sampledb"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var sample bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter configuration",
		Long: `Write a starter askdb.yaml and optionally a demo database.

The starter config points at a local sqlite file and the ollama provider, so
a locally running model works with zero further setup. Providers that need
an API key (openai, anthropic, google) prompt for it when run in a terminal;
the key can always be supplied later via ASKDB_LLM__API_KEY.

With --sample, a demo sqlite database (customers, orders, products) is
created alongside, ready for questions.`,
		Example: `  # Initialize in the current directory
  askdb init

  # Starter config plus the demo database
  askdb init --sample

  # A different provider, in a new directory
  askdb init my-project --provider openai

  # Force overwrite existing config
  askdb init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, sample)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&sample, "sample", false, "Create the demo sqlite database")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, sample bool) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "askdb.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("askdb.yaml already exists. Use --force to overwrite")
	}

	provider := cc.Cfg.LLM.Provider
	apiKey := promptAPIKey(cmd, provider)

	content, err := starterConfig(provider, cc.Cfg.LLM.Model, apiKey)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.Success(configPath)

	if sample {
		dbPath := filepath.Join(dir, sampledb.DefaultPath)
		if err := sampledb.Create(dbPath, cc.Logger); err != nil {
			return fmt.Errorf("failed to create sample database: %w", err)
		}
		r.Success(dbPath)
	}

	r.Println("")
	r.Success("askdb initialized!")
	r.Println("")
	r.Println("Next steps:")
	if sample {
		r.Println("  1. Run 'askdb doctor' to verify the setup")
		r.Println("  2. Run 'askdb chat' to start asking questions")
		r.Println(`  3. Try: askdb ask "How many customers do we have?"`)
	} else {
		r.Println("  1. Edit askdb.yaml to point at your database (or rerun with --sample for a demo)")
		r.Println("  2. Run 'askdb doctor' to verify the setup")
		r.Println("  3. Run 'askdb chat' to start asking questions")
	}

	return nil
}

// promptAPIKey asks for a key when the provider needs one and a terminal is
// attached. Skipping is fine; the key can come from the environment later.
func promptAPIKey(cmd *cobra.Command, provider string) string {
	preset, err := nl2sql.PresetFor(provider)
	if err != nil || !preset.NeedsAPIKey || !stdinIsTerminal() {
		return ""
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key for %s (leave empty to configure later): ", provider)
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(key))
}

// starterConfig renders the initial askdb.yaml. Keys mirror the koanf
// sections so the file round-trips through config.Load.
func starterConfig(provider, model, apiKey string) ([]byte, error) {
	llm := map[string]any{
		"provider": provider,
		"timeout":  config.DefaultTimeout,
	}
	if model != "" {
		llm["model"] = model
	}
	if apiKey != "" {
		llm["api_key"] = apiKey
	}

	starter := map[string]any{
		"database": map[string]any{
			"type": config.DefaultDatabaseType,
			"path": sampledb.DefaultPath,
		},
		"llm": llm,
		"export": map[string]any{
			"dir": config.DefaultExportDir,
		},
		"output": map[string]any{
			"format": config.DefaultOutput,
		},
		"logging": map[string]any{
			"level":  config.DefaultLogLevel,
			"format": config.DefaultLogFormat,
		},
		"server": map[string]any{
			"addr": config.DefaultServerAddr,
		},
	}

	var buf bytes.Buffer
	buf.WriteString("# askdb configuration\n")
	buf.WriteString("# Any value can be overridden with an ASKDB_SECTION__KEY environment variable.\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starter); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
