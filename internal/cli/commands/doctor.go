package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/cli/output"
	"github.com/askdb-labs/askdb/internal/config"
	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/internal/schema"
	"github.com/askdb-labs/askdb/pkg/adapter"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, database and LLM connectivity",
		Long: `Check every part of the setup and report what works and what doesn't.

The doctor runs even when the configuration is incomplete, so it is the
first thing to reach for when askdb misbehaves. It covers:
- Configuration: file discovery and setting validity
- Database: connection and schema visibility
- LLM: provider, credentials, endpoint reachability
- Export: report directory writability

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health checks
  askdb doctor

  # Output as JSON
  askdb doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SetupSummary  `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SetupSummary describes the configuration under diagnosis.
type SetupSummary struct {
	ConfigFile string `json:"config_file,omitempty"`
	Database   string `json:"database"`
	Provider   string `json:"provider"`
	Model      string `json:"model,omitempty"`
	ExportDir  string `json:"export_dir"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.OutputMode(opts.Format))
	}

	doctorOutput := buildDoctorOutput(cmd.Context(), cc)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(ctx context.Context, cc *CommandContext) *DoctorOutput {
	cfg := cc.Cfg

	checks := []HealthCheck{
		checkConfigFile(cfg),
		checkSettings(cfg),
	}
	checks = append(checks, checkDatabase(ctx, cc)...)
	checks = append(checks, checkLLM(ctx, cfg)...)
	checks = append(checks, checkExportDir(cfg))

	issues := 0
	for _, check := range checks {
		if check.Status != "pass" {
			issues++
		}
	}

	return &DoctorOutput{
		Summary: SetupSummary{
			ConfigFile: cfg.File,
			Database:   databaseInfo(cfg.Database),
			Provider:   cfg.LLM.Provider,
			Model:      cfg.LLM.Model,
			ExportDir:  exportDir(cfg),
		},
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func checkConfigFile(cfg *config.Config) HealthCheck {
	if cfg.File == "" {
		return HealthCheck{
			Name:   "config file",
			Group:  "configuration",
			Status: "warn",
			Detail: "no askdb.yaml found, running on defaults",
		}
	}
	return HealthCheck{Name: "config file", Group: "configuration", Status: "pass", Detail: cfg.File}
}

func checkSettings(cfg *config.Config) HealthCheck {
	if err := cfg.Validate(); err != nil {
		return HealthCheck{Name: "settings", Group: "configuration", Status: "error", Detail: err.Error()}
	}
	return HealthCheck{Name: "settings", Group: "configuration", Status: "pass"}
}

// checkDatabase connects, then inspects the schema over the live connection.
// Invalid settings skip the attempt; the settings check already reported why.
func checkDatabase(ctx context.Context, cc *CommandContext) []HealthCheck {
	if err := cc.Cfg.Validate(); err != nil {
		return []HealthCheck{{
			Name:   "connection",
			Group:  "database",
			Status: "warn",
			Detail: "skipped while settings are invalid",
		}}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var checks []HealthCheck
	err := adapter.WithConnection(ctx, cc.Cfg.Database, cc.Logger, func(conn adapter.Adapter) error {
		checks = append(checks, HealthCheck{Name: "connection", Group: "database", Status: "pass", Detail: databaseInfo(cc.Cfg.Database)})

		desc, err := schema.Describe(ctx, conn)
		switch {
		case err != nil:
			checks = append(checks, HealthCheck{Name: "schema", Group: "database", Status: "error", Detail: err.Error()})
		case desc.IsEmpty():
			checks = append(checks, HealthCheck{Name: "schema", Group: "database", Status: "warn", Detail: "no tables found in database"})
		default:
			checks = append(checks, HealthCheck{Name: "schema", Group: "database", Status: "pass", Detail: fmt.Sprintf("%d tables", len(desc.Tables))})
		}
		return nil
	})
	if err != nil {
		checks = append(checks, HealthCheck{Name: "connection", Group: "database", Status: "error", Detail: err.Error()})
	}

	return checks
}

func checkLLM(ctx context.Context, cfg *config.Config) []HealthCheck {
	preset, err := nl2sql.PresetFor(cfg.LLM.Provider)
	if err != nil {
		return []HealthCheck{{Name: "provider", Group: "llm", Status: "error", Detail: err.Error()}}
	}

	checks := []HealthCheck{{Name: "provider", Group: "llm", Status: "pass", Detail: cfg.LLM.Provider}}

	switch {
	case !preset.NeedsAPIKey:
		checks = append(checks, HealthCheck{Name: "api key", Group: "llm", Status: "pass", Detail: "not required"})
	case cfg.LLM.APIKey == "":
		checks = append(checks, HealthCheck{Name: "api key", Group: "llm", Status: "warn", Detail: "llm.api_key is empty"})
	default:
		checks = append(checks, HealthCheck{Name: "api key", Group: "llm", Status: "pass"})
	}

	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = preset.BaseURL
	}
	if baseURL == "" {
		checks = append(checks, HealthCheck{Name: "endpoint", Group: "llm", Status: "error", Detail: "llm.base_url is required for this provider"})
		return checks
	}

	checks = append(checks, checkEndpoint(ctx, baseURL))
	return checks
}

// checkEndpoint probes the LLM base URL. Any HTTP response proves something
// is listening; auth and path errors are the client's problem, not the
// doctor's. Unreachable is a warning since local model servers come and go.
func checkEndpoint(ctx context.Context, baseURL string) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return HealthCheck{Name: "endpoint", Group: "llm", Status: "warn", Detail: err.Error()}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return HealthCheck{Name: "endpoint", Group: "llm", Status: "warn", Detail: fmt.Sprintf("%s unreachable", baseURL)}
	}
	_ = resp.Body.Close()

	return HealthCheck{Name: "endpoint", Group: "llm", Status: "pass", Detail: baseURL}
}

func checkExportDir(cfg *config.Config) HealthCheck {
	dir := exportDir(cfg)

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return HealthCheck{Name: "directory", Group: "export", Status: "pass", Detail: dir + " (created on first export)"}
	case err != nil:
		return HealthCheck{Name: "directory", Group: "export", Status: "warn", Detail: err.Error()}
	case !info.IsDir():
		return HealthCheck{Name: "directory", Group: "export", Status: "error", Detail: dir + " exists and is not a directory"}
	}

	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return HealthCheck{Name: "directory", Group: "export", Status: "error", Detail: "not writable: " + err.Error()}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return HealthCheck{Name: "directory", Group: "export", Status: "pass", Detail: dir}
}

func exportDir(cfg *config.Config) string {
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	return config.DefaultExportDir
}

// calculateHealthScore computes a health score from 0-100. Errors weigh
// harder than warnings.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100.0

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 25
		case "warn":
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.Status == "pass" {
			continue
		}

		rec := getRecommendation(check.Group + "/" + check.Name)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	return recommendations
}

// getRecommendation returns a recommendation for a failing check.
func getRecommendation(check string) string {
	switch check {
	case "configuration/config file":
		return "Run 'askdb init' to create a starter askdb.yaml"
	case "configuration/settings":
		return "Fix the reported setting in askdb.yaml (or the matching ASKDB_* variable)"
	case "database/connection":
		return "Verify the database server is running and database.* points at it"
	case "database/schema":
		return "Run 'askdb init --sample' to create a demo database to explore"
	case "llm/provider":
		return "Set llm.provider to one of: " + strings.Join(nl2sql.ProviderNames(), ", ")
	case "llm/api key":
		return "Set ASKDB_LLM__API_KEY or llm.api_key in askdb.yaml"
	case "llm/endpoint":
		return "Start the model server (for ollama: 'ollama serve') or fix llm.base_url"
	case "export/directory":
		return "Point export.dir at a writable directory"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("askdb Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Setup Summary
	r.Println(styles.Header2.Render("Setup"))
	if out.Summary.ConfigFile != "" {
		r.Printf("   Config: %s\n", out.Summary.ConfigFile)
	} else {
		r.Printf("   Config: defaults (no askdb.yaml)\n")
	}
	r.Printf("   Database: %s\n", out.Summary.Database)
	if out.Summary.Model != "" {
		r.Printf("   LLM: %s (%s)\n", out.Summary.Provider, out.Summary.Model)
	} else {
		r.Printf("   LLM: %s\n", out.Summary.Provider)
	}
	r.Printf("   Export dir: %s\n", out.Summary.ExportDir)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s", icon, check.Name)
		if check.Detail != "" {
			status += styles.Muted.Render(" (" + check.Detail + ")")
		}
		r.Println("   " + status)
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# askdb Health Report")
	r.Println("")

	// Setup Summary
	r.Println("## Setup")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config**: %s\n", out.Summary.ConfigFile)
	} else {
		r.Println("- **Config**: defaults (no askdb.yaml)")
	}
	r.Printf("- **Database**: %s\n", out.Summary.Database)
	r.Printf("- **Provider**: %s\n", out.Summary.Provider)
	if out.Summary.Model != "" {
		r.Printf("- **Model**: %s\n", out.Summary.Model)
	}
	r.Printf("- **Export dir**: %s\n", out.Summary.ExportDir)
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s", status, check.Name)
		if check.Detail != "" {
			r.Printf(": %s", check.Detail)
		}
		r.Println("")
	}
	r.Println("")

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
