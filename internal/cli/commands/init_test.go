package commands

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb-labs/askdb/internal/config"
)

// initTestConfig is the minimal config init needs: a provider for the
// starter file and an output format for the renderer.
func initTestConfig() *config.Config {
	return &config.Config{
		LLM:    config.LLMConfig{Provider: config.DefaultProvider},
		Output: config.OutputConfig{Format: "text"},
	}
}

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string) // setup before running
		args     []string
		wantErr  string
	}{
		{
			name: "init empty directory",
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "askdb.yaml"), []byte("existing"), 0600)
			},
			wantErr: "already exists",
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "askdb.yaml"), []byte("existing"), 0600)
			},
			args: []string{"--force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp directory and change to it
			tmpDir := t.TempDir()
			oldWd, _ := os.Getwd()
			require.NoError(t, os.Chdir(tmpDir))
			defer func() { _ = os.Chdir(oldWd) }()

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			_, _, err := execCommand(t, NewInitCommand(), initTestConfig(), tt.args, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			content, err := os.ReadFile(filepath.Join(tmpDir, "askdb.yaml"))
			require.NoError(t, err)
			assert.Contains(t, string(content), "type: sqlite")
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("sample"), "--sample flag should exist")
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	_, _, err := execCommand(t, NewInitCommand(), initTestConfig(), nil, "")
	require.NoError(t, err)

	content, err := os.ReadFile("askdb.yaml")
	require.NoError(t, err, "failed to read askdb.yaml")

	expectedContents := []string{
		"type: sqlite",
		"path: sample_database.db",
		"provider: ollama",
		"dir: query_results",
		"addr: :8000",
	}
	for _, expected := range expectedContents {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}

	// The starter file must round-trip through the loader and validate.
	cfg, err := config.Load("askdb.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	require.NoError(t, cfg.Validate())
}

func TestInitSample(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	_, _, err := execCommand(t, NewInitCommand(), initTestConfig(), []string{"--sample"}, "")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", "sample_database.db")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())

	assert.Contains(t, tables, "customers")
	assert.Contains(t, tables, "orders")
	assert.Contains(t, tables, "products")
	assert.NotContains(t, tables, "goose_db_version")

	var customers int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&customers))
	assert.Positive(t, customers)
}

func TestInitTargetDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	_, _, err := execCommand(t, NewInitCommand(), initTestConfig(), []string{"myproject", "--sample"}, "")
	require.NoError(t, err)

	for _, f := range []string{"askdb.yaml", "sample_database.db"} {
		_, err := os.Stat(filepath.Join(tmpDir, "myproject", f))
		assert.NoError(t, err, "expected %s in myproject/", f)
	}
}
