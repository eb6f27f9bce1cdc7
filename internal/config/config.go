// Package config loads and validates askdb configuration from a YAML file,
// ASKDB_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// Config holds all askdb configuration options.
type Config struct {
	Database core.ConnectionConfig `koanf:"database"`
	LLM      LLMConfig             `koanf:"llm"`
	Export   ExportConfig          `koanf:"export"`
	Output   OutputConfig          `koanf:"output"`
	Logging  LoggingConfig         `koanf:"logging"`
	Server   ServerConfig          `koanf:"server"`

	// File is the config file the values were loaded from, empty when
	// running on defaults alone.
	File string `koanf:"-"`
}

// LLMConfig selects the translation provider, endpoint and model.
type LLMConfig struct {
	Provider    string  `koanf:"provider"`
	BaseURL     string  `koanf:"base_url"`
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	Timeout     int     `koanf:"timeout"` // seconds
}

// ClientConfig converts the section into the translator client's config.
func (l LLMConfig) ClientConfig() nl2sql.Config {
	return nl2sql.Config{
		Provider:    l.Provider,
		BaseURL:     l.BaseURL,
		APIKey:      l.APIKey,
		Model:       l.Model,
		Temperature: l.Temperature,
		Timeout:     time.Duration(l.Timeout) * time.Second,
	}
}

// ExportConfig controls PDF report generation.
type ExportConfig struct {
	Dir string `koanf:"dir"`
}

// OutputConfig controls how query results are rendered.
type OutputConfig struct {
	Format string `koanf:"format"` // auto, text, markdown, json
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Default configuration values.
const (
	DefaultDatabaseType = "sqlite"
	DefaultProvider     = "ollama"
	DefaultTimeout      = 60
	DefaultExportDir    = "query_results"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultServerAddr   = ":8000"
)

// Validate checks that the configuration selects a registered backend with
// its required fields present, and a known LLM provider.
func (c *Config) Validate() error {
	dbType := strings.ToLower(strings.TrimSpace(c.Database.Type))
	if dbType == "" {
		return fmt.Errorf("database.type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(dbType) {
		return &adapter.UnknownAdapterError{
			Type:      c.Database.Type,
			Available: adapter.ListAdapters(),
		}
	}

	switch dbType {
	case "sqlite", "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for %s", dbType)
		}
	default:
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for %s", dbType)
		}
	}

	if _, err := nl2sql.PresetFor(c.LLM.Provider); err != nil {
		return err
	}

	return nil
}
