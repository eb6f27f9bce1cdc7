package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps CLI flag names onto config keys. Only flags listed here feed
// the config; anything else on a flag set stays command-local.
var flagKeys = map[string]string{
	"db-type":    "database.type",
	"db-path":    "database.path",
	"provider":   "llm.provider",
	"model":      "llm.model",
	"output":     "output.format",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"export-dir": "export.dir",
	"addr":       "server.addr",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > askdb.yaml > askdb.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"askdb.yaml", "askdb.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration in precedence order:
// defaults < config file < ASKDB_* env vars < explicitly-set flags.
// The result is not validated; callers that need a database decide when to
// run Validate so that commands like init and doctor can work from a broken
// or absent config.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database.type":   DefaultDatabaseType,
		"llm.provider":    DefaultProvider,
		"llm.temperature": 0.0,
		"llm.timeout":     DefaultTimeout,
		"export.dir":      DefaultExportDir,
		"output.format":   DefaultOutput,
		"logging.level":   DefaultLogLevel,
		"logging.format":  DefaultLogFormat,
		"server.addr":     DefaultServerAddr,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables: ASKDB_LLM__API_KEY -> llm.api_key
	if err := k.Load(env.Provider("ASKDB_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "ASKDB_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority, explicitly-set only)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	expandCredentials(&cfg)

	return &cfg, nil
}

// envVarRe matches ${VAR} references.
var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values. Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// expandCredentials expands environment variables in the fields that
// commonly hold secrets or deployment-specific endpoints.
func expandCredentials(cfg *Config) {
	db := &cfg.Database
	db.Path = expandEnvVars(db.Path)
	db.Host = expandEnvVars(db.Host)
	db.Database = expandEnvVars(db.Database)
	db.Username = expandEnvVars(db.Username)
	db.Password = expandEnvVars(db.Password)

	cfg.LLM.BaseURL = expandEnvVars(cfg.LLM.BaseURL)
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
}
