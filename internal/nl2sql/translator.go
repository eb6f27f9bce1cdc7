// Package nl2sql turns natural-language questions into candidate SQL by
// calling an OpenAI-compatible chat completions endpoint. Every supported
// provider (OpenAI, Ollama, Anthropic, Google, or a custom gateway) is
// reached through the same wire protocol; only base URL, credentials and
// default model differ.
package nl2sql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/askdb-labs/askdb/pkg/core"
)

// Translator produces a candidate query for a question, grounded on the
// schema context text. Implementations must not execute anything.
type Translator interface {
	Translate(ctx context.Context, question, schemaContext string) (core.CandidateQuery, error)
}

// Preset carries the per-provider connection defaults.
type Preset struct {
	BaseURL      string
	DefaultModel string
	NeedsAPIKey  bool
}

// presets maps provider names to their OpenAI-compatible endpoints.
var presets = map[string]Preset{
	"openai": {
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-3.5-turbo",
		NeedsAPIKey:  true,
	},
	"ollama": {
		BaseURL:      "http://localhost:11434/v1",
		DefaultModel: "llama2",
		NeedsAPIKey:  false,
	},
	"anthropic": {
		BaseURL:      "https://api.anthropic.com/v1",
		DefaultModel: "claude-2",
		NeedsAPIKey:  true,
	},
	"google": {
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		DefaultModel: "gemini-pro",
		NeedsAPIKey:  true,
	},
	"custom": {
		NeedsAPIKey: false,
	},
}

// PresetFor returns the preset for a provider name (case-insensitive).
func PresetFor(provider string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown llm provider %q (valid: %s)", provider, strings.Join(ProviderNames(), ", "))
	}
	return p, nil
}

// ProviderNames returns the supported provider names, sorted.
func ProviderNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
