package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestNewClient_Presets(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "ollama needs no key",
			cfg:  Config{Provider: "ollama"},
		},
		{
			name:    "openai requires key",
			cfg:     Config{Provider: "openai"},
			wantErr: "api_key",
		},
		{
			name:    "custom requires base url",
			cfg:     Config{Provider: "custom", Model: "local"},
			wantErr: "base_url",
		},
		{
			name:    "custom requires model",
			cfg:     Config{Provider: "custom", BaseURL: "http://localhost:8081/v1"},
			wantErr: "model",
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "skynet"},
			wantErr: "unknown llm provider",
		},
		{
			name: "explicit model overrides preset",
			cfg:  Config{Provider: "ollama", Model: "sqlcoder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
		})
	}
}

func TestNewClient_DefaultModels(t *testing.T) {
	c, err := NewClient(Config{Provider: "ollama"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "llama2", c.Model())

	c, err = NewClient(Config{Provider: "openai", APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", c.Model())
}

func TestClient_Translate(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(
			"<sql_query>\nSELECT * FROM customers WHERE country = 'USA'\n</sql_query>"))
	}))
	defer ts.Close()

	c, err := NewClient(Config{
		Provider: "custom",
		BaseURL:  ts.URL,
		APIKey:   "test-key",
		Model:    "sqlcoder",
	}, nil)
	require.NoError(t, err)

	cq, err := c.Translate(context.Background(), "show me all customers from the USA", "Table 'customers': id (INTEGER), name (TEXT), country (TEXT)")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM customers WHERE country = 'USA'", cq.SQL)
	assert.Equal(t, "show me all customers from the USA", cq.Question)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sqlcoder", gotPayload["model"])

	messages, ok := gotPayload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Contains(t, user["content"], "Table 'customers'")
	assert.Contains(t, user["content"], "show me all customers from the USA")
}

func TestClient_Translate_FenceFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("```sql\nSELECT COUNT(*) FROM orders\n```"))
	}))
	defer ts.Close()

	c, err := NewClient(Config{Provider: "custom", BaseURL: ts.URL, Model: "m"}, nil)
	require.NoError(t, err)

	cq, err := c.Translate(context.Background(), "how many orders", "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", cq.SQL)
}

func TestClient_Translate_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, err := NewClient(Config{Provider: "custom", BaseURL: ts.URL, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = c.Translate(context.Background(), "anything", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}

func TestClient_Translate_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	c, err := NewClient(Config{Provider: "custom", BaseURL: ts.URL, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = c.Translate(context.Background(), "anything", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty chat completion choices")
}

func TestClient_Translate_EmptySQL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("I could not find a query for that."))
	}))
	defer ts.Close()

	c, err := NewClient(Config{Provider: "custom", BaseURL: ts.URL, Model: "m"}, nil)
	require.NoError(t, err)

	cq, err := c.Translate(context.Background(), "gibberish", "")
	// Prose with no tags or fences comes back as-is; the validator is the
	// gate that decides whether it is runnable SQL.
	require.NoError(t, err)
	assert.Equal(t, "I could not find a query for that.", cq.SQL)
}
