package nl2sql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/askdb-labs/askdb/pkg/core"
)

// Config selects the provider endpoint and model for the Client.
type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client is a Translator backed by an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient resolves the provider preset and builds a Client. Explicit
// BaseURL and Model values override the preset defaults; the custom provider
// requires an explicit BaseURL.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	preset, err := PresetFor(cfg.Provider)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = preset.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("llm.base_url is required for provider %q", cfg.Provider)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = preset.DefaultModel
	}
	if model == "" {
		return nil, fmt.Errorf("llm.model is required for provider %q", cfg.Provider)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if preset.NeedsAPIKey && apiKey == "" {
		return nil, fmt.Errorf("llm.api_key is required for provider %q", cfg.Provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// Model returns the model name the client sends with each request.
func (c *Client) Model() string {
	return c.model
}

// Translate asks the model for a single SQL query answering the question
// against the given schema context.
func (c *Client) Translate(ctx context.Context, question, schemaContext string) (core.CandidateQuery, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(question, schemaContext)},
		},
		"temperature": c.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return core.CandidateQuery{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return core.CandidateQuery{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.CandidateQuery{}, fmt.Errorf("request chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.CandidateQuery{}, fmt.Errorf("read chat response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return core.CandidateQuery{}, fmt.Errorf("chat completion failed status=%d body=%s", resp.StatusCode, string(rawBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return core.CandidateQuery{}, fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return core.CandidateQuery{}, fmt.Errorf("empty chat completion choices")
	}

	sqlText := ExtractSQL(parsed.Choices[0].Message.Content)
	if sqlText == "" {
		return core.CandidateQuery{}, fmt.Errorf("model returned empty SQL")
	}

	c.logger.Debug("query translated",
		slog.String("model", c.model),
		slog.Duration("duration", time.Since(start)),
		slog.String("sql", sqlText))

	return core.CandidateQuery{SQL: sqlText, Question: question}, nil
}

const systemPrompt = "You translate natural language questions into a single SQL query " +
	"for the database schema the user provides. Only SELECT statements are acceptable; " +
	"never produce DROP, TRUNCATE, DELETE, ALTER or CREATE statements, multiple statements, " +
	"or SQL comments. Always wrap your final SQL query in this format:\n" +
	"<sql_query>\nSELECT ... FROM ... WHERE ...\n</sql_query>"

func buildUserPrompt(question, schemaContext string) string {
	schemaContext = strings.TrimSpace(schemaContext)
	if schemaContext == "" {
		schemaContext = "Database schema not provided."
	}
	return fmt.Sprintf("Database Schema:\n%s\n\nQuestion: %s\n\nReturn the complete SQL query that answers this question. The user will review and confirm before execution.",
		schemaContext, strings.TrimSpace(question))
}
