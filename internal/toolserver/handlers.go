package toolserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/askdb-labs/askdb/internal/tools"
	"github.com/askdb-labs/askdb/pkg/core"
)

// previewParams are the tool-call arguments for preview_query.
type previewParams struct {
	Question string `mapstructure:"question"`
}

// executeParams are the tool-call arguments for execute_query.
type executeParams struct {
	SQL      string `mapstructure:"sql"`
	Question string `mapstructure:"question"`
}

// tableSchema is one table of the schema response.
type tableSchema struct {
	Name    string        `json:"name"`
	Columns []core.Column `json:"columns"`
}

// schemaResponse is the get_schema payload.
type schemaResponse struct {
	Tables []tableSchema `json:"tables"`
}

// previewResponse carries the candidate SQL and its screening verdict.
type previewResponse struct {
	SQL      string `json:"sql"`
	Question string `json:"question,omitempty"`
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason,omitempty"`
}

// executeResponse is the outcome of one execution attempt. A blocked query
// and a backend error are both domain outcomes and travel as 200s; only
// transport problems produce non-200 statuses.
type executeResponse struct {
	Blocked    bool     `json:"blocked"`
	Reason     string   `json:"reason,omitempty"`
	Columns    []string `json:"columns,omitempty"`
	Rows       [][]any  `json:"rows,omitempty"`
	RowCount   int      `json:"row_count"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handlers provides the HTTP handlers for the tool endpoints.
type Handlers struct {
	toolkit *tools.Toolkit
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(toolkit *tools.Toolkit, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{toolkit: toolkit, logger: logger}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSchema handles POST /v1/tools/get_schema. The operation takes no
// parameters, so any request body is ignored.
func (h *Handlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	desc, err := h.toolkit.GetSchema(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}

	resp := schemaResponse{Tables: make([]tableSchema, 0, len(desc.Tables))}
	for _, t := range desc.Tables {
		resp.Tables = append(resp.Tables, tableSchema{Name: t.Name, Columns: t.Columns})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// PreviewQuery handles POST /v1/tools/preview_query. The response always
// carries the candidate SQL, even when the verdict blocked it, so the caller
// can show what was refused and why.
func (h *Handlers) PreviewQuery(w http.ResponseWriter, r *http.Request) {
	var params previewParams
	if err := decodeParams(r, &params); err != nil {
		h.badRequest(w, err)
		return
	}
	if strings.TrimSpace(params.Question) == "" {
		h.badRequest(w, errors.New("question is required"))
		return
	}

	candidate, verdict, err := h.toolkit.PreviewQuery(r.Context(), params.Question)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, previewResponse{
		SQL:      candidate.SQL,
		Question: candidate.Question,
		Allowed:  verdict.Allowed,
		Reason:   verdict.Reason,
	})
}

// ExecuteQuery handles POST /v1/tools/execute_query. The toolkit screens the
// statement itself; callers of this endpoint never bypass validation.
func (h *Handlers) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var params executeParams
	if err := decodeParams(r, &params); err != nil {
		h.badRequest(w, err)
		return
	}
	if strings.TrimSpace(params.SQL) == "" {
		h.badRequest(w, errors.New("sql is required"))
		return
	}

	outcome := h.toolkit.ExecuteQuery(r.Context(), core.CandidateQuery{
		SQL:      params.SQL,
		Question: params.Question,
	})

	resp := executeResponse{Blocked: outcome.Blocked, Reason: outcome.Reason}
	if outcome.Result != nil {
		resp.Columns = outcome.Result.Columns
		resp.Rows = outcome.Result.Rows
		resp.RowCount = outcome.Result.RowCount
		resp.DurationMS = outcome.Result.Duration.Milliseconds()
		resp.Error = outcome.Result.Err
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// decodeParams reads the body as a generic JSON object and maps it into the
// typed params struct. Tool calls arrive as loosely typed JSON the way a
// model emits them, so decoding is two-step: parse, then coerce with weak
// typing so a quoted number still lands in a numeric field.
func decodeParams(r *http.Request, out any) error {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return fmt.Errorf("parse request body: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func (h *Handlers) badRequest(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *Handlers) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("tool call failed", slog.String("error", err.Error()))
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response failed", slog.String("error", err.Error()))
	}
}
