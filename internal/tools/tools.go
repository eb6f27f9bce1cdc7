// Package tools is the fixed tool surface exposed to LLM-driven callers:
// get the schema, preview a query for a question, execute an approved query.
// The method set is deliberately closed; growing it means widening what a
// model can ask the system to do.
package tools

import (
	"context"
	"log/slog"

	"github.com/askdb-labs/askdb/internal/nl2sql"
	"github.com/askdb-labs/askdb/internal/safety"
	"github.com/askdb-labs/askdb/internal/schema"
	"github.com/askdb-labs/askdb/internal/sqlexec"
	"github.com/askdb-labs/askdb/pkg/adapter"
	"github.com/askdb-labs/askdb/pkg/core"
)

// ToolResult is the outcome of ExecuteQuery. A blocked query is a domain
// outcome, not an error: Blocked carries the verdict, Result carries the
// execution outcome when the query was allowed to run.
type ToolResult struct {
	Blocked bool
	Reason  string
	Result  *sqlexec.Result
}

// Toolkit bundles the three tool operations over one open connection.
// The caller owns the connection's lifecycle; the toolkit keeps no state
// of its own beyond its collaborators, so one instance is safe for
// concurrent requests.
type Toolkit struct {
	conn       adapter.Adapter
	translator nl2sql.Translator
	executor   *sqlexec.Executor
	logger     *slog.Logger
}

// New builds a toolkit over an open connection. translator may be nil when
// only GetSchema/ExecuteQuery are needed; PreviewQuery then fails.
func New(conn adapter.Adapter, translator nl2sql.Translator, logger *slog.Logger) *Toolkit {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Toolkit{
		conn:       conn,
		translator: translator,
		executor:   sqlexec.New(logger),
		logger:     logger,
	}
}

// GetSchema returns a fresh snapshot of the connected database's tables.
func (t *Toolkit) GetSchema(ctx context.Context) (*schema.Descriptor, error) {
	return schema.Describe(ctx, t.conn)
}

// PreviewQuery turns a natural-language question into a screened candidate.
// The verdict travels alongside the candidate; a blocked candidate is still
// returned so the caller can show the user what was refused and why.
func (t *Toolkit) PreviewQuery(ctx context.Context, question string) (core.CandidateQuery, safety.Verdict, error) {
	desc, err := t.GetSchema(ctx)
	if err != nil {
		return core.CandidateQuery{}, safety.Verdict{}, err
	}

	candidate, err := t.translator.Translate(ctx, question, desc.PromptContext())
	if err != nil {
		return core.CandidateQuery{}, safety.Verdict{}, err
	}

	verdict := safety.Validate(candidate.SQL)
	if !verdict.Allowed {
		t.logger.Info("candidate blocked",
			slog.String("reason", verdict.Reason),
			slog.String("sql", candidate.SQL))
	}

	return candidate, verdict, nil
}

// ExecuteQuery screens and runs a candidate. This is the enforcement point
// for callers that arrive without a preview step; the interactive workflow
// never goes through here because it validated at preview time.
func (t *Toolkit) ExecuteQuery(ctx context.Context, candidate core.CandidateQuery) ToolResult {
	verdict := safety.Validate(candidate.SQL)
	if !verdict.Allowed {
		t.logger.Info("execution blocked",
			slog.String("reason", verdict.Reason),
			slog.String("sql", candidate.SQL))
		return ToolResult{Blocked: true, Reason: verdict.Reason}
	}

	return ToolResult{Result: t.executor.Execute(ctx, t.conn, candidate.SQL)}
}
