// Package sqlexec runs already-approved SQL and materializes the full result
// set. It performs no validation of its own; screening happens exactly once,
// upstream, before a statement ever reaches this package.
package sqlexec

import (
	"context"
	"log/slog"
	"time"

	"github.com/askdb-labs/askdb/pkg/core"
)

// Querier is the slice of the adapter surface the executor needs.
type Querier interface {
	Query(ctx context.Context, sqlText string) (*core.Rows, error)
}

// Result is the eagerly fetched outcome of one statement. Err non-empty means
// the backend rejected the statement; Columns and Rows are empty in that case.
type Result struct {
	Columns  []string
	Rows     [][]any
	RowCount int
	Duration time.Duration
	Err      string
}

// OK reports whether the statement executed without a backend error.
func (r *Result) OK() bool {
	return r != nil && r.Err == ""
}

// Executor runs statements against a live connection.
type Executor struct {
	logger *slog.Logger
}

// New creates an Executor. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{logger: logger}
}

// Execute runs one statement and fetches every row into memory. It always
// returns a non-nil Result; backend failures land in Result.Err rather than
// an error value, so a broken query is data to report, not a reason to stop
// the session.
func (e *Executor) Execute(ctx context.Context, conn Querier, sqlText string) *Result {
	start := time.Now()

	rows, err := conn.Query(ctx, sqlText)
	if err != nil {
		return e.failed(sqlText, start, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return e.failed(sqlText, start, err)
	}

	fetched := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return e.failed(sqlText, start, err)
		}
		fetched = append(fetched, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return e.failed(sqlText, start, err)
	}

	res := &Result{
		Columns:  columns,
		Rows:     fetched,
		RowCount: len(fetched),
		Duration: time.Since(start),
	}

	e.logger.Debug("query executed",
		slog.String("sql", sqlText),
		slog.Int("rows", res.RowCount),
		slog.Duration("duration", res.Duration))

	return res
}

func (e *Executor) failed(sqlText string, start time.Time, err error) *Result {
	e.logger.Warn("query failed",
		slog.String("sql", sqlText),
		slog.String("error", err.Error()))

	return &Result{
		Duration: time.Since(start),
		Err:      err.Error(),
	}
}

// normalizeValues converts driver-specific raw bytes into strings so results
// render and serialize the same across backends.
func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
