// Package workflow drives the interactive confirmation loop between a
// proposed query and its outcome: preview, approve/reject/cancel, execute,
// then an optional PDF export offer.
//
// The state machine is fixed:
//
//	PROPOSED -> APPROVED | REJECTED | CANCELLED
//	APPROVED -> EXECUTED            (always, success or error)
//	EXECUTED -> EXPORT_OFFERED      (only when error-free and rows > 0)
//	EXPORT_OFFERED -> EXPORTED | EXPORT_DECLINED
//
// Validation is not this package's job; a candidate only reaches a session
// after it has been screened.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/askdb-labs/askdb/internal/render"
	"github.com/askdb-labs/askdb/internal/report"
	"github.com/askdb-labs/askdb/internal/sqlexec"
	"github.com/askdb-labs/askdb/pkg/core"
)

// State identifies where a session is in its lifecycle.
type State string

const (
	StateProposed       State = "PROPOSED"
	StateApproved       State = "APPROVED"
	StateRejected       State = "REJECTED"
	StateCancelled      State = "CANCELLED"
	StateExecuted       State = "EXECUTED"
	StateExportOffered  State = "EXPORT_OFFERED"
	StateExported       State = "EXPORTED"
	StateExportDeclined State = "EXPORT_DECLINED"
)

// Prompter reads one line of user input for a prompt. An error (EOF,
// interrupt) means the user is gone; the session resolves conservatively.
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// Exporter writes an executed result somewhere durable.
type Exporter interface {
	Export(res *sqlexec.Result, candidate core.CandidateQuery) (*report.Record, error)
}

// Outcome is the final word on one session.
type Outcome struct {
	State     State
	Result    *sqlexec.Result
	Export    *report.Record
	ExportErr string
}

// Session wires the confirmation loop to its collaborators. Out receives all
// user-facing text; Prompter supplies the answers.
type Session struct {
	Prompter Prompter
	Out      io.Writer
	Executor *sqlexec.Executor
	Exporter Exporter
	Logger   *slog.Logger

	// DatabaseInfo, when set, is shown in the preview banner so the user
	// knows which database the query will hit.
	DatabaseInfo string
}

const rule = 80

// Run takes one screened candidate through the full confirmation lifecycle
// and returns the outcome. It never returns an error: user retreat, backend
// failure and export failure are all ordinary outcomes.
func (s *Session) Run(ctx context.Context, conn sqlexec.Querier, candidate core.CandidateQuery) Outcome {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s.printPreview(candidate)
	logger.Debug("workflow state", slog.String("state", string(StateProposed)), slog.String("sql", candidate.SQL))

	decision := s.promptDecision()
	logger.Debug("workflow decision", slog.String("decision", decision.String()))

	switch decision {
	case DecisionReject:
		s.println("Query cancelled by user.")
		return s.finish(logger, Outcome{State: StateRejected})
	case DecisionCancel:
		s.println("Operation cancelled.")
		return s.finish(logger, Outcome{State: StateCancelled})
	}

	logger.Debug("workflow state", slog.String("state", string(StateApproved)))
	s.println("\nExecuting query...")

	result := s.Executor.Execute(ctx, conn, candidate.SQL)
	logger.Debug("workflow state",
		slog.String("state", string(StateExecuted)),
		slog.Int("rows", result.RowCount),
		slog.String("error", result.Err))

	if !result.OK() {
		s.printf("\nQuery Error: %s\n", result.Err)
		return s.finish(logger, Outcome{State: StateExecuted, Result: result})
	}

	s.printResults(result)

	if result.RowCount == 0 || s.Exporter == nil {
		return s.finish(logger, Outcome{State: StateExecuted, Result: result})
	}

	logger.Debug("workflow state", slog.String("state", string(StateExportOffered)))
	if !s.promptExport() {
		return s.finish(logger, Outcome{State: StateExportDeclined, Result: result})
	}

	rec, err := s.Exporter.Export(result, candidate)
	if err != nil {
		s.printf("\n✗ Error generating PDF: %s\n", err)
		return s.finish(logger, Outcome{State: StateExported, Result: result, ExportErr: err.Error()})
	}

	s.printf("\n✓ PDF generated successfully: %s\n", rec.Path)
	return s.finish(logger, Outcome{State: StateExported, Result: result, Export: rec})
}

// promptDecision loops until the user produces a recognizable answer.
// Invalid input re-prompts in place; EOF or interrupt means cancel.
func (s *Session) promptDecision() Decision {
	for {
		line, err := s.Prompter.ReadLine("\nExecute this query? (yes/no/cancel): ")
		if err != nil {
			s.println("")
			return DecisionCancel
		}
		if d := ParseDecision(line); d != DecisionInvalid {
			return d
		}
		s.println("Please enter 'yes', 'no', or 'cancel'.")
	}
}

// promptExport asks about PDF generation. Only yes/no count; walking away
// declines.
func (s *Session) promptExport() bool {
	for {
		line, err := s.Prompter.ReadLine("\nWould you like to generate a PDF with these results? (yes/no): ")
		if err != nil {
			return false
		}
		switch ParseYesNo(line) {
		case DecisionApprove:
			return true
		case DecisionReject:
			return false
		}
		s.println("Please enter 'yes' or 'no'.")
	}
}

func (s *Session) printPreview(candidate core.CandidateQuery) {
	s.println("\n" + strings.Repeat("=", rule))
	s.println("QUERY PREVIEW - Please Review")
	s.println(strings.Repeat("=", rule))

	if s.DatabaseInfo != "" {
		s.printf("\nDatabase Info: %s\n", s.DatabaseInfo)
	}

	s.println("\nProposed SQL Query:")
	s.println(strings.Repeat("-", rule))
	s.println(candidate.SQL)
	s.println(strings.Repeat("-", rule))
}

func (s *Session) printResults(result *sqlexec.Result) {
	s.println("\n" + strings.Repeat("=", rule))
	s.printf("Query Results: %d rows returned\n", result.RowCount)
	s.println(strings.Repeat("=", rule))

	if result.RowCount > 0 {
		s.println(render.Grid(result))
	}

	s.println("\n" + strings.Repeat("=", rule))
}

func (s *Session) finish(logger *slog.Logger, o Outcome) Outcome {
	logger.Info("workflow finished", slog.String("state", string(o.State)))
	return o
}

func (s *Session) println(msg string) {
	_, _ = fmt.Fprintln(s.Out, msg)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.Out, format, args...)
}
