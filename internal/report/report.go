// Package report exports query results as PDF documents. The layout mirrors
// the terminal presentation: title, the SQL that produced the data, a
// generated-at line, then the result grid with a shaded header and
// alternating row fills.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/askdb-labs/askdb/internal/sqlexec"
	"github.com/askdb-labs/askdb/pkg/core"
)

// DefaultOutputDir is where PDFs land when no export dir is configured.
const DefaultOutputDir = "query_results"

// Record describes one exported document.
type Record struct {
	Path        string
	GeneratedAt time.Time
}

// PDFWriter renders results into timestamped PDF files under OutputDir.
type PDFWriter struct {
	OutputDir string
	Title     string

	logger *slog.Logger
	now    func() time.Time
}

// NewPDFWriter creates a writer. Empty outputDir falls back to
// DefaultOutputDir; a nil logger is replaced with a discard logger.
func NewPDFWriter(outputDir string, logger *slog.Logger) *PDFWriter {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PDFWriter{
		OutputDir: outputDir,
		Title:     "Database Query Results",
		logger:    logger,
		now:       time.Now,
	}
}

// Export writes the result to a new PDF and returns its record. The output
// directory is created on demand. Failures here never disturb results that
// were already shown to the user; the caller reports the error and moves on.
func (w *PDFWriter) Export(res *sqlexec.Result, candidate core.CandidateQuery) (*Record, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	generatedAt := w.now()
	path := w.nextPath(generatedAt)

	if err := w.render(path, res, candidate, generatedAt); err != nil {
		return nil, err
	}

	w.logger.Info("pdf exported",
		slog.String("path", path),
		slog.Int("rows", res.RowCount))

	return &Record{Path: path, GeneratedAt: generatedAt}, nil
}

// nextPath builds query_results_YYYYMMDD_HHMMSS.pdf, appending _2, _3, ...
// when two exports land within the same second.
func (w *PDFWriter) nextPath(ts time.Time) string {
	base := fmt.Sprintf("query_results_%s", ts.Format("20060102_150405"))
	path := filepath.Join(w.OutputDir, base+".pdf")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(w.OutputDir, fmt.Sprintf("%s_%d.pdf", base, n))
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

const (
	cellTruncateAt = 100
	headerHeight   = 10.0
	rowHeight      = 8.0
)

func (w *PDFWriter) render(path string, res *sqlexec.Result, candidate core.CandidateQuery, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	// Title, brand blue, centered
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(31, 71, 136)
	pdf.CellFormat(0, 12, w.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// The query itself, monospaced
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, "Query:", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(102, 102, 102)
	pdf.MultiCell(0, 4, candidate.SQL, "", "L", false)
	pdf.Ln(3)

	// Metadata line
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(153, 153, 153)
	meta := fmt.Sprintf("Generated: %s | Rows: %d", generatedAt.Format("2006-01-02 15:04:05"), res.RowCount)
	pdf.CellFormat(0, 6, meta, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if res.RowCount == 0 || len(res.Columns) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 8, "No results returned from query", "", 1, "L", false, 0, "")
	} else {
		w.renderTable(pdf, res)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("generate pdf: %w", err)
	}
	return nil
}

func (w *PDFWriter) renderTable(pdf *fpdf.Fpdf, res *sqlexec.Result) {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(res.Columns))

	pdf.SetDrawColor(204, 204, 204)

	// Header row
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(31, 71, 136)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range res.Columns {
		pdf.CellFormat(colWidth, headerHeight, truncateCell(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Data rows, alternating fills
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range res.Rows {
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(240, 240, 240)
		}
		for c := range res.Columns {
			pdf.CellFormat(colWidth, rowHeight, truncateCell(cellText(row, c)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

func cellText(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if b, ok := row[i].([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", row[i])
}

func truncateCell(s string) string {
	if len(s) > cellTruncateAt {
		return s[:cellTruncateAt-3] + "..."
	}
	return s
}
