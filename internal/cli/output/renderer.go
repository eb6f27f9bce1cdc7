// Package output handles terminal rendering for askdb commands: output mode
// resolution (styled text, markdown, JSON), lipgloss styles that degrade on
// dumb terminals, and small markdown formatting helpers.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects how command output is rendered.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// OutputMode normalizes a user-supplied format string into a Mode.
// Unknown values resolve to ModeAuto.
func OutputMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeText:
		return ModeText
	case ModeMarkdown, "md":
		return ModeMarkdown
	case ModeJSON:
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Styles bundles the lipgloss styles commands render with.
// StatusSuccess/StatusFailed carry their glyphs via SetString.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

func buildStyles(lr *lipgloss.Renderer) Styles {
	return Styles{
		Header1:       lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:          lr.NewStyle().Bold(true),
		Muted:         lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lr.NewStyle().Foreground(lipgloss.Color("9")),
		StatusSuccess: lr.NewStyle().SetString("✓").Foreground(lipgloss.Color("10")),
		StatusFailed:  lr.NewStyle().SetString("✗").Foreground(lipgloss.Color("9")),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer builds a renderer over the given writers. ModeAuto resolves to
// styled text on a terminal and markdown when piped; the color profile comes
// from the stdout writer, so styles collapse to plain text off-terminal.
func NewRenderer(stdout, stderr io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}

	profile := termenv.NewOutput(stdout).Profile

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		isTTY:  profile != termenv.Ascii,
		styles: buildStyles(lipgloss.NewRenderer(stdout)),
	}
}

// Styles returns the renderer's style set.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// EffectiveMode resolves ModeAuto against the terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Println writes a line to stdout.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.stdout, a...)
}

// Printf writes formatted output to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.stdout, format, a...)
}

// JSON writes v as indented JSON to stdout.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success prints a check-marked line to stdout.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.StatusSuccess.String() + " " + msg)
}

// Warning prints a warning line to stderr.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.stderr, r.styles.Warning.Render("! "+msg))
}

// Error prints a failure line to stderr.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.stderr, r.styles.StatusFailed.String()+" "+msg)
}
