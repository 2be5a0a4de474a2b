package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/roach88/reqgraph/internal/status"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Requirement not satisfied, scenarios failed, unsupported query
	ExitCommandError = 2 // Command error (invalid paths, unloadable ontology, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool

	styles *Styles
}

// newFormatter builds a formatter over the command's writers.
func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
	RunID  string    `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.Styles().Fail.Render("Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// encodeJSON writes v as indented JSON.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Styles returns the text styles for the formatter's writer. Colours are
// only used when the writer is a terminal.
func (f *OutputFormatter) Styles() *Styles {
	if f.styles == nil {
		f.styles = NewStyles(isTerminal(f.Writer))
	}
	return f.styles
}

// Styles colours statuses with the legend colours.
type Styles struct {
	OK       lipgloss.Style
	Fail     lipgloss.Style
	Existing lipgloss.Style
	Warn     lipgloss.Style
	Header   lipgloss.Style
	Faint    lipgloss.Style
}

// NewStyles returns coloured styles, or plain ones when color is false.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{OK: plain, Fail: plain, Existing: plain, Warn: plain, Header: plain, Faint: plain}
	}
	return &Styles{
		OK:       lipgloss.NewStyle().Foreground(lipgloss.Color(status.ColorGreen)),
		Fail:     lipgloss.NewStyle().Foreground(lipgloss.Color(status.ColorRed)).Bold(true),
		Existing: lipgloss.NewStyle().Foreground(lipgloss.Color(status.ColorBlue)),
		Warn:     lipgloss.NewStyle().Foreground(lipgloss.Color(status.ColorYellow)),
		Header:   lipgloss.NewStyle().Bold(true).Underline(true),
		Faint:    lipgloss.NewStyle().Faint(true),
	}
}

// padRight pads a rendered string to width visible cells. fmt's %-Ns
// counts escape codes, so styled text must be padded here instead.
func padRight(str string, width int) string {
	if n := lipgloss.Width(str); n < width {
		return str + strings.Repeat(" ", width-n)
	}
	return str
}

// Node renders a node status.
func (s *Styles) Node(n status.Node) string {
	switch n {
	case status.NodeOK:
		return s.OK.Render(string(n))
	case status.NodeNew:
		return s.Fail.Render(string(n))
	case status.NodeExisting:
		return s.Existing.Render(string(n))
	}
	return s.Faint.Render("-")
}

// Edge renders an edge status.
func (s *Styles) Edge(e status.Edge) string {
	switch {
	case e == "":
		return s.Faint.Render("-")
	case e == status.EdgeWarn:
		return s.Warn.Render(string(e))
	case e == status.EdgeOK:
		return s.OK.Render(string(e))
	case e.IsAdd() || e.IsDel():
		if e == status.EdgeAdd2Existing {
			return s.Warn.Render(string(e))
		}
		return s.Fail.Render(string(e))
	}
	return s.Existing.Render(string(e))
}

// Verdict renders a satisfied flag.
func (s *Styles) Verdict(satisfied bool) string {
	if satisfied {
		return s.OK.Render("✓ satisfied")
	}
	return s.Fail.Render("✗ not satisfied")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
