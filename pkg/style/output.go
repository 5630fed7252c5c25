package style

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorEnabled reports whether f should receive coloured output
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}

	return termenv.NewOutput(f).Profile != termenv.Ascii
}

// Configure switches lipgloss to plain output when colour is not wanted
func Configure(color bool) {
	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Printer writes status lines and diffs. Messages may contain markup tags.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter returns a Printer on stdout and stderr
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Success prints a success line
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.Out, SuccessIndicator, SuccessStyle, format, args...)
}

// Info prints an informational line
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.Out, InfoIndicator, InfoStyle, format, args...)
}

// Warn prints a warning line on stderr
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(p.Err, WarningIndicator, WarningStyle, format, args...)
}

// Error prints an error line on stderr
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.Err, ErrorIndicator, ErrorStyle, format, args...)
}

// Step announces hook step n (zero-based) about to run command
func (p *Printer) Step(n int, command string) {
	fmt.Fprintf(p.Out, "%s %s\n", StepStyle.Render(fmt.Sprintf("Step #%d:", n)), command)
}

// Diff prints unified diff lines with added, removed and hunk lines coloured
func (p *Printer) Diff(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(p.Out, DiffLine(l))
	}
}

// DiffLine styles a single unified diff line
func DiffLine(l string) string {
	switch {
	case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"), strings.HasPrefix(l, "diff "):
		return DiffHeaderStyle.Render(l)
	case strings.HasPrefix(l, "@@"):
		return HunkStyle.Render(l)
	case strings.HasPrefix(l, "+"):
		return AddedStyle.Render(l)
	case strings.HasPrefix(l, "-"):
		return RemovedStyle.Render(l)
	}
	return l
}

func (p *Printer) line(w io.Writer, indicator string, st lipgloss.Style, format string, args ...interface{}) {
	msg := Render(fmt.Sprintf(format, args...))
	fmt.Fprintf(w, "%s %s\n", st.Render(indicator), st.Render(msg))
}
