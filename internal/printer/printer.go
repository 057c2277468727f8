// Package printer formats command output with colors.
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a green line with a checkmark prefix.
func Success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, a...))
}

func Info(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, format+"\n", a...)
}

// Warning prints a yellow line with a warning prefix.
func Warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func Step(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to stderr and returns an
// error carrying only the title, since cobra errors are silenced.
func Error(title, explanation string, suggestions []string) error {
	return ErrorTo(os.Stderr, title, explanation, suggestions)
}

func ErrorTo(w io.Writer, title, explanation string, suggestions []string) error {
	red.Fprintf(w, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(w, "%s\n", explanation)
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(w, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(w, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
	return fmt.Errorf("%s", title)
}

// Run prints the outcome counts of a run followed by each recipient error.
func Run(w io.Writer, run *campaign.Run) {
	if run == nil {
		return
	}
	line := run.Summary()
	switch {
	case run.Failed > 0:
		Warning(w, "%s", line)
	default:
		Success(w, "%s", line)
	}
	for _, e := range run.Errors {
		where := e.Recipient
		if e.Row > 0 {
			where = fmt.Sprintf("row %d (%s)", e.Row, e.Recipient)
		}
		fmt.Fprintf(w, "  %s: %s\n", where, e.Message)
	}
	fmt.Fprintf(w, "  run id: %s\n", run.ID)
}

// Partition lists orphaned files and the orphan ratio.
func Partition(w io.Writer, p *campaign.Partition) {
	if p == nil {
		return
	}
	Step(w, "%s: %d orphaned, %d referenced (ratio %.2f)",
		p.Track, len(p.Orphans), len(p.Protected), p.Ratio)
	for _, f := range p.Orphans {
		fmt.Fprintf(w, "  %s  %s\n", f.ID, f.Name)
	}
	if p.Suspicious {
		Warning(w, "orphan ratio is above the threshold; check the location and the recipient ids")
	}
}
