package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
)

// Color functions for terminal output
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Terminal writes user-facing messages. Prompts and menu text are printed
// as-is; status lines are coloured unless colours are disabled.
type Terminal struct {
	out io.Writer
}

// NewTerminal creates a Terminal writing to out. A nil out means stdout.
func NewTerminal(out io.Writer, noColor bool) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	if noColor {
		color.NoColor = true
	}
	return &Terminal{out: out}
}

// Print writes msg without a trailing newline
func (t *Terminal) Print(msg string) {
	fmt.Fprint(t.out, msg)
}

// Println writes msg followed by a newline
func (t *Terminal) Println(msg string) {
	fmt.Fprintln(t.out, msg)
}

// Title prints a bold heading
func (t *Terminal) Title(msg string) {
	fmt.Fprintln(t.out, Bold(msg))
}

// PrintError prints an error message in red
func (t *Terminal) PrintError(format string, args ...interface{}) {
	fmt.Fprintln(t.out, Red(fmt.Sprintf(format, args...)))
}

// PrintSuccess prints a success message in green
func (t *Terminal) PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(t.out, Green(fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message in yellow
func (t *Terminal) PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(t.out, Yellow(fmt.Sprintf(format, args...)))
}

// FormatBytes renders a byte count for people, e.g. "1.2 MB"
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count renders n with the singular or plural form of word, e.g. "3 files"
func Count(n int, word string) string {
	return english.Plural(n, word, "")
}

// TransferSummary describes a finished download, e.g.
// "Saved 3 files (1.2 MB)"
func TransferSummary(files int, bytes int64) string {
	return fmt.Sprintf("Saved %s (%s)", Count(files, "file"), FormatBytes(bytes))
}
