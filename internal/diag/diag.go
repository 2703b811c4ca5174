// Package diag formats compiler diagnostics with source context and a
// caret pointing at the offending column, adapted from the compiler's
// caret-style error reporting to this front end's five error layers:
// argument, I/O, comment-stripping, lexing/parsing, and semantic
// analysis.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/dws-front/internal/token"
)

// Diagnostic is one reported problem: its message, source position, and
// (when available) the source text and file name needed to render a
// caret-pointer context line.
type Diagnostic struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// New constructs a Diagnostic. Source and File may be left empty when
// rendering without file context (Format then degrades to a bare header).
func New(pos token.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Pos: pos, Message: message, Source: source, File: file}
}

func (d *Diagnostic) Error() string { return d.Format(false) }

// Format renders the header, the offending line, and a caret under the
// reported column. color enables ANSI highlighting for terminal output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(fmt.Sprintf("error in %s:%d:%d\n", d.File, d.Pos.Line, d.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("error at %d:%d\n", d.Pos.Line, d.Pos.Column))
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max(0, d.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (d *Diagnostic) sourceLine(n int) string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatAll renders every diagnostic, numbering them when there is more
// than one.
func FormatAll(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("compilation failed with %d error(s):\n\n", len(diags)))
	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[error %d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
