package logger

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

// Level orders the kinds of output the Reporter can suppress.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// ParseLevel maps a config or flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (use info, warn or error)", s)
	}
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
)

// Reporter prints diagnostics with their script location and keeps counts.
// Diagnostics that carry no location get the current one set with
// SetLocation.
type Reporter struct {
	out   Sink
	level Level
	color bool

	file string
	line int

	errors   int
	warnings int
}

// NewReporter creates a reporter writing to out. A nil out discards.
func NewReporter(out Sink, level Level, color bool) *Reporter {
	if out == nil {
		out = Discard
	}
	return &Reporter{out: out, level: level, color: color}
}

// SetLocation sets the file and line attached to diagnostics that lack one.
// A zero line means "no line".
func (r *Reporter) SetLocation(file string, line int) {
	r.file = file
	r.line = line
}

// Report prints err as an error or warning. Joined errors are reported one
// by one.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			r.Report(e)
		}
		return
	}

	var gerr *errors.GSFError
	if !stderrors.As(err, &gerr) {
		gerr = errors.NewSimple(errors.ClassIO, err.Error())
	}
	if gerr.File == "" && gerr.Line == 0 {
		gerr = gerr.WithFile(r.file).WithPosition(r.line, gerr.Column)
	}

	if gerr.IsWarning() {
		r.warnings++
		if r.level <= LevelWarn {
			r.print(gerr, "warning", ansiYellow)
		}
		return
	}
	r.errors++
	r.print(gerr, "error", ansiRed)
}

func (r *Reporter) print(e *errors.GSFError, kind, color string) {
	var sb strings.Builder
	if pos := e.Position(); pos != "" {
		sb.WriteString(pos)
		sb.WriteString(": ")
	}
	if r.color {
		sb.WriteString(ansiBold + color + kind + ":" + ansiReset)
	} else {
		sb.WriteString(kind + ":")
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}
	r.out.WriteLine(sb.String())
}

// Infof prints a progress line unless the level hides it.
func (r *Reporter) Infof(format string, args ...any) {
	if r.level > LevelInfo {
		return
	}
	r.out.WriteLine(fmt.Sprintf(format, args...))
}

// Errors returns the number of errors reported so far.
func (r *Reporter) Errors() int { return r.errors }

// Warnings returns the number of warnings reported so far.
func (r *Reporter) Warnings() int { return r.warnings }

// ColorEnabled resolves a color mode ("auto", "always", "never") for the
// given output file. Auto enables color only on terminals.
func ColorEnabled(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
