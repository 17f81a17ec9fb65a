// Package logger carries makegsf's diagnostic and progress output. A
// Reporter formats each line; a Sink decides where finished lines go.
package logger

import (
	"io"
	"strings"
)

// Sink receives finished output lines without their trailing newline. A
// line may span several physical lines when a diagnostic carries hints.
type Sink interface {
	WriteLine(line string)
}

// Writer sends lines to an io.Writer. The first write error stops further
// output and is kept for Err.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a sink writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) WriteLine(line string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, line+"\n")
}

// Err returns the first write error, if any.
func (s *Writer) Err() error { return s.err }

// Capture keeps lines in memory.
type Capture struct {
	lines []string
}

func (c *Capture) WriteLine(line string) {
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the captured lines.
func (c *Capture) Lines() []string {
	return append([]string(nil), c.lines...)
}

// String returns the captured output as it would have been printed.
func (c *Capture) String() string {
	if len(c.lines) == 0 {
		return ""
	}
	return strings.Join(c.lines, "\n") + "\n"
}

// Reset drops everything captured so far.
func (c *Capture) Reset() { c.lines = c.lines[:0] }

type discard struct{}

func (discard) WriteLine(string) {}

// Discard drops every line.
var Discard Sink = discard{}
