package logger

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

func TestCapture(t *testing.T) {
	var c Capture
	c.WriteLine("wrote a.minigsf")
	c.WriteLine("error: bad\n  hint: fix it")
	if got := c.Lines(); len(got) != 2 || got[1] != "error: bad\n  hint: fix it" {
		t.Fatalf("unexpected lines %q", got)
	}
	if c.String() != "wrote a.minigsf\nerror: bad\n  hint: fix it\n" {
		t.Fatalf("unexpected string %q", c.String())
	}
	c.Reset()
	if c.String() != "" || len(c.Lines()) != 0 {
		t.Fatalf("Reset left %q", c.String())
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, stderrors.New("disk full")
}

func TestWriterSink(t *testing.T) {
	var sb strings.Builder
	s := NewWriter(&sb)
	s.WriteLine("wrote x.minigsf")
	if sb.String() != "wrote x.minigsf\n" || s.Err() != nil {
		t.Fatalf("unexpected %q (%v)", sb.String(), s.Err())
	}

	fw := &failingWriter{}
	s = NewWriter(fw)
	s.WriteLine("one")
	s.WriteLine("two")
	if s.Err() == nil || s.Err().Error() != "disk full" {
		t.Errorf("expected write error, got %v", s.Err())
	}
	if fw.calls != 1 {
		t.Errorf("output should stop after the first error, got %d writes", fw.calls)
	}
}

func TestNilSinkDiscards(t *testing.T) {
	r := NewReporter(nil, LevelInfo, false)
	r.Infof("nothing %d", 1)
	r.Report(errors.New("STATE-0002", nil))
	if r.Errors() != 1 {
		t.Errorf("errors should still be counted, got %d", r.Errors())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestReporterAddsLocation(t *testing.T) {
	out := &Capture{}
	r := NewReporter(out, LevelInfo, false)
	r.SetLocation("songs.txt", 7)
	r.Report(errors.New("STATE-0001", nil))

	lines := out.Lines()
	if len(lines) != 1 || lines[0] != "songs.txt:7: error: gsflib filename already defined" {
		t.Fatalf("unexpected output %q", lines)
	}
	if r.Errors() != 1 || r.Warnings() != 0 {
		t.Fatalf("unexpected counts %d/%d", r.Errors(), r.Warnings())
	}
}

func TestReporterKeepsColumn(t *testing.T) {
	out := &Capture{}
	r := NewReporter(out, LevelInfo, false)
	r.SetLocation("a.txt", 2)
	r.Report(errors.NewWithPosition("SCAN-0001", 0, 9, nil))
	if got := out.Lines()[0]; got != "a.txt:2:9: error: string with no end quote" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestReporterJoinedAndPlainErrors(t *testing.T) {
	out := &Capture{}
	r := NewReporter(out, LevelInfo, false)
	r.Report(stderrors.Join(
		errors.New("SCAN-0003", map[string]any{"Char": "g"}),
		errors.New("SCAN-0003", map[string]any{"Char": "z"}),
	))
	r.Report(stderrors.New("disk full"))
	lines := out.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if lines[2] != "error: disk full" {
		t.Fatalf("unexpected plain error line %q", lines[2])
	}
	if r.Errors() != 3 {
		t.Fatalf("expected 3 errors, got %d", r.Errors())
	}
}

func TestReporterLevels(t *testing.T) {
	out := &Capture{}
	r := NewReporter(out, LevelError, false)
	r.Infof("wrote %s", "x")
	r.Report(errors.New("TMPL-0004", map[string]any{"Tag": "Title"}))
	if len(out.Lines()) != 0 {
		t.Fatalf("expected no output at error level, got %q", out.Lines())
	}
	if r.Warnings() != 1 {
		t.Fatalf("warnings must be counted even when hidden")
	}

	out.Reset()
	r = NewReporter(out, LevelInfo, false)
	r.Report(errors.New("TMPL-0004", map[string]any{"Tag": "Title"}))
	if got := out.Lines(); len(got) != 1 || !strings.HasPrefix(got[0], "warning: Title conversion") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestReporterHints(t *testing.T) {
	out := &Capture{}
	r := NewReporter(out, LevelInfo, false)
	r.Report(errors.NewUnknownCommand("Titel", []string{"Title"}))
	if got := out.String(); !strings.Contains(got, "\n  hint: did you mean Title?") {
		t.Fatalf("missing hint in %q", got)
	}
}

func TestColorEnabledModes(t *testing.T) {
	if !ColorEnabled("always", nil) {
		t.Error("always should enable color")
	}
	if ColorEnabled("never", nil) {
		t.Error("never should disable color")
	}
	if ColorEnabled("auto", nil) {
		t.Error("auto without a file should disable color")
	}
}
