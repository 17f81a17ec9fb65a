package errors

import (
	"strings"
	"testing"
)

func TestGSFError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *GSFError
		expected string
	}{
		{
			name:     "message only",
			err:      &GSFError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line",
			err:      &GSFError{Message: "unexpected token", Line: 5},
			expected: "5: unexpected token",
		},
		{
			name:     "with file line and column",
			err:      &GSFError{Message: "bad digit", File: "songs.txt", Line: 3, Column: 14},
			expected: "songs.txt:3:14: bad digit",
		},
		{
			name:     "column without line is dropped",
			err:      &GSFError{Message: "x", File: "a.txt", Column: 2},
			expected: "a.txt: x",
		},
		{
			name: "with hints",
			err: &GSFError{
				Message: "unrecognized command Titel",
				File:    "a.txt",
				Line:    1,
				Hints:   []string{"did you mean Title?"},
			},
			expected: "a.txt:1: unrecognized command Titel\n  did you mean Title?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewFromCatalog(t *testing.T) {
	err := New("SCAN-0004", map[string]any{"Expected": "string", "Got": "number"})
	if err.Class != ClassScan {
		t.Errorf("expected class scan, got %s", err.Class)
	}
	if err.Message != "expected string, got number" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Code != "SCAN-0004" {
		t.Errorf("unexpected code %q", err.Code)
	}
}

func TestNewMissingDataRendersEmpty(t *testing.T) {
	err := New("IO-0001", map[string]any{"Path": "rom.gba", "Reason": "no such file"})
	if err.Message != "can't open rom.gba for reading (no such file)" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom"})
	if err.Message != "custom" || err.Code != "NOPE-9999" {
		t.Errorf("unexpected error %+v", err)
	}
}

func TestWarningClass(t *testing.T) {
	if !New("TMPL-0004", map[string]any{"Tag": "Title"}).IsWarning() {
		t.Error("TMPL-0004 should be a warning")
	}
	if New("TMPL-0001", nil).IsWarning() {
		t.Error("TMPL-0001 should not be a warning")
	}
}

func TestWithPositionCopies(t *testing.T) {
	orig := New("TAG-0001", nil)
	moved := orig.WithPosition(4, 2).WithFile("x.txt")
	if orig.Line != 0 || orig.File != "" {
		t.Error("WithPosition/WithFile must not modify the receiver")
	}
	if moved.String() != "x.txt:4:2: GSF tag name is blank" {
		t.Errorf("unexpected %q", moved.String())
	}
}

func TestFindClosestMatch(t *testing.T) {
	commands := []string{"Title", "Artist", "MakeMiniGSF", "MakeMiniGSFRange", "GSFLib", "MakeGSFLib"}
	tests := []struct {
		input string
		want  string
	}{
		{"Titel", "Title"},
		{"Artst", "Artist"},
		{"MakeMini", "MakeMiniGSF"},
		{"gsflb", "GSFLib"},
		{"xyzzy", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, commands); got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewUnknownCommandHint(t *testing.T) {
	err := NewUnknownCommand("Titel", []string{"Title", "Artist"})
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "Title") {
		t.Errorf("expected Title hint, got %v", err.Hints)
	}
	err = NewUnknownCommand("Frobnicate", []string{"Title", "Artist"})
	if len(err.Hints) != 0 {
		t.Errorf("expected no hint, got %v", err.Hints)
	}
}
