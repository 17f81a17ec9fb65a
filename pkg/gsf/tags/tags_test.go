package tags

import (
	stderrors "errors"
	"testing"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

func TestSetPreservesOrder(t *testing.T) {
	s := NewStore()
	s.Set("title", "A")
	s.Set("artist", "B")
	s.Set("title", "C")

	got := s.All()
	want := []Tag{{"title", "C"}, {"artist", "B"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSetEmptyRemoves(t *testing.T) {
	s := NewStore()
	s.Set("title", "A")
	s.Set("artist", "B")
	s.Set("title", "")
	if _, ok := s.Get("title"); ok {
		t.Error("title should be removed")
	}
	if s.Len() != 1 || s.All()[0].Name != "artist" {
		t.Errorf("unexpected contents %v", s.All())
	}

	// removing a missing tag is a no-op
	s.Set("genre", "")
	if s.Len() != 1 {
		t.Errorf("unexpected contents %v", s.All())
	}
}

func TestGetIsExact(t *testing.T) {
	s := NewStore()
	s.Set("title", "A")
	if _, ok := s.Get("Title"); ok {
		t.Error("Get must not fold")
	}
	if s.Value("title") != "A" || s.Value("missing") != "" {
		t.Error("unexpected Value results")
	}
}

func TestAllIsSnapshot(t *testing.T) {
	s := NewStore()
	s.Set("title", "A")
	snap := s.All()
	snap[0].Value = "changed"
	if s.Value("title") != "A" {
		t.Error("All must return a copy")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		input  string
		folded string
		code   string
	}{
		{"Composer", "composer", ""},
		{"track_2", "track_2", ""},
		{"", "", "TAG-0001"},
		{"_lib", "_lib", "TAG-0002"},
		{"FileName", "filename", "TAG-0002"},
		{"fileext", "fileext", "TAG-0002"},
		{"bad-name", "bad-name", "TAG-0003"},
		{"ÉTÉ", "été", "TAG-0003"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name := tt.input
			err := ValidateName(&name)
			if name != tt.folded {
				t.Errorf("folded to %q, want %q", name, tt.folded)
			}
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			var gerr *errors.GSFError
			if !stderrors.As(err, &gerr) || gerr.Code != tt.code {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}
