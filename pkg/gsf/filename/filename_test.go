package filename

import (
	stderrors "errors"
	"testing"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

func TestExpand(t *testing.T) {
	store := tags.NewStore()
	store.Set("title", "Opening")
	store.Set("artist", "Composer")

	tests := []struct {
		name     string
		template string
		number   uint32
		id       uint32
		expected string
	}{
		{"padded number", "song_%03n.gsf", 7, 0, "song_007.gsf"},
		{"unpadded id", "%i.minigsf", 7, 42, "42.minigsf"},
		{"zero width", "%0i", 0, 5, "5"},
		{"width smaller than value", "%2n", 1234, 0, "1234"},
		{"tags", "%02n %t - %a.minigsf", 3, 0, "03 Opening - Composer.minigsf"},
		{"literal only", "fixed.minigsf", 1, 1, "fixed.minigsf"},
		{"unicode literal", "曲%n", 2, 0, "曲2"},
		{"max uint32", "%n", 0xffffffff, 0, "4294967295"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warns, err := Expand(tt.template, Context{SongNumber: tt.number, SongID: tt.id, Tags: store})
			if err != nil {
				t.Fatal(err)
			}
			if len(warns) != 0 {
				t.Errorf("unexpected warnings %v", warns)
			}
			if got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.template, got, tt.expected)
			}
		})
	}
}

func TestExpandMissingTagWarns(t *testing.T) {
	got, warns, err := Expand("%n %t.minigsf", Context{SongNumber: 1, Tags: tags.NewStore()})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1 .minigsf" {
		t.Errorf("unexpected expansion %q", got)
	}
	if len(warns) != 1 || warns[0].Code != "TMPL-0004" || !warns[0].IsWarning() {
		t.Fatalf("expected one TMPL-0004 warning, got %v", warns)
	}
	if warns[0].Message != "title conversion specifier requested, but is not defined" {
		t.Errorf("unexpected message %q", warns[0].Message)
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		template string
		code     string
	}{
		{"song%", "TMPL-0001"},
		{"song%03", "TMPL-0001"},
		{"song%x", "TMPL-0002"},
		{"100%%", "TMPL-0002"},
		{"%65n", "TMPL-0003"},
		{"%99999999999999999999n", "TMPL-0003"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			_, _, err := Expand(tt.template, Context{})
			var gerr *errors.GSFError
			if !stderrors.As(err, &gerr) || gerr.Code != tt.code {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestExpandMaxWidth(t *testing.T) {
	got, _, err := Expand("%64n", Context{SongNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 64 || got[63] != '1' {
		t.Errorf("unexpected expansion %q", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain.minigsf", "plain.minigsf"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"tab\there\nnew", "tabherenew"},
		{"AC/DC: Live?", "ACDC Live"},
		{"日本語.minigsf", "日本語.minigsf"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRender(t *testing.T) {
	store := tags.NewStore()
	store.Set("title", "Who? What?")
	got, _, err := Render("%t.minigsf", Context{Tags: store})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Who What.minigsf" {
		t.Errorf("unexpected name %q", got)
	}

	_, _, err = Render("???", Context{})
	var gerr *errors.GSFError
	if !stderrors.As(err, &gerr) || gerr.Code != "TMPL-0005" {
		t.Errorf("expected TMPL-0005, got %v", err)
	}
}
