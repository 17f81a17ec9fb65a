package textconv

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestDecodeEncodeLatin1(t *testing.T) {
	s, err := Decode("iso-8859-1", []byte{'a', 0xe9})
	if err != nil {
		t.Fatal(err)
	}
	if s != "aé" {
		t.Errorf("Decode = %q", s)
	}

	b, err := Encode("latin1", "aé")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{'a', 0xe9}) {
		t.Errorf("Encode = %x", b)
	}
}

func TestShiftJISRoundTrip(t *testing.T) {
	b, err := Encode("shift_jis", "ソング")
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 6 {
		t.Fatalf("expected 6 bytes, got %x", b)
	}
	s, err := Decode("x-sjis", b)
	if err != nil {
		t.Fatal(err)
	}
	if s != "ソング" {
		t.Errorf("round trip = %q", s)
	}
}

func TestGrowsOutputBuffer(t *testing.T) {
	src := bytes.Repeat([]byte{0xe9}, 1000)
	s, err := Decode("iso-8859-1", src)
	if err != nil {
		t.Fatal(err)
	}
	if s != strings.Repeat("é", 1000) {
		t.Errorf("unexpected output length %d", len(s))
	}
}

func TestConversionErrors(t *testing.T) {
	tests := []struct {
		name  string
		run   func() error
		kind  Kind
		index int
	}{
		{
			name:  "unencodable rune",
			run:   func() error { _, err := Encode("iso-8859-1", "ab€"); return err },
			kind:  InvalidSequence,
			index: 2,
		},
		{
			name:  "invalid utf-8",
			run:   func() error { _, err := Decode("utf-8", []byte{'a', 0xff, 'b'}); return err },
			kind:  InvalidSequence,
			index: 1,
		},
		{
			name:  "truncated utf-8",
			run:   func() error { _, err := Decode("utf8", []byte{'a', 0xe3, 0x81}); return err },
			kind:  IncompleteSequence,
			index: 1,
		},
		{
			name: "unknown encoding",
			run:  func() error { _, err := Convert("klingon", "utf-8", []byte("x")); return err },
			kind: UnsupportedConversion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var cerr *ConversionError
			if !stderrors.As(err, &cerr) {
				t.Fatalf("expected ConversionError, got %v", err)
			}
			if cerr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", cerr.Kind, tt.kind)
			}
			if cerr.Index != tt.index {
				t.Errorf("index = %d, want %d", cerr.Index, tt.index)
			}
		})
	}
}

func TestDiagnosticCodes(t *testing.T) {
	cases := map[Kind]string{
		UnsupportedConversion: "CONV-0001",
		InvalidSequence:       "CONV-0002",
		IncompleteSequence:    "CONV-0003",
		OtherFailure:          "CONV-0004",
	}
	for kind, code := range cases {
		d := (&ConversionError{Kind: kind, Index: 3, Err: stderrors.New("x")}).Diagnostic()
		if d.Code != code {
			t.Errorf("%v: code %s, want %s", kind, d.Code, code)
		}
	}
	d := (&ConversionError{Kind: InvalidSequence, Index: 3}).Diagnostic()
	if d.Message != "invalid character at index 3" {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestBridge(t *testing.T) {
	if _, err := NewBridge("bogus-encoding", ""); err == nil {
		t.Fatal("expected error for unknown script encoding")
	}

	b, err := NewBridge("windows-1252", "")
	if err != nil {
		t.Fatal(err)
	}
	if b.FilenameEncoding() != "utf-8" {
		t.Errorf("FilenameEncoding = %q", b.FilenameEncoding())
	}
	line, err := b.DecodeScript([]byte("Title \"Caf\xe9\""))
	if err != nil {
		t.Fatal(err)
	}
	if line != `Title "Café"` {
		t.Errorf("DecodeScript = %q", line)
	}
	name, err := b.EncodeFilename("Café.minigsf")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Café.minigsf" {
		t.Errorf("EncodeFilename = %q", name)
	}
	if _, err := b.EncodeFilename("bad\xff"); err == nil {
		t.Error("expected invalid UTF-8 filename to fail")
	}
}
