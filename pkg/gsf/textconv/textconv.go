// Package textconv converts text between the encodings scripts and host
// filenames use and the UTF-8 strings makegsf works with internally.
package textconv

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/karmic64/makegsf/pkg/gsf/buffer"
	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

// Kind classifies a conversion failure.
type Kind int

const (
	UnsupportedConversion Kind = iota
	InvalidSequence
	IncompleteSequence
	OtherFailure
)

func (k Kind) String() string {
	switch k {
	case UnsupportedConversion:
		return "unsupported conversion"
	case InvalidSequence:
		return "invalid sequence"
	case IncompleteSequence:
		return "incomplete sequence"
	default:
		return "conversion failure"
	}
}

// ConversionError describes why a conversion failed. Index is the byte
// offset into the input of the failing stage for InvalidSequence and
// IncompleteSequence.
type ConversionError struct {
	Kind  Kind
	Index int
	From  string
	To    string
	Err   error
}

func (e *ConversionError) Error() string {
	switch e.Kind {
	case UnsupportedConversion:
		return fmt.Sprintf("unsupported conversion from %s to %s", e.From, e.To)
	case InvalidSequence, IncompleteSequence:
		return fmt.Sprintf("%s at index %d", e.Kind, e.Index)
	default:
		return fmt.Sprintf("conversion failure (%v)", e.Err)
	}
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Diagnostic renders the failure as a catalog diagnostic.
func (e *ConversionError) Diagnostic() *errors.GSFError {
	switch e.Kind {
	case UnsupportedConversion:
		return errors.New("CONV-0001", map[string]any{"From": e.From, "To": e.To})
	case InvalidSequence:
		return errors.New("CONV-0002", map[string]any{"Index": e.Index})
	case IncompleteSequence:
		return errors.New("CONV-0003", map[string]any{"Index": e.Index})
	default:
		return errors.New("CONV-0004", map[string]any{"Reason": e.Err})
	}
}

// Lookup resolves an encoding name. IANA and MIME names are tried first,
// then WHATWG labels. A nil Encoding means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if isUTF8Name(name) {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(name)
	}
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// Convert converts src from one encoding to another.
func Convert(to, from string, src []byte) ([]byte, error) {
	fromEnc, err := Lookup(from)
	if err != nil {
		return nil, unsupported(from, to, err)
	}
	toEnc, err := Lookup(to)
	if err != nil {
		return nil, unsupported(from, to, err)
	}
	return convert(toEnc, fromEnc, src, from, to)
}

// Decode converts src from the named encoding to a UTF-8 string.
func Decode(from string, src []byte) (string, error) {
	out, err := Convert("utf-8", from, src)
	return string(out), err
}

// Encode converts a UTF-8 string to the named encoding.
func Encode(to string, s string) ([]byte, error) {
	return Convert(to, "utf-8", []byte(s))
}

func unsupported(from, to string, err error) *ConversionError {
	return &ConversionError{Kind: UnsupportedConversion, From: from, To: to, Err: err}
}

func convert(toEnc, fromEnc encoding.Encoding, src []byte, from, to string) ([]byte, error) {
	utf := src
	if fromEnc != nil {
		var err error
		if utf, err = runTransform(fromEnc.NewDecoder(), src); err != nil {
			return nil, annotate(err, from, to)
		}
	}
	if _, err := runTransform(encoding.UTF8Validator, utf); err != nil {
		return nil, annotate(err, from, to)
	}
	if toEnc == nil {
		out := make([]byte, len(utf))
		copy(out, utf)
		return out, nil
	}
	out, err := runTransform(toEnc.NewEncoder(), utf)
	if err != nil {
		return nil, annotate(err, from, to)
	}
	return out, nil
}

func annotate(err error, from, to string) error {
	var cerr *ConversionError
	if stderrors.As(err, &cerr) {
		cerr.From, cerr.To = from, to
	}
	return err
}

// runTransform feeds all of src through t, doubling the output buffer each
// time the transformer runs out of room.
func runTransform(t transform.Transformer, src []byte) ([]byte, error) {
	t.Reset()
	out := buffer.New(len(src) + 16)
	pos := 0
	for {
		nDst, nSrc, err := t.Transform(out.Spare(), src[pos:], true)
		out.Extend(nDst)
		pos += nSrc
		switch {
		case err == nil:
			return out.Bytes(), nil
		case stderrors.Is(err, transform.ErrShortDst):
			out.Reserve(out.Cap() * 2)
		case stderrors.Is(err, encoding.ErrInvalidUTF8):
			if !utf8.FullRune(src[pos:]) {
				return nil, &ConversionError{Kind: IncompleteSequence, Index: pos, Err: err}
			}
			return nil, &ConversionError{Kind: InvalidSequence, Index: pos, Err: err}
		case stderrors.Is(err, transform.ErrShortSrc):
			return nil, &ConversionError{Kind: IncompleteSequence, Index: pos, Err: err}
		default:
			if _, ok := err.(interface{ Replacement() byte }); ok {
				return nil, &ConversionError{Kind: InvalidSequence, Index: pos, Err: err}
			}
			return nil, &ConversionError{Kind: OtherFailure, Index: pos, Err: err}
		}
	}
}

// Bridge holds the encodings configured for script text and for output
// filenames.
type Bridge struct {
	scriptName   string
	filenameName string
	script       encoding.Encoding
	filename     encoding.Encoding
}

// NewBridge resolves both encodings up front so an unsupported name fails
// before any script line is read.
func NewBridge(scriptEncoding, filenameEncoding string) (*Bridge, error) {
	b := &Bridge{scriptName: scriptEncoding, filenameName: filenameEncoding}
	var err error
	if b.script, err = Lookup(scriptEncoding); err != nil {
		return nil, unsupported(scriptEncoding, "utf-8", err)
	}
	if b.filename, err = Lookup(filenameEncoding); err != nil {
		return nil, unsupported("utf-8", filenameEncoding, err)
	}
	return b, nil
}

// ScriptEncoding returns the configured script encoding name.
func (b *Bridge) ScriptEncoding() string { return displayName(b.scriptName) }

// FilenameEncoding returns the configured filename encoding name.
func (b *Bridge) FilenameEncoding() string { return displayName(b.filenameName) }

func displayName(name string) string {
	if isUTF8Name(name) {
		return "utf-8"
	}
	return name
}

// DecodeScript converts one raw script line to UTF-8.
func (b *Bridge) DecodeScript(line []byte) (string, error) {
	out, err := convert(nil, b.script, line, b.ScriptEncoding(), "utf-8")
	return string(out), err
}

// EncodeFilename converts a UTF-8 filename to the host filename encoding.
func (b *Bridge) EncodeFilename(name string) (string, error) {
	out, err := convert(b.filename, nil, []byte(name), "utf-8", b.FilenameEncoding())
	return string(out), err
}
