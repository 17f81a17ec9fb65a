// Package lexer splits one script line at a time into identifier, number and
// string tokens.
package lexer

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	EOL    TokenType = iota // end of line or comment
	IDENT                   // MakeMiniGSF, title, ...
	NUMBER                  // 12, $1F, 0x1f
	STRING                  // "quoted text"
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case EOL:
		return "end of line"
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	default:
		return fmt.Sprintf("TokenType(%d)", int(tt))
	}
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string // identifier text, string value, or number text as written
	Value   uint64 // numeric value for NUMBER tokens
	Column  int    // 1-based column of the first character
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Column: %d}", t.Type, t.Literal, t.Column)
}

// Lexer scans a single line. Once the line is exhausted, or an error has
// been returned, every call yields an EOL token until Reset supplies a new
// line.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current character, 0 at end of line
	column       int  // 1-based column of ch
	exhausted    bool
}

// New creates a lexer with no line loaded.
func New() *Lexer {
	return &Lexer{exhausted: true}
}

// Reset loads a new line and rewinds the scan.
func (l *Lexer) Reset(line string) {
	l.input = line
	l.position = 0
	l.readPosition = 0
	l.column = 0
	l.exhausted = false
	l.readChar()
}

// Exhausted reports whether the current line has no more tokens.
func (l *Lexer) Exhausted() bool { return l.exhausted }

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += size
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) atBoundary() bool {
	return l.atEnd() || l.ch == '#' || unicode.IsSpace(l.ch)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// Next returns the next token on the line. An EOL token with a nil error
// means the line has no more tokens.
func (l *Lexer) Next() (Token, error) {
	if l.exhausted {
		return Token{Type: EOL, Column: l.column}, nil
	}

	l.skipWhitespace()
	if l.atEnd() || l.ch == '#' {
		l.exhausted = true
		return Token{Type: EOL, Column: l.column}, nil
	}

	var (
		tok Token
		err error
	)
	switch {
	case l.ch == '"':
		tok, err = l.readString()
	case l.ch == '$' || (l.ch == '0' && l.peekChar() == 'x') || isDigit(l.ch):
		tok, err = l.readNumber()
	default:
		tok = l.readIdentifier()
	}
	if err != nil {
		l.exhausted = true
		return Token{Type: EOL, Column: tok.Column}, err
	}
	return tok, nil
}

// Expect returns the next token if it has the wanted type. A missing token
// is returned as EOL without an error so callers can tell "absent" from
// "wrong"; a token of another type yields SCAN-0004.
func (l *Lexer) Expect(want TokenType) (Token, error) {
	tok, err := l.Next()
	if err != nil || tok.Type == EOL || tok.Type == want {
		return tok, err
	}
	return tok, errors.NewWithPosition("SCAN-0004", 0, tok.Column, map[string]any{
		"Expected": want.String(),
		"Got":      describe(tok),
	})
}

func describe(tok Token) string {
	switch tok.Type {
	case STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	case EOL:
		return tok.Type.String()
	default:
		return tok.Type.String() + " " + tok.Literal
	}
}

// readString reads a quoted string; \n becomes a newline and any other
// escaped character stands for itself.
func (l *Lexer) readString() (Token, error) {
	tok := Token{Type: STRING, Column: l.column}
	var sb strings.Builder
	l.readChar() // skip opening quote

	for {
		switch {
		case l.atEnd():
			return tok, errors.NewWithPosition("SCAN-0001", 0, tok.Column, nil)
		case l.ch == '"':
			l.readChar()
			tok.Literal = sb.String()
			return tok, nil
		case l.ch == '\\':
			col := l.column
			l.readChar()
			if l.atEnd() {
				return tok, errors.NewWithPosition("SCAN-0002", 0, col, nil)
			}
			if l.ch == 'n' {
				sb.WriteByte('\n')
			} else {
				sb.WriteRune(l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
}

// readNumber reads a decimal number, or a hexadecimal one after $ or 0x.
// Every character that is not a digit of the base is reported; the values
// wrap around at 64 bits.
func (l *Lexer) readNumber() (Token, error) {
	tok := Token{Type: NUMBER, Column: l.column}
	start := l.position
	base := uint64(10)
	switch {
	case l.ch == '$':
		base = 16
		l.readChar()
	case l.ch == '0' && l.peekChar() == 'x':
		base = 16
		l.readChar()
		l.readChar()
	}

	var errs []error
	for !l.atBoundary() {
		d, ok := digitValue(l.ch, base)
		if !ok {
			errs = append(errs, errors.NewWithPosition("SCAN-0003", 0, l.column,
				map[string]any{"Char": string(l.ch)}))
		} else {
			tok.Value = tok.Value*base + d
		}
		l.readChar()
	}
	tok.Literal = l.input[start:l.position]
	if len(errs) > 0 {
		return tok, stderrors.Join(errs...)
	}
	return tok, nil
}

// readIdentifier reads everything up to whitespace, # or end of line.
func (l *Lexer) readIdentifier() Token {
	tok := Token{Type: IDENT, Column: l.column}
	start := l.position
	for !l.atBoundary() {
		l.readChar()
	}
	tok.Literal = l.input[start:l.position]
	return tok
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func digitValue(ch rune, base uint64) (uint64, bool) {
	switch {
	case isDigit(ch):
		return uint64(ch - '0'), true
	case base == 16 && 'a' <= ch && ch <= 'f':
		return uint64(ch-'a') + 10, true
	case base == 16 && 'A' <= ch && ch <= 'F':
		return uint64(ch-'A') + 10, true
	}
	return 0, false
}
