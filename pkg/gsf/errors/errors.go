// Package errors provides the structured diagnostic type used throughout
// makegsf.
//
// A GSFError carries a class, a catalog code, a rendered message, optional
// hints, and the script position it refers to. Messages come from the
// ErrorCatalog and are rendered with text/template, so the same code always
// produces the same wording.
package errors

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrorClass categorizes errors for filtering and reporting.
type ErrorClass string

const (
	ClassScan     ErrorClass = "scan"     // Tokenizer errors
	ClassCommand  ErrorClass = "command"  // Unknown or malformed commands
	ClassState    ErrorClass = "state"    // Missing or conflicting build state
	ClassTag      ErrorClass = "tag"      // Tag naming rules
	ClassTemplate ErrorClass = "template" // Filename template expansion
	ClassIO       ErrorClass = "io"       // File operations
	ClassCompress ErrorClass = "compress" // zlib stream failures
	ClassConvert  ErrorClass = "convert"  // Character encoding conversion
	ClassWarning  ErrorClass = "warning"  // Non-fatal notices
)

// GSFError represents any diagnostic produced while running a script.
type GSFError struct {
	Class   ErrorClass
	Code    string
	Message string
	Hints   []string
	Line    int // 1-based line (0 if unknown)
	Column  int // 1-based column (0 if unknown)
	File    string
	Data    map[string]any
}

// Error implements the error interface.
func (e *GSFError) Error() string {
	return e.String()
}

// String returns the diagnostic as "file:line:column: message", leaving out
// the parts of the position that are unknown.
func (e *GSFError) String() string {
	var sb strings.Builder

	if prefix := e.Position(); prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// Position renders the location prefix, or "" when nothing is known.
func (e *GSFError) Position() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, e.File)
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprint(e.Line))
		if e.Column > 0 {
			parts = append(parts, fmt.Sprint(e.Column))
		}
	}
	return strings.Join(parts, ":")
}

// WithFile returns a copy of the error with the file name set.
func (e *GSFError) WithFile(file string) *GSFError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *GSFError) WithPosition(line, column int) *GSFError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsWarning reports whether the diagnostic is a non-fatal warning.
func (e *GSFError) IsWarning() bool {
	return e.Class == ClassWarning
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Scan errors
	"SCAN-0001": {
		Class:    ClassScan,
		Template: "string with no end quote",
	},
	"SCAN-0002": {
		Class:    ClassScan,
		Template: "escaping newlines is not supported",
		Hints:    []string{`use \n inside the string instead`},
	},
	"SCAN-0003": {
		Class:    ClassScan,
		Template: "can't parse {{.Char}} as digit",
	},
	"SCAN-0004": {
		Class:    ClassScan,
		Template: "expected {{.Expected}}, got {{.Got}}",
	},

	// Command errors
	"CMD-0001": {
		Class:    ClassCommand,
		Template: "unrecognized command {{.Name}}",
	},
	"CMD-0002": {
		Class:    ClassCommand,
		Template: "can't get {{.What}} value",
	},

	// Build state errors
	"STATE-0001": {
		Class:    ClassState,
		Template: "gsflib filename already defined",
	},
	"STATE-0002": {
		Class:    ClassState,
		Template: "gsflib filename not defined yet",
		Hints:    []string{`MakeGSFLib "rom.gba" "song.gsflib"`, `GSFLib "song.gsflib"`},
	},
	"STATE-0003": {
		Class:    ClassState,
		Template: "filename template not defined yet",
		Hints:    []string{`FilenameTemplate "%03n %t.minigsf"`},
	},
	"STATE-0004": {
		Class:    ClassState,
		Template: "invalid step value {{.Step}}",
	},
	"STATE-0005": {
		Class:    ClassState,
		Template: "{{.What}} value {{.Value}} does not fit in 32 bits",
	},

	// Tag errors
	"TAG-0001": {
		Class:    ClassTag,
		Template: "GSF tag name is blank",
	},
	"TAG-0002": {
		Class:    ClassTag,
		Template: "GSF tag name {{.Name}} is reserved",
	},
	"TAG-0003": {
		Class:    ClassTag,
		Template: "invalid GSF tag name {{.Name}}",
		Hints:    []string{"tag names may only contain letters a-z, digits and _"},
	},

	// Filename template errors
	"TMPL-0001": {
		Class:    ClassTemplate,
		Template: "incomplete conversion specifier in filename template",
	},
	"TMPL-0002": {
		Class:    ClassTemplate,
		Template: "invalid conversion specifier '{{.Char}}' in filename template",
		Hints:    []string{"valid specifiers are %n, %i, %t and %a"},
	},
	"TMPL-0003": {
		Class:    ClassTemplate,
		Template: "conversion width {{.Width}} is too large",
	},
	"TMPL-0004": {
		Class:    ClassWarning,
		Template: "{{.Tag}} conversion specifier requested, but is not defined",
	},
	"TMPL-0005": {
		Class:    ClassTemplate,
		Template: "filename template expands to an empty filename",
	},

	// I/O errors
	"IO-0001": {
		Class:    ClassIO,
		Template: "can't open {{.Path}} for reading ({{.Reason}}){{.Suffix}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "error while reading {{.Path}} ({{.Reason}}){{.Suffix}}",
	},
	"IO-0003": {
		Class:    ClassIO,
		Template: "can't write {{.Path}} ({{.Reason}}){{.Suffix}}",
	},
	"IO-0004": {
		Class:    ClassIO,
		Template: "can't record {{.Path}} in manifest ({{.Reason}})",
	},

	// Compression errors
	"ZLIB-0001": {
		Class:    ClassCompress,
		Template: "error initializing zlib: {{.Reason}}",
	},
	"ZLIB-0002": {
		Class:    ClassCompress,
		Template: "error during zlib compression: {{.Reason}}",
	},

	// Conversion errors
	"CONV-0001": {
		Class:    ClassConvert,
		Template: "unsupported conversion from {{.From}} to {{.To}}",
	},
	"CONV-0002": {
		Class:    ClassConvert,
		Template: "invalid character at index {{.Index}}",
	},
	"CONV-0003": {
		Class:    ClassConvert,
		Template: "incomplete character at index {{.Index}}",
	},
	"CONV-0004": {
		Class:    ClassConvert,
		Template: "conversion failure ({{.Reason}})",
	},
}

// New creates a GSFError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *GSFError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &GSFError{
			Class:   ClassCommand,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &GSFError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a GSFError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *GSFError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *GSFError {
	return &GSFError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return strings.ReplaceAll(buf.String(), "<no value>", "")
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// FindClosestMatch finds the closest match to input among candidates.
//
// Abbreviations ("MakeMini") are matched as case-insensitive subsequences
// first; typos fall back to edit distance with a threshold that grows with
// the input length. Returns "" when nothing is close enough.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	if len(input) >= 3 {
		if ranks := fuzzy.RankFindFold(input, candidates); len(ranks) > 0 {
			sort.Stable(ranks)
			if ranks[0].Distance > 0 {
				return ranks[0].Target
			}
		}
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// NewUnknownCommand creates an unrecognized command error with a
// "did you mean" hint when a known command is close.
func NewUnknownCommand(name string, commands []string) *GSFError {
	err := New("CMD-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, commands); suggestion != "" {
		err.Hints = append(err.Hints, "did you mean "+suggestion+"?")
	}
	return err
}
