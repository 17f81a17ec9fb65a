// Package interp runs makegsf scripts: it reads one command per line,
// updates the build state and writes the gsflib and minigsf containers the
// commands ask for.
package interp

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/lexer"
	"github.com/karmic64/makegsf/pkg/gsf/logger"
	"github.com/karmic64/makegsf/pkg/gsf/manifest"
	"github.com/karmic64/makegsf/pkg/gsf/psf"
	"github.com/karmic64/makegsf/pkg/gsf/textconv"
)

// Recorder receives an entry for every container written.
type Recorder interface {
	Record(manifest.Entry) error
}

// Options configures an Interpreter. Zero values select UTF-8 text, default
// compression, no manifest and no output.
type Options struct {
	Bridge      *textconv.Bridge
	Compression string // level name, see psf.Levels
	Reporter    *logger.Reporter
	Manifest    Recorder

	// BaseDir is where relative paths in the script are resolved. RunFile
	// sets it to the script's directory when it is empty.
	BaseDir string

	// Name is used for diagnostics when lines are fed through ExecLine.
	Name string
}

// Stats summarizes a run.
type Stats struct {
	Lines        int
	Commands     int
	Errors       int
	Warnings     int
	FilesWritten int
	BytesWritten int64
}

// Interpreter executes script lines against one BuildState.
type Interpreter struct {
	state    *BuildState
	lex      *lexer.Lexer
	fold     cases.Caser
	bridge   *textconv.Bridge
	level    int
	rep      *logger.Reporter
	manifest Recorder
	baseDir  string

	name  string
	line  int
	stats Stats
}

// New creates an interpreter with a fresh BuildState.
func New(opts Options) (*Interpreter, error) {
	level, err := psf.ParseLevel(opts.Compression)
	if err != nil {
		return nil, err
	}
	bridge := opts.Bridge
	if bridge == nil {
		if bridge, err = textconv.NewBridge("", ""); err != nil {
			return nil, err
		}
	}
	rep := opts.Reporter
	if rep == nil {
		rep = logger.NewReporter(logger.Discard, logger.LevelError, false)
	}
	name := opts.Name
	if name == "" {
		name = "<input>"
	}
	return &Interpreter{
		state:    NewBuildState(),
		lex:      lexer.New(),
		fold:     cases.Fold(),
		bridge:   bridge,
		level:    level,
		rep:      rep,
		manifest: opts.Manifest,
		baseDir:  opts.BaseDir,
		name:     name,
	}, nil
}

// State returns the live build state.
func (in *Interpreter) State() *BuildState { return in.state }

// Stats returns the counters accumulated so far.
func (in *Interpreter) Stats() Stats {
	s := in.stats
	s.Errors = in.rep.Errors()
	s.Warnings = in.rep.Warnings()
	return s
}

// RunFile runs the script at path. Only failing to open or read the script
// is returned as an error; problems with individual commands are reported
// and the run continues.
func (in *Interpreter) RunFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return in.Stats(), fmt.Errorf("can't open script: %w", err)
	}
	defer f.Close()
	if in.baseDir == "" {
		in.baseDir = filepath.Dir(path)
	}
	return in.Run(f, path)
}

// Run executes every line read from r. Each line is decoded from the
// configured script encoding first.
func (in *Interpreter) Run(r io.Reader, name string) (Stats, error) {
	in.name = name
	in.line = 0
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			in.line++
			raw = trimEOL(raw)
			text, cerr := in.bridge.DecodeScript(raw)
			in.rep.SetLocation(in.name, in.line)
			if cerr != nil {
				in.report(conversionDiagnostic(cerr))
			} else {
				in.exec(text)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return in.Stats(), fmt.Errorf("reading %s: %w", name, err)
		}
	}
	in.rep.SetLocation(in.name, 0)
	return in.Stats(), nil
}

// ExecLine executes one line of interactive input, counting it as the next
// line of the current input. The line is already UTF-8 text, so the script
// encoding is not applied.
func (in *Interpreter) ExecLine(line string) {
	in.line++
	in.rep.SetLocation(in.name, in.line)
	in.exec(strings.TrimRight(line, "\r\n"))
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

func (in *Interpreter) exec(line string) {
	in.stats.Lines++
	in.lex.Reset(line)

	tok, err := in.lex.Expect(lexer.IDENT)
	if err != nil {
		in.report(err)
		return
	}
	if tok.Type == lexer.EOL {
		return
	}

	in.stats.Commands++
	cmd, ok := lookupCommand(in.fold.String(tok.Literal))
	if !ok {
		in.report(errors.NewUnknownCommand(tok.Literal, CommandNames()).WithPosition(0, tok.Column))
		return
	}
	if err := cmd.run(in); err != nil {
		in.report(err)
	}
}

// report hands a diagnostic to the reporter.
func (in *Interpreter) report(err error) {
	in.rep.Report(err)
}

func conversionDiagnostic(err error) error {
	var cerr *textconv.ConversionError
	if stderrors.As(err, &cerr) {
		return cerr.Diagnostic()
	}
	return err
}

// resolve converts a script-supplied filename to the host encoding and
// makes it relative to the script's directory.
func (in *Interpreter) resolve(name string) (string, error) {
	host, err := in.bridge.EncodeFilename(name)
	if err != nil {
		return "", conversionDiagnostic(err)
	}
	if in.baseDir == "" || filepath.IsAbs(host) {
		return host, nil
	}
	return filepath.Join(in.baseDir, host), nil
}
