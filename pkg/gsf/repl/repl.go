// Package repl runs makegsf commands typed at an interactive prompt.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/text/cases"

	"github.com/karmic64/makegsf/pkg/gsf/interp"
)

const PROMPT = "gsf> "

// Start runs the prompt loop until exit, quit or Ctrl+D.
func Start(in *interp.Interpreter, out io.Writer, version string) error {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	line.SetCompleter(filterCompletions)

	historyFile := filepath.Join(os.TempDir(), ".makegsf_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "makegsf", version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for more")
	fmt.Fprintln(out, "")

	s := NewSession(in, out)
	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.Handle(input) {
			return nil
		}
	}
}

// Session feeds input lines to an interpreter and answers the ':' meta
// commands. It holds no terminal state.
type Session struct {
	in  *interp.Interpreter
	out io.Writer
}

// NewSession creates a session writing meta-command output to out.
func NewSession(in *interp.Interpreter, out io.Writer) *Session {
	return &Session{in: in, out: out}
}

// Handle processes one input line and reports whether the user asked to
// quit.
func (s *Session) Handle(input string) bool {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "exit" || trimmed == "quit":
		return true
	case strings.HasPrefix(trimmed, ":"):
		s.meta(trimmed)
		return false
	}
	s.in.ExecLine(input)
	return false
}

func (s *Session) meta(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :commands       List script commands")
		fmt.Fprintln(s.out, "  :state          Show the build state")
		fmt.Fprintln(s.out, "  :tags           Show the current tags")
		fmt.Fprintln(s.out, "  :stats          Show what has been written so far")
		fmt.Fprintln(s.out, "  exit, quit      Exit")

	case ":commands":
		for _, c := range interp.Commands() {
			fmt.Fprintf(s.out, "  %s\n", c.Usage)
		}

	case ":state":
		st := s.in.State()
		fmt.Fprintf(s.out, "  entry point:  0x%08X\n", st.EntryPoint)
		fmt.Fprintf(s.out, "  mini offset:  0x%X\n", st.MiniOffset)
		fmt.Fprintf(s.out, "  song number:  %d\n", st.SongNumber)
		fmt.Fprintf(s.out, "  song id:      %d\n", st.SongID)
		fmt.Fprintf(s.out, "  template:     %s\n", unset(st.FilenameTemplate, st.TemplateSet))
		fmt.Fprintf(s.out, "  gsflib:       %s\n", unset(st.LibraryReference, st.LibrarySet))

	case ":tags":
		all := s.in.State().Tags.All()
		if len(all) == 0 {
			fmt.Fprintln(s.out, "(no tags)")
			return
		}
		for _, t := range all {
			fmt.Fprintf(s.out, "  %s = %q\n", t.Name, t.Value)
		}

	case ":stats":
		st := s.in.Stats()
		fmt.Fprintf(s.out, "  %d commands, %d files written, %d errors, %d warnings\n",
			st.Commands, st.FilesWritten, st.Errors, st.Warnings)

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

func unset(v string, set bool) string {
	if !set {
		return "(not set)"
	}
	return fmt.Sprintf("%q", v)
}

// filterCompletions completes the command name at the start of the line.
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t") {
		return nil
	}
	if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		return nil
	}

	fold := cases.Fold()
	prefix := fold.String(trimmed)
	var matches []string
	for _, name := range interp.CommandNames() {
		if strings.HasPrefix(fold.String(name), prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}
