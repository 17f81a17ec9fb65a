package interp

import (
	"math"
	"sort"

	"golang.org/x/text/cases"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/lexer"
	"github.com/karmic64/makegsf/pkg/gsf/psf"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

// Command describes one script command.
type Command struct {
	Name  string
	Usage string
	run   func(in *Interpreter) error
}

// tagCommands set a fixed tag from their string argument. Date and Year
// both write year.
var tagCommands = []struct{ name, tag string }{
	{"Title", "title"},
	{"Artist", "artist"},
	{"Game", "game"},
	{"Date", "year"},
	{"Year", "year"},
	{"Genre", "genre"},
	{"Comment", "comment"},
	{"Copyright", "copyright"},
	{"GSFBy", "gsfby"},
	{"Volume", "volume"},
	{"Length", "length"},
	{"Fade", "fade"},
}

// miniOverrides are the tags MakeMiniGSF can set after the song id, in
// argument order.
var miniOverrides = []string{"title", "artist", "comment", "length", "fade", "volume", "genre"}

var commands = buildCommands()

func buildCommands() map[string]Command {
	list := []Command{
		{Name: "MultiBoot", Usage: "MultiBoot", run: cmdMultiBoot},
		{Name: "MakeGSFLib", Usage: `MakeGSFLib "rom.gba" "out.gsflib"`, run: cmdMakeGSFLib},
		{Name: "GSFLib", Usage: `GSFLib "existing.gsflib"`, run: cmdGSFLib},
		{Name: "Tag", Usage: `Tag "name" ["value"]`, run: cmdTag},
		{Name: "FilenameTemplate", Usage: `FilenameTemplate "%03n %t.minigsf"`, run: cmdFilenameTemplate},
		{Name: "MiniGSFOffset", Usage: "MiniGSFOffset <number>", run: cmdMiniGSFOffset},
		{Name: "SetSongNumber", Usage: "SetSongNumber <number>", run: cmdSetSongNumber},
		{Name: "MakeMiniGSF", Usage: `MakeMiniGSF <id> ["title" ["artist" ["comment" ["length" ["fade" ["volume" ["genre"]]]]]]]`, run: cmdMakeMiniGSF},
		{Name: "MakeMiniGSFRange", Usage: "MakeMiniGSFRange <start> <end> [step]", run: cmdMakeMiniGSFRange},
	}
	for _, tc := range tagCommands {
		tag := tc.tag
		list = append(list, Command{
			Name:  tc.name,
			Usage: tc.name + ` ["value"]`,
			run:   func(in *Interpreter) error { return in.setTagFromNext(tag) },
		})
	}

	fold := cases.Fold()
	table := make(map[string]Command, len(list))
	for _, c := range list {
		table[fold.String(c.Name)] = c
	}
	return table
}

func lookupCommand(folded string) (Command, bool) {
	c, ok := commands[folded]
	return c, ok
}

// CommandNames returns every command name, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Commands returns every command, sorted by name.
func Commands() []Command {
	list := make([]Command, 0, len(commands))
	for _, c := range commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// stringArg reads a required string argument.
func (in *Interpreter) stringArg(what string) (string, error) {
	tok, err := in.lex.Expect(lexer.STRING)
	if err != nil {
		return "", err
	}
	if tok.Type == lexer.EOL {
		return "", errors.New("CMD-0002", map[string]any{"What": what})
	}
	return tok.Literal, nil
}

// libraryArg reads a gsflib filename. An empty name would leave mini-files
// without a _lib tag, so it is refused like a missing one.
func (in *Interpreter) libraryArg() (string, error) {
	ref, err := in.stringArg("gsflib filename")
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", errors.New("CMD-0002", map[string]any{"What": "gsflib filename"})
	}
	return ref, nil
}

// numberArg reads a number argument that must fit in 32 bits. present is
// false when the line has no more tokens.
func (in *Interpreter) numberArg(what string) (value uint32, present bool, err error) {
	tok, err := in.lex.Expect(lexer.NUMBER)
	if err != nil {
		return 0, false, err
	}
	if tok.Type == lexer.EOL {
		return 0, false, nil
	}
	if tok.Value > math.MaxUint32 {
		return 0, true, errors.NewWithPosition("STATE-0005", 0, tok.Column,
			map[string]any{"What": what, "Value": tok.Literal})
	}
	return uint32(tok.Value), true, nil
}

func (in *Interpreter) requiredNumber(what string) (uint32, error) {
	v, present, err := in.numberArg(what)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, errors.New("CMD-0002", map[string]any{"What": what})
	}
	return v, nil
}

// setTagFromNext sets name from the next string token. A missing token
// clears the tag, and so does a token of the wrong type after it has been
// reported.
func (in *Interpreter) setTagFromNext(name string) error {
	tok, err := in.lex.Expect(lexer.STRING)
	if err != nil || tok.Type == lexer.EOL {
		in.state.Tags.Set(name, "")
		return err
	}
	in.state.Tags.Set(name, tok.Literal)
	return nil
}

func cmdMultiBoot(in *Interpreter) error {
	in.state.EntryPoint = psf.MultiBootEntryPoint
	return nil
}

func cmdMakeGSFLib(in *Interpreter) error {
	src, err := in.stringArg("source filename")
	if err != nil {
		return err
	}
	dst, err := in.libraryArg()
	if err != nil {
		return err
	}
	if in.state.LibrarySet {
		return errors.New("STATE-0001", nil)
	}
	in.makeLibrary(src, dst)
	in.state.SetLibrary(dst)
	return nil
}

func cmdGSFLib(in *Interpreter) error {
	if in.state.LibrarySet {
		return errors.New("STATE-0001", nil)
	}
	ref, err := in.libraryArg()
	if err != nil {
		return err
	}
	in.state.SetLibrary(ref)
	return nil
}

func cmdTag(in *Interpreter) error {
	name, err := in.stringArg("tag name")
	if err != nil {
		return err
	}
	if err := tags.ValidateName(&name); err != nil {
		return err
	}
	return in.setTagFromNext(name)
}

func cmdFilenameTemplate(in *Interpreter) error {
	tmpl, err := in.stringArg("filename template")
	if err != nil {
		return err
	}
	in.state.FilenameTemplate = tmpl
	in.state.TemplateSet = true
	return nil
}

func cmdMiniGSFOffset(in *Interpreter) error {
	v, err := in.requiredNumber("minigsf offset")
	if err != nil {
		return err
	}
	in.state.MiniOffset = v
	return nil
}

func cmdSetSongNumber(in *Interpreter) error {
	v, err := in.requiredNumber("song number")
	if err != nil {
		return err
	}
	in.state.SongNumber = v
	return nil
}

func cmdMakeMiniGSF(in *Interpreter) error {
	id, err := in.requiredNumber("song ID")
	if err != nil {
		return err
	}
	in.state.SongID = id

	// Overrides apply in order until the first missing argument. A bad
	// argument is reported and ends them, but the file is still written.
	for _, name := range miniOverrides {
		tok, err := in.lex.Expect(lexer.STRING)
		if err != nil {
			in.report(err)
			break
		}
		if tok.Type == lexer.EOL {
			break
		}
		in.state.Tags.Set(name, tok.Literal)
	}

	if err := in.requireMiniState(); err != nil {
		return err
	}
	in.makeMini()
	return nil
}

func cmdMakeMiniGSFRange(in *Interpreter) error {
	start, err := in.requiredNumber("range start")
	if err != nil {
		return err
	}
	end, err := in.requiredNumber("range end")
	if err != nil {
		return err
	}
	step, present, err := in.numberArg("step")
	if err != nil {
		return err
	}
	if !present {
		step = 1
	}
	if step == 0 {
		return errors.New("STATE-0004", map[string]any{"Step": step})
	}
	if err := in.requireMiniState(); err != nil {
		return err
	}

	for id := uint64(start); id <= uint64(end); id += uint64(step) {
		in.state.SongID = uint32(id)
		in.makeMini()
	}
	return nil
}

func (in *Interpreter) requireMiniState() error {
	if !in.state.LibrarySet {
		return errors.New("STATE-0002", nil)
	}
	if !in.state.TemplateSet {
		return errors.New("STATE-0003", nil)
	}
	return nil
}
