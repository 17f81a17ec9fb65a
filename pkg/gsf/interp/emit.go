package interp

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/karmic64/makegsf/pkg/gsf/buffer"
	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/filename"
	"github.com/karmic64/makegsf/pkg/gsf/manifest"
	"github.com/karmic64/makegsf/pkg/gsf/psf"
)

// libraryWarning is appended to library failures: the reference is recorded
// anyway, so mini-files written later point at a file that may be missing.
const libraryWarning = "; output minigsf files may not work"

// makeLibrary reads src and writes it as a program container to dst.
// Failures are reported here; the caller records the reference either way.
func (in *Interpreter) makeLibrary(src, dst string) {
	srcPath, err := in.resolve(src)
	if err != nil {
		in.report(err)
		return
	}
	dstPath, err := in.resolve(dst)
	if err != nil {
		in.report(err)
		return
	}

	f, err := os.Open(srcPath)
	if err != nil {
		in.report(errors.New("IO-0001", map[string]any{
			"Path": src, "Reason": reason(err), "Suffix": libraryWarning,
		}))
		return
	}
	rom := buffer.New(0x10000)
	_, rerr := rom.ReadFrom(f)
	f.Close()
	if rerr != nil {
		// what was read is still written, like a short read
		in.report(errors.New("IO-0002", map[string]any{
			"Path": src, "Reason": reason(rerr), "Suffix": libraryWarning,
		}))
	}

	payload := psf.ProgramPayload(in.state.EntryPoint, rom.Bytes())
	w, err := psf.CreateFile(dstPath, payload, nil, in.level)
	if err != nil {
		in.report(writeError(dst, err, libraryWarning))
		return
	}
	in.written(manifest.Entry{Kind: manifest.KindLibrary, Path: dstPath}, w)
}

// makeMini writes one mini-file for the current song id. The caller has
// checked that a library reference and a filename template exist.
func (in *Interpreter) makeMini() {
	name, warnings, err := filename.Render(in.state.FilenameTemplate, filename.Context{
		SongNumber: in.state.SongNumber,
		SongID:     in.state.SongID,
		Tags:       in.state.Tags,
	})
	for _, w := range warnings {
		in.report(w)
	}
	if err != nil {
		in.report(err)
		return
	}
	path, err := in.resolve(name)
	if err != nil {
		in.report(err)
		return
	}

	payload := psf.MiniPayload(in.state.EntryPoint, in.state.MiniOffset, in.state.SongID)
	w, err := psf.CreateFile(path, payload, in.state.Tags.All(), in.level)
	if err != nil {
		in.report(writeError(name, err, ""))
		return
	}
	in.written(manifest.Entry{
		Kind:       manifest.KindMini,
		Path:       path,
		SongID:     in.state.SongID,
		SongNumber: in.state.SongNumber,
	}, w)
	in.state.SongNumber++
}

func (in *Interpreter) written(e manifest.Entry, w psf.Written) {
	in.stats.FilesWritten++
	in.stats.BytesWritten += w.Size
	in.rep.Infof("wrote %s (%s)", e.Path, humanize.Bytes(uint64(w.Size)))

	if in.manifest == nil {
		return
	}
	e.Script = in.name
	e.Line = in.line
	e.Size = w.Size
	e.CRC32 = w.Header.CRC32
	if err := in.manifest.Record(e); err != nil {
		in.report(errors.New("IO-0004", map[string]any{"Path": e.Path, "Reason": err}))
	}
}

func writeError(path string, err error, suffix string) error {
	var gerr *errors.GSFError
	if stderrors.As(err, &gerr) {
		return gerr
	}
	return errors.New("IO-0003", map[string]any{"Path": path, "Reason": reason(err), "Suffix": suffix})
}

// reason strips the path from file errors, since messages name the file
// already.
func reason(err error) error {
	var pe *fs.PathError
	if stderrors.As(err, &pe) {
		return pe.Err
	}
	var le *os.LinkError
	if stderrors.As(err, &le) {
		return le.Err
	}
	return err
}
