package interp

import (
	"github.com/karmic64/makegsf/pkg/gsf/psf"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

// BuildState is everything a script's commands accumulate between lines.
type BuildState struct {
	EntryPoint uint32
	MiniOffset uint32
	SongNumber uint32
	SongID     uint32

	FilenameTemplate string
	TemplateSet      bool

	// LibraryReference is the program container mini-files point at. It
	// can be set once per build.
	LibraryReference string
	LibrarySet       bool

	Tags *tags.Store
}

// NewBuildState returns the state a script starts with.
func NewBuildState() *BuildState {
	return &BuildState{
		EntryPoint: psf.DefaultEntryPoint,
		SongNumber: 1,
		Tags:       tags.NewStore(),
	}
}

// SetLibrary records the library reference and mirrors it into the _lib tag
// so every mini-file's tag block names it.
func (s *BuildState) SetLibrary(ref string) {
	s.LibraryReference = ref
	s.LibrarySet = true
	s.Tags.Set(tags.LibraryTag, ref)
}
