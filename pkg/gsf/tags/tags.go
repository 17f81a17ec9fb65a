// Package tags keeps the ordered name/value metadata written into every
// mini-file's tag block.
package tags

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
)

// Tag is one name/value pair.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LibraryTag is the internal tag that points mini-files at their program
// container.
const LibraryTag = "_lib"

// reserved names are computed by players from the file's own path.
var reserved = map[string]bool{
	"filedir":  true,
	"filename": true,
	"fileext":  true,
}

// Store is an ordered tag collection. Names are stored as given; callers
// fold user-supplied names with ValidateName first.
type Store struct {
	tags []Tag
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) index(name string) int {
	for i, t := range s.tags {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the tag with exactly this name.
func (s *Store) Get(name string) (Tag, bool) {
	if i := s.index(name); i >= 0 {
		return s.tags[i], true
	}
	return Tag{}, false
}

// Value returns the tag's value, or "" when unset.
func (s *Store) Value(name string) string {
	t, _ := s.Get(name)
	return t.Value
}

// Set replaces the value of an existing tag in place or appends a new one.
// An empty value removes the tag.
func (s *Store) Set(name, value string) {
	i := s.index(name)
	switch {
	case value == "" && i >= 0:
		s.tags = append(s.tags[:i], s.tags[i+1:]...)
	case value == "":
	case i >= 0:
		s.tags[i].Value = value
	default:
		s.tags = append(s.tags, Tag{Name: name, Value: value})
	}
}

// All returns a copy of the tags in insertion order.
func (s *Store) All() []Tag {
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of tags.
func (s *Store) Len() int { return len(s.tags) }

// ValidateName lowercases *name in place and then checks it. The name is
// folded even when it turns out to be invalid.
func ValidateName(name *string) error {
	*name = cases.Lower(language.Und).String(*name)
	n := *name

	if n == "" {
		return errors.New("TAG-0001", nil)
	}
	if n[0] == '_' || reserved[n] {
		return errors.New("TAG-0002", map[string]any{"Name": n})
	}
	for _, r := range n {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return errors.New("TAG-0003", map[string]any{"Name": n})
		}
	}
	return nil
}
