// Package filename expands mini-file filename templates.
//
// A template is literal text with conversion specifiers of the form
// %<width><letter>:
//
//	%n  current song number, zero-padded to width
//	%i  current song id, zero-padded to width
//	%t  title tag
//	%a  artist tag
//
// A width of 0 (or none) means no padding.
package filename

import (
	"strconv"
	"strings"

	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

// MaxWidth is the largest accepted conversion width.
const MaxWidth = 64

// TagSource looks up the current tags.
type TagSource interface {
	Get(name string) (tags.Tag, bool)
}

// Context is the build state a template is expanded against.
type Context struct {
	SongNumber uint32
	SongID     uint32
	Tags       TagSource
}

// Expand substitutes every conversion specifier in template. Missing title
// or artist tags produce warnings and expand to nothing; malformed
// specifiers fail the whole expansion.
func Expand(template string, ctx Context) (string, []*errors.GSFError, error) {
	var (
		sb       strings.Builder
		warnings []*errors.GSFError
	)

	rs := []rune(template)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '%' {
			sb.WriteRune(rs[i])
			continue
		}

		i++
		width := 0
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			width = width*10 + int(rs[i]-'0')
			if width > MaxWidth {
				return "", warnings, errors.New("TMPL-0003", map[string]any{"Width": width})
			}
			i++
		}
		if i >= len(rs) {
			return "", warnings, errors.New("TMPL-0001", nil)
		}

		switch rs[i] {
		case 'n':
			sb.WriteString(pad(ctx.SongNumber, width))
		case 'i':
			sb.WriteString(pad(ctx.SongID, width))
		case 't':
			warnings = appendTag(&sb, warnings, ctx.Tags, "title")
		case 'a':
			warnings = appendTag(&sb, warnings, ctx.Tags, "artist")
		default:
			return "", warnings, errors.New("TMPL-0002", map[string]any{"Char": string(rs[i])})
		}
	}

	return sb.String(), warnings, nil
}

func appendTag(sb *strings.Builder, warnings []*errors.GSFError, src TagSource, name string) []*errors.GSFError {
	if src != nil {
		if t, ok := src.Get(name); ok {
			sb.WriteString(t.Value)
			return warnings
		}
	}
	return append(warnings, errors.New("TMPL-0004", map[string]any{"Tag": name}))
}

func pad(v uint32, width int) string {
	s := strconv.FormatUint(uint64(v), 10)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// illegal lists the characters removed from filenames besides control
// characters.
const illegal = `<>:"/\|?*`

// Sanitize removes control characters and characters that are illegal in
// filenames on common hosts.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(illegal, r) {
			return -1
		}
		return r
	}, name)
}

// Render expands and sanitizes template. An expansion that ends up empty is
// reported as TMPL-0005.
func Render(template string, ctx Context) (string, []*errors.GSFError, error) {
	name, warnings, err := Expand(template, ctx)
	if err != nil {
		return "", warnings, err
	}
	name = Sanitize(name)
	if name == "" {
		return "", warnings, errors.New("TMPL-0005", nil)
	}
	return name, warnings, nil
}
