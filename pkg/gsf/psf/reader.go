package psf

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/karmic64/makegsf/pkg/gsf/buffer"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

var (
	// ErrMagic means the data does not start with the PSF marker.
	ErrMagic = stderrors.New("psf: missing PSF marker")
	// ErrTruncated means the data ends inside the header or payload.
	ErrTruncated = stderrors.New("psf: truncated container")
	// ErrChecksum means the stored CRC32 does not match the compressed data.
	ErrChecksum = stderrors.New("psf: CRC32 mismatch")
)

// File is a decoded container.
type File struct {
	Header     Header
	Compressed []byte
	Payload    []byte // inflated program payload
	Tags       []tags.Tag
	HasTags    bool // a [TAG] block was present
	UTF8       bool // the tag block declared utf8=1
}

// ReadFile reads and decodes the container at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a container. The CRC32 is checked before inflating; a
// mismatch returns the partially decoded File together with ErrChecksum.
func Read(r io.Reader) (*File, error) {
	buf := buffer.New(4096)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}
	if !bytes.Equal(data[:3], magic[:]) {
		return nil, ErrMagic
	}
	f := &File{Header: Header{
		Version:          data[3],
		Reserved:         binary.LittleEndian.Uint32(data[4:]),
		CompressedLength: binary.LittleEndian.Uint32(data[8:]),
		CRC32:            binary.LittleEndian.Uint32(data[12:]),
	}}

	rest := data[HeaderSize:]
	if uint64(len(rest)) < uint64(f.Header.Reserved)+uint64(f.Header.CompressedLength) {
		return nil, ErrTruncated
	}
	rest = rest[f.Header.Reserved:]
	f.Compressed = rest[:f.Header.CompressedLength]
	rest = rest[f.Header.CompressedLength:]

	if len(rest) > 0 {
		list, utf8, err := ParseTagBlock(rest)
		if err != nil {
			return nil, err
		}
		f.Tags, f.UTF8, f.HasTags = list, utf8, true
	}

	if Checksum(f.Compressed) != f.Header.CRC32 {
		return f, ErrChecksum
	}

	payload, err := Inflate(f.Compressed)
	if err != nil {
		return f, err
	}
	f.Payload = payload
	return f, nil
}

// Inflate decompresses a zlib stream.
func Inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("psf: %w", err)
	}
	defer zr.Close()
	out := buffer.New(len(compressed) * 2)
	if _, err := out.ReadFrom(zr); err != nil {
		return nil, fmt.Errorf("psf: %w", err)
	}
	return out.Bytes(), nil
}

// ParseTagBlock parses the bytes following the compressed data. Adjacent
// lines with the same name are joined with newlines; utf8=1 is reported
// separately and not returned as a tag.
func ParseTagBlock(b []byte) ([]tags.Tag, bool, error) {
	text := string(b)
	if !strings.HasPrefix(text, tagMarker) {
		return nil, false, fmt.Errorf("psf: %d trailing bytes without %s marker", len(b), tagMarker)
	}
	text = strings.TrimPrefix(text, tagMarker)

	var (
		list []tags.Tag
		utf8 bool
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		name, value, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			continue
		}
		if line == utf8Tag {
			utf8 = true
			continue
		}
		if n := len(list); n > 0 && list[n-1].Name == name {
			list[n-1].Value += "\n" + value
			continue
		}
		list = append(list, tags.Tag{Name: name, Value: value})
	}
	return list, utf8, nil
}

// ProgramHeader is the prefix of an inflated program payload.
type ProgramHeader struct {
	EntryPoint uint32
	Offset     uint32
	Size       uint32
}

// ParseProgramHeader splits a program payload into its header and data.
func ParseProgramHeader(payload []byte) (ProgramHeader, []byte, error) {
	if len(payload) < ProgramHeaderSize {
		return ProgramHeader{}, nil, ErrTruncated
	}
	h := ProgramHeader{
		EntryPoint: binary.LittleEndian.Uint32(payload[0:]),
		Offset:     binary.LittleEndian.Uint32(payload[4:]),
		Size:       binary.LittleEndian.Uint32(payload[8:]),
	}
	data := payload[ProgramHeaderSize:]
	if uint64(len(data)) < uint64(h.Size) {
		return h, data, ErrTruncated
	}
	return h, data[:h.Size], nil
}

// MiniRecord is the payload of a mini-file.
type MiniRecord struct {
	EntryPoint uint32
	Offset     uint32
	SongID     uint32
}

// ParseMiniRecord decodes a mini-file payload.
func ParseMiniRecord(payload []byte) (MiniRecord, error) {
	h, data, err := ParseProgramHeader(payload)
	if err != nil {
		return MiniRecord{}, err
	}
	if len(payload) != MiniRecordSize || h.Size != 4 {
		return MiniRecord{}, fmt.Errorf("psf: not a mini-file record (%d bytes, data size %d)", len(payload), h.Size)
	}
	return MiniRecord{
		EntryPoint: h.EntryPoint,
		Offset:     h.Offset,
		SongID:     binary.LittleEndian.Uint32(data),
	}, nil
}
