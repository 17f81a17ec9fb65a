// Package psf reads and writes PSF-family containers as used by GSF: a
// 16-byte header, a zlib-compressed program payload and an optional [TAG]
// metadata block.
package psf

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/karmic64/makegsf/pkg/gsf/buffer"
	"github.com/karmic64/makegsf/pkg/gsf/errors"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

const (
	// Version is the PSF version byte identifying GSF.
	Version = 0x22
	// HeaderSize is the size of the fixed header.
	HeaderSize = 16

	// ProgramHeaderSize is the size of the entry/offset/size prefix of a
	// program payload.
	ProgramHeaderSize = 12
	// MiniRecordSize is the size of a mini-file payload.
	MiniRecordSize = 16

	// DefaultEntryPoint is the cartridge ROM entry point.
	DefaultEntryPoint = 0x08000000
	// MultiBootEntryPoint is the entry point for multiboot images.
	MultiBootEntryPoint = 0x02000000

	tagMarker = "[TAG]"
	utf8Tag   = "utf8=1"
)

var magic = [3]byte{'P', 'S', 'F'}

// Header is the fixed container header.
type Header struct {
	Version          byte
	Reserved         uint32
	CompressedLength uint32
	CRC32            uint32
}

func (h Header) bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b, magic[:])
	b[3] = h.Version
	binary.LittleEndian.PutUint32(b[4:], h.Reserved)
	binary.LittleEndian.PutUint32(b[8:], h.CompressedLength)
	binary.LittleEndian.PutUint32(b[12:], h.CRC32)
	return b
}

// ProgramPayload prefixes rom with the program header: entry point, load
// offset (the same address) and length.
func ProgramPayload(entryPoint uint32, rom []byte) []byte {
	b := buffer.New(ProgramHeaderSize + len(rom))
	var hdr [ProgramHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], entryPoint)
	binary.LittleEndian.PutUint32(hdr[4:], entryPoint)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(rom)))
	b.Append(hdr[:])
	b.Append(rom)
	return b.Bytes()
}

// MiniPayload builds the 16-byte record of a mini-file: entry point, offset,
// a 4-byte data length and the song id.
func MiniPayload(entryPoint, offset, songID uint32) []byte {
	b := make([]byte, MiniRecordSize)
	binary.LittleEndian.PutUint32(b[0:], entryPoint)
	binary.LittleEndian.PutUint32(b[4:], offset)
	binary.LittleEndian.PutUint32(b[8:], 4)
	binary.LittleEndian.PutUint32(b[12:], songID)
	return b
}

// Compress deflates payload into a single zlib stream.
func Compress(payload []byte, level int) ([]byte, error) {
	out := buffer.New(len(payload)/2 + 64)
	zw, err := zlib.NewWriterLevel(out, level)
	if err != nil {
		return nil, errors.New("ZLIB-0001", map[string]any{"Reason": err})
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, errors.New("ZLIB-0002", map[string]any{"Reason": err})
	}
	if err := zw.Close(); err != nil {
		return nil, errors.New("ZLIB-0002", map[string]any{"Reason": err})
	}
	return out.Bytes(), nil
}

// Checksum returns the CRC32 (IEEE) of b.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// WriteContainer compresses payload and writes header and compressed data.
func WriteContainer(w io.Writer, payload []byte, level int) (Header, error) {
	compressed, err := Compress(payload, level)
	if err != nil {
		return Header{}, err
	}
	return writeCompressed(w, compressed)
}

func writeCompressed(w io.Writer, compressed []byte) (Header, error) {
	h := Header{
		Version:          Version,
		CompressedLength: uint32(len(compressed)),
		CRC32:            Checksum(compressed),
	}
	if _, err := w.Write(h.bytes()); err != nil {
		return h, err
	}
	if _, err := w.Write(compressed); err != nil {
		return h, err
	}
	return h, nil
}

// WriteTagBlock writes the [TAG] block. Each line of a multi-line value is
// written as its own name=line entry, and the block ends with utf8=1 and no
// trailing newline.
func WriteTagBlock(w io.Writer, list []tags.Tag) error {
	var sb strings.Builder
	sb.WriteString(tagMarker)
	for _, t := range list {
		if t.Name == "" || t.Value == "" {
			continue
		}
		for _, line := range strings.Split(t.Value, "\n") {
			sb.WriteString(t.Name)
			sb.WriteByte('=')
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(utf8Tag)
	_, err := io.WriteString(w, sb.String())
	return err
}

// Written describes a container written by CreateFile.
type Written struct {
	Header Header
	Size   int64
}

// CreateFile writes a complete container to path. A nil tag list writes no
// tag block. The payload is compressed before the file is touched, and the
// data goes to a temporary file in the same directory that is renamed into
// place, so a failed write leaves no partial container behind.
func CreateFile(path string, payload []byte, list []tags.Tag, level int) (Written, error) {
	compressed, err := Compress(payload, level)
	if err != nil {
		return Written{}, err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return Written{}, err
	}
	tmpName := tmp.Name()
	fail := func(err error) (Written, error) {
		tmp.Close()
		os.Remove(tmpName)
		return Written{}, err
	}

	cw := &countingWriter{w: tmp}
	h, err := writeCompressed(cw, compressed)
	if err != nil {
		return fail(err)
	}
	if list != nil {
		if err := WriteTagBlock(cw, list); err != nil {
			return fail(err)
		}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Written{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Written{}, fmt.Errorf("rename into place: %w", err)
	}
	return Written{Header: h, Size: cw.n}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
