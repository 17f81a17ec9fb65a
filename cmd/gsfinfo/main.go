// Command gsfinfo prints what is inside GSF containers: the header, whether
// the checksum holds, the program header or mini-file record, and the tags.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/karmic64/makegsf/pkg/gsf/psf"
	"github.com/karmic64/makegsf/pkg/gsf/tags"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0-dev"

// payloadDumpLimit caps the -payload hex dump.
const payloadDumpLimit = 256

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// Info is the description of one container.
type Info struct {
	Path             string     `json:"path"`
	Version          uint8      `json:"version"`
	CompressedLength uint32     `json:"compressed_length"`
	CRC32            uint32     `json:"crc32"`
	ChecksumOK       bool       `json:"checksum_ok"`
	Kind             string     `json:"kind,omitempty"` // program or mini
	EntryPoint       uint32     `json:"entry_point"`
	Offset           uint32     `json:"offset"`
	Size             uint32     `json:"size,omitempty"`
	SongID           *uint32    `json:"song_id,omitempty"`
	Tags             []tags.Tag `json:"tags,omitempty"`
	UTF8             bool       `json:"utf8"`
	Error            string     `json:"error,omitempty"`

	header  bool
	payload []byte
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("gsfinfo", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		jsonFlag    = flags.Bool("json", false, "Print JSON instead of text")
		payloadFlag = flags.Bool("payload", false, "Hex dump the start of the inflated payload")
		versionFlag = flags.Bool("version", false, "Show version information")
	)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gsfinfo [-json] [-payload] <file>...\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "gsfinfo version %s\n", Version)
		return 0
	}
	files := flags.Args()
	if len(files) == 0 {
		flags.Usage()
		return 2
	}

	failed := false
	infos := make([]Info, 0, len(files))
	for _, path := range files {
		info := inspect(path)
		if info.Error != "" {
			failed = true
		}
		infos = append(infos, info)
	}

	if *jsonFlag {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			printInfo(stdout, info, *payloadFlag)
		}
	}

	if failed {
		return 1
	}
	return 0
}

// inspect decodes the file at path. Failures are recorded in Info.Error with
// as much of the container described as could be read.
func inspect(path string) Info {
	info := Info{Path: path}
	f, err := psf.ReadFile(path)
	if f != nil {
		info.header = true
		info.Version = f.Header.Version
		info.CompressedLength = f.Header.CompressedLength
		info.CRC32 = f.Header.CRC32
		info.Tags = f.Tags
		info.UTF8 = f.UTF8
	}
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.ChecksumOK = true
	info.payload = f.Payload

	if hasLibrary(f.Tags) {
		if rec, err := psf.ParseMiniRecord(f.Payload); err == nil {
			info.Kind = "mini"
			info.EntryPoint = rec.EntryPoint
			info.Offset = rec.Offset
			info.SongID = &rec.SongID
			return info
		}
	}
	h, _, err := psf.ParseProgramHeader(f.Payload)
	info.Kind = "program"
	info.EntryPoint = h.EntryPoint
	info.Offset = h.Offset
	info.Size = h.Size
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

func hasLibrary(list []tags.Tag) bool {
	for _, t := range list {
		if t.Name == tags.LibraryTag {
			return true
		}
	}
	return false
}

func printInfo(w io.Writer, info Info, dump bool) {
	fmt.Fprintln(w, info.Path)
	if !info.header {
		fmt.Fprintf(w, "  error:       %s\n", info.Error)
		return
	}

	status := "ok"
	if !info.ChecksumOK {
		status = "MISMATCH"
	}
	fmt.Fprintf(w, "  version:     0x%02X\n", info.Version)
	fmt.Fprintf(w, "  compressed:  %s (crc32 0x%08X %s)\n",
		humanize.Bytes(uint64(info.CompressedLength)), info.CRC32, status)

	switch info.Kind {
	case "mini":
		fmt.Fprintf(w, "  payload:     mini, entry 0x%08X, offset 0x%08X, song %d\n",
			info.EntryPoint, info.Offset, *info.SongID)
	case "program":
		fmt.Fprintf(w, "  payload:     program, entry 0x%08X, offset 0x%08X, %s\n",
			info.EntryPoint, info.Offset, humanize.Bytes(uint64(info.Size)))
	}
	if info.Error != "" {
		fmt.Fprintf(w, "  error:       %s\n", info.Error)
	}

	if len(info.Tags) == 0 {
		fmt.Fprintln(w, "  tags:        (none)")
	} else {
		fmt.Fprintln(w, "  tags:")
		for _, t := range info.Tags {
			fmt.Fprintf(w, "    %s = %q\n", t.Name, t.Value)
		}
	}

	if dump && len(info.payload) > 0 {
		p := info.payload
		if len(p) > payloadDumpLimit {
			p = p[:payloadDumpLimit]
		}
		fmt.Fprintf(w, "  payload bytes (%d of %d):\n", len(p), len(info.payload))
		fmt.Fprint(w, hex.Dump(p))
	}
}
