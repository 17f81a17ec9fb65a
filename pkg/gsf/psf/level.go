package psf

import (
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Levels lists the accepted compression level names.
var Levels = []string{"fastest", "default", "best", "none", "huffman"}

// ParseLevel maps a level name to a zlib compression level.
func ParseLevel(name string) (int, error) {
	switch name {
	case "fastest":
		return zlib.BestSpeed, nil
	case "best":
		return zlib.BestCompression, nil
	case "", "default":
		return zlib.DefaultCompression, nil
	case "none":
		return zlib.NoCompression, nil
	case "huffman":
		return zlib.HuffmanOnly, nil
	default:
		return zlib.DefaultCompression, fmt.Errorf("unknown compression level %q", name)
	}
}
