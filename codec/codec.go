package codec

import (
	"io"
)

// Codec has methods to create compressor/encoder and decompressor/decoder.
type Codec interface {
	// Name returns the short name of the compression algorithm such as "gzip".
	Name() string
	// Magic returns the signature that compressed streams of this algorithm start with.
	Magic() []byte
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
	// NewEncoder creates an encoder to compress contents from the given io.Writer.
	NewEncoder(dst io.Writer) (io.WriteCloser, error)
}

// FromName returns the Codec with the given name.
func FromName(name string) (Codec, bool) {
	switch name {
	case "gzip", "gz":
		return Gzip{}, true
	case "bzip2", "bz2":
		return Bzip2{}, true
	case "lzip", "lz":
		return Lzip{}, true
	case "xz":
		return Xz{}, true
	case "zstd", "zst":
		return Zstd{}, true
	default:
		return nil, false
	}
}
