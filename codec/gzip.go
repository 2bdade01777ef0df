package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip implements Codec for gzip compression algorithm.
type Gzip struct {
}

var _ Codec = Gzip{}

func (c Gzip) Name() string {
	return "gzip"
}

func (c Gzip) Magic() []byte {
	return []byte{0x1f, 0x8b}
}

func (c Gzip) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}

func (c Gzip) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(dst, gzip.BestCompression)
}
