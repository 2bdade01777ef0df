package codec

import (
	"io"

	"github.com/mholt/archives"
)

// Lzip implements Codec for lzip compression algorithm.
type Lzip struct {
}

var _ Codec = Lzip{}

func (c Lzip) Name() string {
	return "lzip"
}

func (c Lzip) Magic() []byte {
	return []byte("LZIP")
}

func (c Lzip) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return archives.Lzip{}.OpenReader(src)
}

func (c Lzip) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return archives.Lzip{}.OpenWriter(dst)
}
