package codec

import (
	"io"

	"github.com/mholt/archives"
)

// Bzip2 implements Codec for bzip2 compression algorithm.
type Bzip2 struct {
}

var _ Codec = Bzip2{}

func (c Bzip2) Name() string {
	return "bzip2"
}

func (c Bzip2) Magic() []byte {
	return []byte("BZh")
}

func (c Bzip2) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return archives.Bz2{}.OpenReader(src)
}

func (c Bzip2) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return archives.Bz2{CompressionLevel: 9}.OpenWriter(dst)
}
