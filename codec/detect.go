package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nguyengg/arscan/stream"
)

// Decoders lists the codecs that Detect tests for, in order.
//
// gzip, bzip2, lzip, and xz are tested first; zstd is tested last.
var Decoders = []Codec{Gzip{}, Bzip2{}, Lzip{}, Xz{}, Zstd{}}

// maxMagicLen is the length of the longest signature in Decoders.
const maxMagicLen = 6

// Detect peeks at the leading bytes of src and returns the first Codec from Decoders whose signature matches.
//
// The returned io.Reader must be used in place of src since the peeked bytes may have been buffered. If no codec
// matches, the returned Codec is nil and the stream is to be read as-is.
func Detect(src io.Reader) (Codec, io.Reader, error) {
	b, r, err := stream.Peek(src, maxMagicLen)
	if err != nil {
		return nil, nil, fmt.Errorf("detect compression error: %w", err)
	}

	for _, c := range Decoders {
		if bytes.HasPrefix(b, c.Magic()) {
			return c, r, nil
		}
	}

	return nil, r, nil
}

// NewDecoder uses Detect to wrap src in a matching decompressor.
//
// If no codec matches, src is returned with a no-op Close; it stays an io.Seeker if src was one so that skipping can
// still seek. The returned Codec is nil in that case.
func NewDecoder(src io.Reader) (io.ReadCloser, Codec, error) {
	c, r, err := Detect(src)
	if err != nil {
		return nil, nil, err
	}

	if c == nil {
		return nopCloser(r), nil, nil
	}

	dec, err := c.NewDecoder(r)
	if err != nil {
		return nil, c, fmt.Errorf("%w: create %s decoder error: %w", stream.ErrInvalidFormat, c.Name(), err)
	}

	return dec, c, nil
}

type readSeekNopCloser struct {
	io.ReadSeeker
}

func (readSeekNopCloser) Close() error {
	return nil
}

func nopCloser(r io.Reader) io.ReadCloser {
	if rs, ok := r.(io.ReadSeeker); ok {
		return readSeekNopCloser{rs}
	}

	return io.NopCloser(r)
}
