package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nguyengg/arscan/util"
)

// Peek returns up to n leading bytes of src without consuming them.
//
// The returned io.Reader must be used in place of src afterwards. If src is an io.ReadSeeker, the bytes are read then
// the read offset is restored, and src itself is returned so that it remains seekable. Otherwise, src is wrapped in a
// bufio.Reader that replays the peeked bytes.
//
// Fewer than n bytes are returned only if src is shorter than n.
func Peek(src io.Reader, n int) ([]byte, io.Reader, error) {
	if rs, ok := src.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekCurrent); err == nil {
			b := make([]byte, n)
			m, err := util.ReadAndRewind(rs, b)
			if err != nil {
				return nil, nil, fmt.Errorf("peek error: %w", err)
			}

			return b[:m], rs, nil
		}
	}

	br, ok := src.(*bufio.Reader)
	if !ok || br.Size() < n {
		br = bufio.NewReaderSize(src, max(n, DefaultBufferSize))
	}

	b, err := br.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("peek error: %w", err)
	}

	return bytes.Clone(b), br, nil
}
