package util

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ReadAndRewind fills p from src then restores the read offset of src to what it was before the call.
//
// A src shorter than p is not an error; the returned n is then less than len(p). Error from restoring the read offset
// is returned even if the read succeeded since src would be left at an unexpected position otherwise.
func ReadAndRewind(src io.ReadSeeker, p []byte) (n int, err error) {
	offset, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	n, err = io.ReadFull(src, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}

	if _, serr := src.Seek(offset, io.SeekStart); serr != nil {
		return n, fmt.Errorf("rewind to offset %d error: %w", offset, serr)
	}

	return n, err
}

// CopyBufferWithContext is a custom implementation of io.CopyBuffer that is cancellable via context.
//
// Similar to io.CopyBuffer, if buf is nil, a new buffer of size 32*1024 is created.
// Unlike io.CopyBuffer, it does not matter if src implements [io.WriterTo] or dst implements [io.ReaderFrom] because
// those interfaces do not support context.
//
// The context is checked for done status after every write. As a result, having too small a buffer may introduce too
// much overhead, while having a very large buffer may cause context cancellation to have a delayed effect.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, 32*1024)
	}

	for {
		nr, rerr := src.Read(buf)

		if nr > 0 {
			nw, werr := dst.Write(buf[0:nr])
			switch {
			case werr != nil:
				return written + int64(nw), werr
			case nw != nr:
				return written + int64(nw), io.ErrShortWrite
			}

			written += int64(nw)

			select {
			case <-ctx.Done():
				return written, ctx.Err()
			default:
			}
		}

		switch {
		case rerr == io.EOF:
			return written, nil
		case rerr != nil:
			return written, rerr
		}
	}
}
