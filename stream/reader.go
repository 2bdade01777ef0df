package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// DefaultBufferSize is the size of the scratch buffer used to drain skipped bytes from non-seekable sources.
const DefaultBufferSize = 32 * 1024

// Reader decodes an archive stream front to back while keeping track of the logical offset.
//
// A Reader is not safe for concurrent use; exactly one enumeration should own it.
type Reader struct {
	src    io.Reader
	seeker io.Seeker
	offset int64

	// end is the absolute position of the end of a seekable source, or -1 if unknown.
	end int64

	// scratch is write-only; bytes drained into it are never read back.
	scratch []byte
}

// NewReader returns a new Reader starting at logical offset 0.
//
// If src is an io.Seeker whose current position can be queried, Skip will seek instead of draining.
func NewReader(src io.Reader) *Reader {
	r := &Reader{src: src, end: -1}
	if s, ok := src.(io.Seeker); ok {
		if cur, err := s.Seek(0, io.SeekCurrent); err == nil {
			r.seeker = s
			if end, err := s.Seek(0, io.SeekEnd); err == nil {
				r.end = end
			}
			if _, err = s.Seek(cur, io.SeekStart); err != nil {
				r.seeker = nil
			}
		}
	}

	return r
}

// Offset returns the number of bytes consumed through this Reader, either read or skipped.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Seekable returns true if Skip will seek rather than drain.
func (r *Reader) Seekable() bool {
	return r.seeker != nil
}

// Fill reads into p until it is full or the source is exhausted.
//
// Unlike ReadFull, reaching end of input early is not an error; the caller inspects the returned count instead.
func (r *Reader) Fill(ctx context.Context, p []byte) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(r.src, p)
	r.offset += int64(n)

	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, nil
	default:
		return n, fmt.Errorf("read at offset %d error: %w", r.offset, err)
	}
}

// ReadFull reads exactly len(p) bytes into p.
//
// An error wrapping ErrTruncatedStream is returned if fewer bytes are available.
func (r *Reader) ReadFull(ctx context.Context, p []byte) error {
	n, err := r.Fill(ctx, p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return r.truncated(int64(len(p)), int64(n))
	}

	return nil
}

// ReadExact returns a new buffer containing exactly the next n bytes.
//
// Large buffers are grown as data arrives so that a bogus declared length fails with ErrTruncatedStream instead of
// allocating the full amount upfront.
func (r *Reader) ReadExact(ctx context.Context, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrMalformedField, n)
	}

	if n <= DefaultBufferSize {
		b := make([]byte, n)
		if err := r.ReadFull(ctx, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	b := make([]byte, 0, DefaultBufferSize)
	for rem := n; rem > 0; {
		m := int(min(rem, int64(max(len(b), DefaultBufferSize))))
		b = slices.Grow(b, m)

		got, err := r.Fill(ctx, b[len(b):len(b)+m])
		b = b[:len(b)+got]
		if err != nil {
			return nil, err
		}
		if got < m {
			return nil, r.truncated(n, int64(len(b)))
		}

		rem -= int64(m)
	}

	return b, nil
}

// Skip advances past the next n bytes without returning them.
//
// Seekable sources are skipped by seeking; skipping past their end fails with ErrTruncatedStream the same way
// draining would.
func (r *Reader) Skip(ctx context.Context, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrMalformedField, n)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if r.seeker != nil {
		pos, err := r.seeker.Seek(n, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("seek %d bytes at offset %d error: %w", n, r.offset, err)
		}

		// seeking past the end succeeds on most sources, so truncation is detected against the size.
		if r.end >= 0 && pos > r.end {
			got := max(0, n-(pos-r.end))
			r.offset += got
			return r.truncated(n, got)
		}

		r.offset += n
		return nil
	}

	if r.scratch == nil {
		r.scratch = make([]byte, DefaultBufferSize)
	}

	for rem := n; rem > 0; {
		m := min(rem, int64(len(r.scratch)))

		got, err := r.Fill(ctx, r.scratch[:m])
		if err != nil {
			return err
		}
		if int64(got) < m {
			return r.truncated(n, n-rem+int64(got))
		}

		rem -= m
	}

	return nil
}

// AlignTo skips forward to the next multiple of boundary, computed from the given assumed position.
//
// The assumed position is usually Offset, but callers may track their own. AlignTo is a no-op if assumed is already
// aligned.
func (r *Reader) AlignTo(ctx context.Context, boundary, assumed int64) error {
	if boundary <= 1 {
		return nil
	}

	if rem := assumed % boundary; rem != 0 {
		return r.Skip(ctx, boundary-rem)
	}

	return nil
}

// Align is a convenient method to call AlignTo with Offset as the assumed position.
func (r *Reader) Align(ctx context.Context, boundary int64) error {
	return r.AlignTo(ctx, boundary, r.offset)
}

// truncated returns an error wrapping ErrTruncatedStream for a read of want bytes that yielded only got bytes.
func (r *Reader) truncated(want, got int64) error {
	return fmt.Errorf("%w: expected %d bytes at offset %d, got %d", ErrTruncatedStream, want, r.offset-got, got)
}
