package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"iter"

	"github.com/nguyengg/arscan/stream"
)

const (
	cpioMagicNewc   = "070701"
	cpioMagicCRC    = "070702"
	cpioHeaderSize  = 110
	cpioTrailer     = "TRAILER!!!"
	cpioMaxNameSize = 4096
)

// Cpio implements Format for cpio archives in the "newc" format, with or without checksum.
//
// The file name and the content of each member are both padded to a 4-byte boundary. The archive ends with a member
// named "TRAILER!!!".
type Cpio struct {
}

var _ Format = Cpio{}

func (c Cpio) Name() string {
	return "cpio"
}

func (c Cpio) SupportsMetadata() bool {
	return false
}

func (c Cpio) Metadata(context.Context, io.Reader) (*Metadata, error) {
	return nil, unsupportedMetadata(c)
}

// cpioHeader models the 110-byte newc header. All fields are 8 hex digits.
type cpioHeader struct {
	Inode     int64
	Mode      int64
	UID       int64
	GID       int64
	NLink     int64
	ModTime   int64
	FileSize  int64
	DevMajor  int64
	DevMinor  int64
	RDevMajor int64
	RDevMinor int64
	NameSize  int64
	Check     int64
}

var cpioFieldNames = [...]string{
	"inode", "mode", "uid", "gid", "nlink", "mtime", "filesize",
	"devmajor", "devminor", "rdevmajor", "rdevminor", "namesize", "check",
}

// unmarshalCpioHeader decodes the 110-byte slice as a cpioHeader.
func unmarshalCpioHeader(b [cpioHeaderSize]byte) (h cpioHeader, err error) {
	if magic := string(b[:6]); magic != cpioMagicNewc && magic != cpioMagicCRC {
		return h, fmt.Errorf("%w: mismatched cpio magic, got %q, expected %q", ErrInvalidFormat, magic, cpioMagicNewc)
	}

	fields := [...]*int64{
		&h.Inode, &h.Mode, &h.UID, &h.GID, &h.NLink, &h.ModTime, &h.FileSize,
		&h.DevMajor, &h.DevMinor, &h.RDevMajor, &h.RDevMinor, &h.NameSize, &h.Check,
	}
	for i, f := range fields {
		off := 6 + i*8
		if *f, err = stream.Decode(b[off:off+8], stream.Hex); err != nil {
			return h, fmt.Errorf("decode %s error: %w", cpioFieldNames[i], err)
		}
	}

	return h, nil
}

// cpioFileMode converts the unix st_mode from a cpio header to fs.FileMode.
func cpioFileMode(mode int64) fs.FileMode {
	m := fs.FileMode(mode & 0o777)

	switch mode & 0o170000 {
	case 0o040000:
		m |= fs.ModeDir
	case 0o120000:
		m |= fs.ModeSymlink
	case 0o020000:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case 0o060000:
		m |= fs.ModeDevice
	case 0o010000:
		m |= fs.ModeNamedPipe
	case 0o140000:
		m |= fs.ModeSocket
	}

	return m
}

func (c Cpio) Entries(ctx context.Context, src io.Reader, patterns *Patterns) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		var (
			r   = stream.NewReader(src)
			buf [cpioHeaderSize]byte
		)

		for {
			offset := r.Offset()

			if err := r.ReadFull(ctx, buf[:]); err != nil {
				yield(nil, fmt.Errorf("read cpio header error: %w", err))
				return
			}

			hdr, err := unmarshalCpioHeader(buf)
			if err != nil {
				yield(nil, fmt.Errorf("read cpio header at offset %d error: %w", offset, err))
				return
			}

			if hdr.NameSize > cpioMaxNameSize {
				yield(nil, fmt.Errorf("%w: cpio name size %d at offset %d exceeds %d", ErrMalformedField, hdr.NameSize, offset, cpioMaxNameSize))
				return
			}

			b, err := r.ReadExact(ctx, hdr.NameSize)
			if err != nil {
				yield(nil, fmt.Errorf("read cpio file name error: %w", err))
				return
			}

			name := stream.CString(b)
			if name == cpioTrailer {
				return
			}

			if err = r.Align(ctx, 4); err != nil {
				yield(nil, fmt.Errorf(`align after cpio file name "%s" error: %w`, name, err))
				return
			}

			if patterns.Match(name) {
				content, err := r.ReadExact(ctx, hdr.FileSize)
				if err != nil {
					yield(nil, fmt.Errorf(`read cpio file "%s" error: %w`, name, err))
					return
				}

				if !yield(&Entry{Name: name, Content: content, Mode: cpioFileMode(hdr.Mode)}, nil) {
					return
				}
			} else if err = r.Skip(ctx, hdr.FileSize); err != nil {
				yield(nil, fmt.Errorf(`skip cpio file "%s" error: %w`, name, err))
				return
			}

			if err = r.Align(ctx, 4); err != nil {
				yield(nil, fmt.Errorf(`align after cpio file "%s" error: %w`, name, err))
				return
			}
		}
	}
}
