package archive

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/nguyengg/arscan/codec"
	"github.com/nguyengg/arscan/stream"
)

const (
	tarBlockSize = 512

	tarTypeRegular       = '0'
	tarTypeRegularLegacy = 0
	tarTypeGNULongName   = 'L'

	// tarMaxLongName caps the size of GNU long name records.
	tarMaxLongName = 64 * 1024
)

// Tar implements Format for tar archives, optionally compressed with any codec in codec.Decoders.
//
// The compression is detected from the leading bytes of the stream. Only regular files are returned as entries.
// The archive ends at the first header block whose name and link name are both empty.
type Tar struct {
}

var _ Format = Tar{}

func (t Tar) Name() string {
	return "tar"
}

func (t Tar) SupportsMetadata() bool {
	return false
}

func (t Tar) Metadata(context.Context, io.Reader) (*Metadata, error) {
	return nil, unsupportedMetadata(t)
}

// tarHeader contains the fields of the 512-byte tar header that are needed to walk the archive.
type tarHeader struct {
	Name     string
	Size     int64
	Type     byte
	LinkName string
}

func (h tarHeader) isRegular() bool {
	return h.Type == tarTypeRegular || h.Type == tarTypeRegularLegacy
}

// isTarTerminator returns true if the header block has neither name nor link name.
func isTarTerminator(b *[tarBlockSize]byte) bool {
	return stream.IsZero(b[0:100]) && stream.IsZero(b[157:257])
}

// unmarshalTarHeader decodes the 512-byte block as a tarHeader.
//
// Layout: name (100), mode (8), uid (8), gid (8), size (12), mtime (12), checksum (8), type flag (1), link name
// (100), then the ustar extension whose prefix field (155 at offset 345) is prepended to the name.
func unmarshalTarHeader(b *[tarBlockSize]byte) (h tarHeader, err error) {
	h.Name = stream.CString(b[0:100])

	if size := b[124:136]; stream.IsBase256(size) {
		h.Size, err = stream.DecodeBase256(size)
	} else {
		h.Size, err = stream.Decode(size, stream.Octal)
	}
	if err != nil {
		return h, fmt.Errorf(`decode size of "%s" error: %w`, h.Name, err)
	}

	h.Type = b[156]
	h.LinkName = stream.CString(b[157:257])

	if string(b[257:262]) == "ustar" {
		if prefix := stream.CString(b[345:500]); prefix != "" {
			h.Name = prefix + "/" + h.Name
		}
	}

	return h, nil
}

func (t Tar) Entries(ctx context.Context, src io.Reader, patterns *Patterns) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		dec, _, err := codec.NewDecoder(src)
		if err != nil {
			yield(nil, err)
			return
		}
		defer dec.Close()

		var (
			r        = stream.NewReader(dec)
			buf      [tarBlockSize]byte
			longName string
		)

		for {
			offset := r.Offset()

			if err = r.ReadFull(ctx, buf[:]); err != nil {
				yield(nil, fmt.Errorf("read tar header error: %w", err))
				return
			}

			if isTarTerminator(&buf) {
				return
			}

			hdr, err := unmarshalTarHeader(&buf)
			if err != nil {
				yield(nil, fmt.Errorf("read tar header at offset %d error: %w", offset, err))
				return
			}

			if longName != "" {
				hdr.Name, longName = longName, ""
			}

			switch {
			case hdr.Type == tarTypeGNULongName:
				if hdr.Size > tarMaxLongName {
					yield(nil, fmt.Errorf("%w: tar long name of %d bytes at offset %d exceeds %d", ErrMalformedField, hdr.Size, offset, tarMaxLongName))
					return
				}

				b, err := r.ReadExact(ctx, hdr.Size)
				if err != nil {
					yield(nil, fmt.Errorf("read tar long name error: %w", err))
					return
				}

				longName = stream.CString(b)

			case hdr.isRegular() && patterns.Match(hdr.Name):
				content, err := r.ReadExact(ctx, hdr.Size)
				if err != nil {
					yield(nil, fmt.Errorf(`read tar file "%s" error: %w`, hdr.Name, err))
					return
				}

				if !yield(&Entry{Name: hdr.Name, Content: content}, nil) {
					return
				}

			default:
				if err = r.Skip(ctx, hdr.Size); err != nil {
					yield(nil, fmt.Errorf(`skip tar entry "%s" error: %w`, hdr.Name, err))
					return
				}
			}

			// the reader's offset is the assumed position since dec may not report a meaningful one.
			if err = r.Align(ctx, tarBlockSize); err != nil {
				yield(nil, fmt.Errorf(`align after tar entry "%s" error: %w`, hdr.Name, err))
				return
			}
		}
	}
}
