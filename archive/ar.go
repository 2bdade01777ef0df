package archive

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/nguyengg/arscan/stream"
)

const (
	arMagic             = "!<arch>\n"
	arEndMarker         = "`\n"
	arMemberHeaderSize  = 60
	arArchiveHeaderSize = len(arMagic) + arMemberHeaderSize + 4
)

// Ar implements Format for ar archives such as Debian packages.
//
// Members are read sequentially until fewer bytes than a member header remain. Odd-sized members are followed by a
// single pad byte, which may be missing after the last member.
type Ar struct {
	// Control if true makes Metadata continue past the archive header to find the control.tar member of a Debian
	// package and parse its control file.
	//
	// By default, Metadata only reads the archive header.
	Control bool
}

var _ Format = Ar{}

func (a Ar) Name() string {
	return "ar"
}

func (a Ar) SupportsMetadata() bool {
	return true
}

// arMemberHeader models the 60-byte header preceding each ar member.
type arMemberHeader struct {
	Name    string
	ModTime int64
	UID     int64
	GID     int64
	// Mode is kept as raw bytes.
	Mode [8]byte
	Size int64
}

// arArchiveHeader models the first 72 bytes of a Debian package: the ar magic, the header of the first member, and
// the first 4 bytes of its payload which is the package format version.
type arArchiveHeader struct {
	arMemberHeader
	Version string
}

// unmarshalArMemberHeader decodes the 60-byte slice as an arMemberHeader.
func unmarshalArMemberHeader(b [arMemberHeaderSize]byte) (h arMemberHeader, err error) {
	if string(b[58:60]) != arEndMarker {
		return h, fmt.Errorf("%w: mismatched ar header end marker, got %q, expected %q", ErrInvalidFormat, b[58:60], arEndMarker)
	}

	return decodeArMemberHeader(b)
}

// decodeArMemberHeader decodes the fields of the 60-byte slice without checking the end marker.
func decodeArMemberHeader(b [arMemberHeaderSize]byte) (h arMemberHeader, err error) {
	h.Name = arName(stream.Text(b[0:16]))
	if h.ModTime, err = stream.Decode(b[16:28], stream.Decimal); err != nil {
		return h, fmt.Errorf("decode mtime error: %w", err)
	}
	if h.UID, err = stream.Decode(b[28:34], stream.Decimal); err != nil {
		return h, fmt.Errorf("decode uid error: %w", err)
	}
	if h.GID, err = stream.Decode(b[34:40], stream.Decimal); err != nil {
		return h, fmt.Errorf("decode gid error: %w", err)
	}
	copy(h.Mode[:], b[40:48])
	if h.Size, err = stream.Decode(b[48:58], stream.Decimal); err != nil {
		return h, fmt.Errorf("decode size error: %w", err)
	}

	return h, nil
}

// unmarshalArArchiveHeader decodes the 72-byte slice as an arArchiveHeader.
//
// Only the magic is validated; the end marker of the first member header is not.
func unmarshalArArchiveHeader(b [arArchiveHeaderSize]byte) (h arArchiveHeader, err error) {
	if string(b[:len(arMagic)]) != arMagic {
		return h, fmt.Errorf("%w: mismatched ar magic, got %q, expected %q", ErrInvalidFormat, b[:len(arMagic)], arMagic)
	}

	if h.arMemberHeader, err = decodeArMemberHeader([arMemberHeaderSize]byte(b[len(arMagic) : len(arMagic)+arMemberHeaderSize])); err != nil {
		return h, err
	}

	h.Version = strings.TrimSpace(string(b[len(arMagic)+arMemberHeaderSize:]))
	return h, nil
}

// arName removes the GNU "/" terminator from member names, keeping the special "/" and "//" members intact.
func arName(name string) string {
	if name == "/" || name == "//" {
		return name
	}

	return strings.TrimSuffix(name, "/")
}

func (a Ar) Entries(ctx context.Context, src io.Reader, patterns *Patterns) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		r := stream.NewReader(src)

		var magic [len(arMagic)]byte
		if err := r.ReadFull(ctx, magic[:]); err != nil {
			yield(nil, fmt.Errorf("read ar magic error: %w", err))
			return
		}
		if string(magic[:]) != arMagic {
			yield(nil, fmt.Errorf("%w: mismatched ar magic, got %q, expected %q", ErrInvalidFormat, magic[:], arMagic))
			return
		}

		for e, err := range arMembers(ctx, r, patterns) {
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// arMembers reads members from r, which must be positioned at a member header.
func arMembers(ctx context.Context, r *stream.Reader, patterns *Patterns) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		var buf [arMemberHeaderSize]byte

		for {
			offset := r.Offset()

			n, err := r.Fill(ctx, buf[:])
			if err != nil {
				yield(nil, fmt.Errorf("read ar member header error: %w", err))
				return
			}
			if n < arMemberHeaderSize {
				return
			}

			hdr, err := unmarshalArMemberHeader(buf)
			if err != nil {
				yield(nil, fmt.Errorf("read ar member header at offset %d error: %w", offset, err))
				return
			}

			if patterns.Match(hdr.Name) {
				content, err := r.ReadExact(ctx, hdr.Size)
				if err != nil {
					yield(nil, fmt.Errorf(`read ar member "%s" error: %w`, hdr.Name, err))
					return
				}

				if !yield(&Entry{Name: hdr.Name, Content: content}, nil) {
					return
				}
			} else if err = r.Skip(ctx, hdr.Size); err != nil {
				yield(nil, fmt.Errorf(`skip ar member "%s" error: %w`, hdr.Name, err))
				return
			}

			if hdr.Size%2 == 1 {
				var pad [1]byte
				if _, err = r.Fill(ctx, pad[:]); err != nil {
					yield(nil, fmt.Errorf(`read ar member "%s" padding error: %w`, hdr.Name, err))
					return
				}
			}
		}
	}
}

// Metadata reads the 72-byte archive header and returns the name of the first member as the package name and the
// first 4 bytes of its content as the version.
//
// For a Debian package this is "debian-binary" and the package format version such as "2.0". If Ar.Control is true,
// the control file is parsed as well and its fields take precedence.
func (a Ar) Metadata(ctx context.Context, src io.Reader) (*Metadata, error) {
	r := stream.NewReader(src)

	var buf [arArchiveHeaderSize]byte
	if err := r.ReadFull(ctx, buf[:]); err != nil {
		return nil, fmt.Errorf("read ar archive header error: %w", err)
	}

	hdr, err := unmarshalArArchiveHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("read ar archive header error: %w", err)
	}

	m := &Metadata{
		Package: hdr.Name,
		Version: hdr.Version,
		Fields:  map[string]string{},
	}
	if !a.Control {
		return m, nil
	}

	// the archive header already consumed the first 4 bytes of the first member's content.
	if hdr.Size < 4 {
		return nil, fmt.Errorf(`%w: first ar member "%s" has only %d bytes`, ErrInvalidFormat, hdr.Name, hdr.Size)
	}
	if err = r.Skip(ctx, hdr.Size-4+hdr.Size%2); err != nil {
		return nil, fmt.Errorf(`skip ar member "%s" error: %w`, hdr.Name, err)
	}

	for e, err := range arMembers(ctx, r, debianControlTar) {
		if err != nil {
			return nil, err
		}

		fields, err := readDebianControl(ctx, e.Content)
		if err != nil {
			return nil, fmt.Errorf(`read control file from "%s" error: %w`, e.Name, err)
		}

		m.Fields = fields
		m.Package = fields["Package"]
		m.Version = fields["Version"]
		m.Architecture = fields["Architecture"]
		m.Description = fields["Description"]
		return m, nil
	}

	return nil, fmt.Errorf("%w: no control.tar member found", ErrInvalidFormat)
}
