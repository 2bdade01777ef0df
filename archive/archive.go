// Package archive enumerates the entries of ar, cpio, and tar archives in a single forward pass.
//
// Every format implements Format. Entries are produced lazily through an iterator; only the entries whose name is
// matched by the given Patterns have their content read into memory, the others are skipped over. Tar archives may
// additionally be compressed with any of the algorithms in package codec.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"iter"

	"github.com/nguyengg/arscan/stream"
)

// Format is the capability shared by all archive readers.
//
// Implementations are stateless; the state of an enumeration lives in the iterator returned by Entries. All readers
// consume src front to back and never seek backwards, so the same src must not be reused after Entries or Metadata.
type Format interface {
	// Name returns the short name of the format such as "tar".
	Name() string

	// Entries produces an iterator returning the archive entries whose name is matched by patterns, in the order
	// they appear in the archive.
	//
	// The iterator stops after yielding the first error. The src io.Reader will be consumed up to the format's end
	// of archive marker by the end of the iterator. Breaking out of the iteration early leaves src at an undefined
	// position.
	Entries(ctx context.Context, src io.Reader, patterns *Patterns) iter.Seq2[*Entry, error]

	// Metadata returns the container-level metadata.
	//
	// Formats without metadata return an error wrapping ErrUnsupportedOperation. Use SupportsMetadata to check
	// beforehand.
	Metadata(ctx context.Context, src io.Reader) (*Metadata, error)

	// SupportsMetadata returns true if Metadata is implemented.
	SupportsMetadata() bool
}

// Entry is a file from the archive whose content was read into memory in full.
//
// The reader does not retain the entry after yielding it; the consumer owns Content.
type Entry struct {
	// Name is the name of the entry with padding removed.
	Name string
	// Content contains exactly as many bytes as the entry header declared.
	Content []byte
	// Mode is the file type and permission bits if the format records them, which only cpio does since ar and tar
	// entries are always regular files. Zero means a regular file with unspecified permissions.
	Mode fs.FileMode
}

// Size returns the length of Content.
func (e *Entry) Size() int64 {
	return int64(len(e.Content))
}

// Open returns a new reader over Content.
func (e *Entry) Open() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(e.Content))
}

// Metadata describes the package contained in an archive.
type Metadata struct {
	Package      string
	Version      string
	Architecture string
	Description  string
	// Fields contains all the fields that were parsed. Never nil.
	Fields map[string]string
}

// Errors from package stream re-exported for convenience.
var (
	ErrInvalidFormat        = stream.ErrInvalidFormat
	ErrTruncatedStream      = stream.ErrTruncatedStream
	ErrMalformedField       = stream.ErrMalformedField
	ErrUnsupportedOperation = stream.ErrUnsupportedOperation
	ErrCancelled            = stream.ErrCancelled
)

// ForName returns the Format with the given name.
//
// "deb" returns an Ar that parses the Debian control file for metadata.
func ForName(name string) (Format, bool) {
	switch name {
	case "ar":
		return Ar{}, true
	case "deb":
		return Ar{Control: true}, true
	case "cpio":
		return Cpio{}, true
	case "tar":
		return Tar{}, true
	default:
		return nil, false
	}
}

// Detect peeks at the leading bytes of src to determine its Format.
//
// Streams starting with the ar or cpio magic are detected as such; everything else is assumed to be a possibly
// compressed tar archive since the tar signature is not at the start of the stream. The returned io.Reader must be
// used in place of src.
func Detect(src io.Reader) (Format, io.Reader, error) {
	b, r, err := stream.Peek(src, len(arMagic))
	if err != nil {
		return nil, nil, fmt.Errorf("detect format error: %w", err)
	}

	switch {
	case bytes.HasPrefix(b, []byte(arMagic)):
		return Ar{}, r, nil
	case bytes.HasPrefix(b, []byte(cpioMagicNewc)), bytes.HasPrefix(b, []byte(cpioMagicCRC)):
		return Cpio{}, r, nil
	default:
		return Tar{}, r, nil
	}
}

// unsupportedMetadata returns the error for formats without metadata.
func unsupportedMetadata(f Format) error {
	return fmt.Errorf("%w: %s archives have no metadata", ErrUnsupportedOperation, f.Name())
}
