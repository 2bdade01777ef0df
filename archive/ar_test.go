package archive

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/nguyengg/arscan/internal/fixture"
	"github.com/stretchr/testify/assert"
)

func TestAr_DebianBinary(t *testing.T) {
	data := fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"))
	assert.Len(t, data, arArchiveHeaderSize)

	entries, err := collect(Ar{}.Entries(context.Background(), bytes.NewReader(data), All))
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "debian-binary", entries[0].Name)
		assert.Equal(t, "2.0\n", string(entries[0].Content))
	}

	m, err := Ar{}.Metadata(context.Background(), bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, &Metadata{
		Package: "debian-binary",
		Version: "2.0",
		Fields:  map[string]string{},
	}, m)
}

func TestAr_Entries(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		patterns *Patterns
		want     map[string]string
		wantErr  error
	}{
		{
			name:     "filter",
			data:     fixture.Ar(fixture.NewFile("a.txt", "a"), fixture.NewFile("b.bin", "bb"), fixture.NewFile("c.txt", "ccc")),
			patterns: MustPatterns(`\.txt$`),
			want:     map[string]string{"a.txt": "a", "c.txt": "ccc"},
		},
		{
			name:     "gnu name terminator",
			data:     fixture.Ar(fixture.NewFile("a.txt/", "a")),
			patterns: All,
			want:     map[string]string{"a.txt": "a"},
		},
		{
			name:     "missing final pad byte",
			data:     bytes.TrimSuffix(fixture.Ar(fixture.NewFile("a", "abc")), []byte("\n")),
			patterns: All,
			want:     map[string]string{"a": "abc"},
		},
		{
			name:     "trailing bytes shorter than a header",
			data:     append(fixture.Ar(fixture.NewFile("a", "ab")), "garbage"...),
			patterns: All,
			want:     map[string]string{"a": "ab"},
		},
		{
			name:     "magic only",
			data:     []byte("!<arch>\n"),
			patterns: All,
			want:     map[string]string{},
		},
		{
			name:     "bad magic",
			data:     []byte("!<arch>?" + string(fixture.ArHeader("a", 0))),
			patterns: All,
			wantErr:  ErrInvalidFormat,
		},
		{
			name:     "empty",
			data:     nil,
			patterns: All,
			wantErr:  ErrTruncatedStream,
		},
		{
			name: "malformed size",
			data: func() []byte {
				hdr := fixture.ArHeader("a", 1)
				copy(hdr[48:58], "12x       ")
				return append([]byte("!<arch>\n"), hdr...)
			}(),
			patterns: All,
			wantErr:  ErrMalformedField,
		},
		{
			name: "bad end marker",
			data: func() []byte {
				hdr := fixture.ArHeader("a", 0)
				copy(hdr[58:60], "xx")
				return append([]byte("!<arch>\n"), hdr...)
			}(),
			patterns: All,
			wantErr:  ErrInvalidFormat,
		},
		{
			name:     "truncated content",
			data:     append(append([]byte("!<arch>\n"), fixture.ArHeader("a", 100)...), "short"...),
			patterns: All,
			wantErr:  ErrTruncatedStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := collect(Ar{}.Entries(context.Background(), nonSeeker{bytes.NewReader(tt.data)}, tt.patterns))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, names(entries))
		})
	}
}

func TestAr_Entries_TruncatedSkip(t *testing.T) {
	data := append(append([]byte("!<arch>\n"), fixture.ArHeader("a", 100)...), "short"...)

	for name, src := range map[string]io.Reader{
		"seekable": bytes.NewReader(data),
		"drain":    nonSeeker{bytes.NewReader(data)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := collect(Ar{}.Entries(context.Background(), src, MustPatterns(`^b$`)))
			assert.ErrorIs(t, err, ErrTruncatedStream)
		})
	}
}

func TestAr_Metadata_Errors(t *testing.T) {
	_, err := Ar{}.Metadata(context.Background(), bytes.NewReader([]byte("!<arch>\n")))
	assert.ErrorIs(t, err, ErrTruncatedStream)

	data := fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"))
	data[0] = '?'
	_, err = Ar{}.Metadata(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestAr_Metadata_IgnoresEndMarker(t *testing.T) {
	data := fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"))
	copy(data[len(arMagic)+58:], "??")

	m, err := Ar{}.Metadata(context.Background(), bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, &Metadata{
		Package: "debian-binary",
		Version: "2.0",
		Fields:  map[string]string{},
	}, m)

	// member iteration still requires the end marker.
	_, err = collect(Ar{}.Entries(context.Background(), bytes.NewReader(data), All))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
