package archive

import (
	"bytes"
	"context"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/nguyengg/arscan/codec"
	"github.com/nguyengg/arscan/internal/fixture"
	"github.com/stretchr/testify/assert"
)

// singleZeroBlockTar returns one regular file header of size 0 followed by a single zero block.
func singleZeroBlockTar() []byte {
	return append(fixture.TarHeader(fixture.File{Name: "empty.txt"}, 0), make([]byte, tarBlockSize)...)
}

func TestTar_EmptyFile(t *testing.T) {
	data := singleZeroBlockTar()
	assert.Len(t, data, 2*tarBlockSize)

	entries, err := collect(Tar{}.Entries(context.Background(), bytes.NewReader(data), All))
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "empty.txt", entries[0].Name)
		assert.Empty(t, entries[0].Content)
	}
}

func TestTar_Compressed(t *testing.T) {
	files := []fixture.File{
		fixture.NewFile("a.txt", "hello"),
		fixture.NewFile("dir/b.txt", strings.Repeat("b", 1500)),
	}

	want, err := collect(Tar{}.Entries(context.Background(), bytes.NewReader(fixture.Tar(files...)), All))
	assert.NoError(t, err)
	assert.Len(t, want, 2)

	for _, c := range codec.Decoders {
		t.Run(c.Name(), func(t *testing.T) {
			data := fixture.Compress(c, fixture.Tar(files...))

			got, err := collect(Tar{}.Entries(context.Background(), bytes.NewReader(data), All))
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("gzip single zero block", func(t *testing.T) {
		want, err := collect(Tar{}.Entries(context.Background(), bytes.NewReader(singleZeroBlockTar()), All))
		assert.NoError(t, err)

		data := fixture.Compress(codec.Gzip{}, singleZeroBlockTar())
		got, err := collect(Tar{}.Entries(context.Background(), nonSeeker{bytes.NewReader(data)}, All))
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestTar_Entries(t *testing.T) {
	longName := strings.Repeat("long/", 30) + "name.txt"

	tests := []struct {
		name     string
		data     []byte
		patterns *Patterns
		want     map[string]string
		wantErr  error
	}{
		{
			name: "skips non-regular entries",
			data: fixture.Tar(
				fixture.File{Name: "dir/", Type: '5'},
				fixture.File{Name: "link", Type: '2', Link: "target"},
				fixture.NewFile("dir/file", "content"),
			),
			patterns: All,
			want:     map[string]string{"dir/file": "content"},
		},
		{
			name: "legacy regular type",
			data: func() []byte {
				data := fixture.Tar(fixture.NewFile("old", "v7"))
				data[156] = 0
				return data
			}(),
			patterns: All,
			want:     map[string]string{"old": "v7"},
		},
		{
			name:     "filter",
			data:     fixture.Tar(fixture.NewFile("a.txt", "a"), fixture.NewFile("b.bin", strings.Repeat("x", 513)), fixture.NewFile("c.txt", "c")),
			patterns: MustPatterns(`\.txt$`),
			want:     map[string]string{"a.txt": "a", "c.txt": "c"},
		},
		{
			name:     "ustar prefix",
			data:     fixture.Tar(fixture.File{Name: "file.txt", Prefix: "some/dir", Content: []byte("x")}),
			patterns: All,
			want:     map[string]string{"some/dir/file.txt": "x"},
		},
		{
			name:     "gnu long name",
			data:     fixture.Tar(fixture.NewFile(longName, "long"), fixture.NewFile("short", "s")),
			patterns: All,
			want:     map[string]string{longName: "long", "short": "s"},
		},
		{
			name: "base-256 size",
			data: func() []byte {
				data := fixture.Tar(fixture.NewFile("a", "abc"))
				copy(data[124:136], []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3})
				return data
			}(),
			patterns: All,
			want:     map[string]string{"a": "abc"},
		},
		{
			name:     "link target only is not the end",
			data:     fixture.Tar(fixture.File{Link: "target", Type: '1'}, fixture.NewFile("a", "b")),
			patterns: All,
			want:     map[string]string{"a": "b"},
		},
		{
			name:     "missing end of archive",
			data:     fixture.TarHeader(fixture.File{Name: "a"}, 0),
			patterns: All,
			wantErr:  ErrTruncatedStream,
		},
		{
			name: "malformed size",
			data: func() []byte {
				data := fixture.Tar(fixture.NewFile("a", "abc"))
				copy(data[124:136], "0000000009\x00\x00")
				return data
			}(),
			patterns: All,
			wantErr:  ErrMalformedField,
		},
		{
			name:     "truncated content",
			data:     append(fixture.TarHeader(fixture.File{Name: "a"}, 1000), "short"...),
			patterns: All,
			wantErr:  ErrTruncatedStream,
		},
		{
			name:     "empty",
			data:     nil,
			patterns: All,
			wantErr:  ErrTruncatedStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := collect(Tar{}.Entries(context.Background(), nonSeeker{bytes.NewReader(tt.data)}, tt.patterns))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, names(entries))
		})
	}
}

func TestTar_CorruptedCompression(t *testing.T) {
	content := make([]byte, 4096)
	_, err := rand.Read(content)
	assert.NoError(t, err)

	data := fixture.Compress(codec.Gzip{}, fixture.Tar(fixture.File{Name: "a", Content: content}))

	_, err = collect(Tar{}.Entries(context.Background(), bytes.NewReader(data[:len(data)/2]), All))
	assert.Error(t, err)
}
