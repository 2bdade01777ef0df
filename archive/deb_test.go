package archive

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nguyengg/arscan/codec"
	"github.com/nguyengg/arscan/internal/fixture"
	"github.com/stretchr/testify/assert"
)

const testControl = `Package: hello
Version: 2.10-3
Architecture: amd64
Maintainer: Santiago Vila <sanvila@debian.org>
Installed-Size: 280
Depends: libc6 (>= 2.34)
Description: example package based on GNU hello
 The GNU hello program produces a familiar, friendly greeting.
 .
 It allows non-programmers to use a classic computer science tool.
`

func TestAr_Metadata_Control(t *testing.T) {
	data := fixture.Deb(testControl, fixture.NewFile("./usr/bin/hello", "#!/bin/sh\necho hello\n"))

	m, err := Ar{Control: true}.Metadata(context.Background(), nonSeeker{bytes.NewReader(data)})
	assert.NoError(t, err)
	assert.Equal(t, "hello", m.Package)
	assert.Equal(t, "2.10-3", m.Version)
	assert.Equal(t, "amd64", m.Architecture)
	assert.Equal(t, "example package based on GNU hello\n"+
		"The GNU hello program produces a familiar, friendly greeting.\n"+
		"\n"+
		"It allows non-programmers to use a classic computer science tool.", m.Description)
	assert.Equal(t, "280", m.Fields["Installed-Size"])
	assert.Equal(t, "libc6 (>= 2.34)", m.Fields["Depends"])
	assert.Len(t, m.Fields, 7)

	// without Control, only the archive header is read.
	m, err = Ar{}.Metadata(context.Background(), bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, "debian-binary", m.Package)
	assert.Equal(t, "2.0", m.Version)
	assert.Empty(t, m.Architecture)
}

func TestAr_Metadata_ControlCompressions(t *testing.T) {
	control := fixture.Tar(fixture.NewFile("control", "Package: x\nVersion: 1\n"))

	for _, c := range []codec.Codec{nil, codec.Gzip{}, codec.Xz{}, codec.Zstd{}} {
		name, content := "control.tar", control
		if c != nil {
			name, content = "control.tar."+map[string]string{"gzip": "gz", "xz": "xz", "zstd": "zst"}[c.Name()], fixture.Compress(c, control)
		}

		data := fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"), fixture.File{Name: name, Content: content})

		m, err := Ar{Control: true}.Metadata(context.Background(), bytes.NewReader(data))
		assert.NoErrorf(t, err, "%s", name)
		assert.Equalf(t, "x", m.Package, "%s", name)
		assert.Equalf(t, "1", m.Version, "%s", name)
	}
}

func TestAr_Metadata_NoControl(t *testing.T) {
	data := fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"), fixture.NewFile("data.tar", "x"))

	_, err := Ar{Control: true}.Metadata(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	data = fixture.Ar(fixture.NewFile("debian-binary", "2.0\n"), fixture.File{
		Name:    "control.tar",
		Content: fixture.Tar(fixture.NewFile("postinst", "#!/bin/sh\n")),
	})
	_, err = Ar{Control: true}.Metadata(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestAr_Entries_Deb(t *testing.T) {
	data := fixture.Deb(testControl, fixture.NewFile("./usr/bin/hello", "hi"), fixture.NewFile("./usr/share/doc/hello/README", "readme"))

	entries, err := collect(Ar{}.Entries(context.Background(), bytes.NewReader(data), MustPatterns(`^data\.tar`)))
	assert.NoError(t, err)
	if !assert.Len(t, entries, 1) {
		return
	}

	files, err := collect(Tar{}.Entries(context.Background(), entries[0].Open(), All))
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"./usr/bin/hello":              "hi",
		"./usr/share/doc/hello/README": "readme",
	}, names(files))
}

func TestParseDebianControl(t *testing.T) {
	long := strings.Repeat("x", 200*1024)

	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr error
	}{
		{
			name:  "first paragraph only",
			input: "Package: a\n\nPackage: b\n",
			want:  map[string]string{"Package": "a"},
		},
		{
			name:  "leading blank lines and comments",
			input: "\n# comment\nPackage: a\nVersion:1.0\n",
			want:  map[string]string{"Package": "a", "Version": "1.0"},
		},
		{
			name:  "tab continuation",
			input: "Description: short\n\tlong\n",
			want:  map[string]string{"Description": "short\nlong"},
		},
		{
			name:  "line longer than the default scanner buffer",
			input: "Package: a\nDescription: " + long + "\n",
			want:  map[string]string{"Package": "a", "Description": long},
		},
		{
			name:  "long continuation line without trailing newline",
			input: "Description: short\n " + long,
			want:  map[string]string{"Description": "short\n" + long},
		},
		{
			name:    "continuation without field",
			input:   " orphan\n",
			wantErr: ErrMalformedField,
		},
		{
			name:    "missing colon",
			input:   "Package a\n",
			wantErr: ErrMalformedField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDebianControl([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
