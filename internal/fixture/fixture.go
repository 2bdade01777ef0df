// Package fixture builds small ar, cpio, and tar archives in memory for tests.
//
// Builders panic on invalid input since they are only meant to be called with literal test data.
package fixture

import (
	"bytes"
	"strings"

	"github.com/nguyengg/arscan/codec"
	"github.com/nguyengg/arscan/stream"
)

// File is a member to be written to a test archive.
type File struct {
	Name    string
	Content []byte

	// Type is the tar type flag. Defaults to '0' (regular file).
	Type byte
	// Prefix is the ustar prefix field.
	Prefix string
	// Link is the tar link name.
	Link string
	// Mode is the cpio st_mode including the file type bits. Defaults to 0o100644.
	Mode int64
}

// NewFile is a convenient method to create a File with string content.
func NewFile(name, content string) File {
	return File{Name: name, Content: []byte(content)}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ArHeader returns the 60-byte ar member header for a member with the given name and size.
func ArHeader(name string, size int64) []byte {
	b := make([]byte, 60)
	if len(name) > 16 {
		panic("ar member name too long: " + name)
	}

	copy(b[0:16], name+strings.Repeat(" ", 16-len(name)))
	must(stream.Encode(b[16:28], 0, stream.Decimal))
	must(stream.Encode(b[28:34], 0, stream.Decimal))
	must(stream.Encode(b[34:40], 0, stream.Decimal))
	copy(b[40:48], "100644  ")
	must(stream.Encode(b[48:58], size, stream.Decimal))
	copy(b[58:60], "`\n")
	return b
}

// Ar returns an ar archive containing the given files.
//
// Odd-sized members are followed by a "\n" pad byte.
func Ar(files ...File) []byte {
	var buf bytes.Buffer
	buf.WriteString("!<arch>\n")

	for _, f := range files {
		buf.Write(ArHeader(f.Name, int64(len(f.Content))))
		buf.Write(f.Content)
		if len(f.Content)%2 == 1 {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

// CpioHeader returns the 110-byte newc header for a member with the given name and size.
func CpioHeader(ino int64, name string, size int64) []byte {
	mode := int64(0o100644)
	if name == "TRAILER!!!" {
		mode = 0
	}

	return CpioModeHeader(ino, name, size, mode)
}

// CpioModeHeader is CpioHeader with an explicit st_mode.
func CpioModeHeader(ino int64, name string, size, mode int64) []byte {
	b := make([]byte, 110)
	copy(b, "070701")

	for i, v := range []int64{ino, mode, 0, 0, 1, 0, size, 0, 0, 0, 0, int64(len(name) + 1), 0} {
		off := 6 + i*8
		must(stream.Encode(b[off:off+8], v, stream.Hex))
	}

	return b
}

// Cpio returns a newc cpio archive containing the given files followed by the trailer.
func Cpio(files ...File) []byte {
	var buf bytes.Buffer

	pad := func() {
		for buf.Len()%4 != 0 {
			buf.WriteByte(0)
		}
	}

	for i, f := range append(files, File{Name: "TRAILER!!!"}) {
		if f.Mode != 0 {
			buf.Write(CpioModeHeader(int64(i+1), f.Name, int64(len(f.Content)), f.Mode))
		} else {
			buf.Write(CpioHeader(int64(i+1), f.Name, int64(len(f.Content))))
		}
		buf.WriteString(f.Name)
		buf.WriteByte(0)
		pad()
		buf.Write(f.Content)
		pad()
	}

	return buf.Bytes()
}

// TarHeader returns the 512-byte ustar header for the given file.
func TarHeader(f File, size int64) []byte {
	b := make([]byte, 512)
	if len(f.Name) > 100 || len(f.Link) > 100 || len(f.Prefix) > 155 {
		panic("tar field too long: " + f.Name)
	}

	typ := f.Type
	if typ == 0 {
		typ = '0'
	}

	copy(b[0:100], f.Name)
	must(stream.Encode(b[100:108], 0o644, stream.Octal))
	must(stream.Encode(b[108:116], 0, stream.Octal))
	must(stream.Encode(b[116:124], 0, stream.Octal))
	must(stream.Encode(b[124:136], size, stream.Octal))
	must(stream.Encode(b[136:148], 0, stream.Octal))
	b[156] = typ
	copy(b[157:257], f.Link)
	copy(b[257:263], "ustar\x00")
	copy(b[263:265], "00")
	copy(b[345:500], f.Prefix)

	// checksum is computed with the checksum field filled with spaces.
	copy(b[148:156], "        ")
	var sum int64
	for _, c := range b {
		sum += int64(c)
	}
	must(stream.Encode(b[148:155], sum, stream.Octal))
	b[155] = ' '

	return b
}

// Tar returns a tar archive containing the given files followed by two zero blocks.
//
// Names longer than 100 bytes are written using a GNU long name record.
func Tar(files ...File) []byte {
	var buf bytes.Buffer

	pad := func() {
		for buf.Len()%512 != 0 {
			buf.WriteByte(0)
		}
	}

	for _, f := range files {
		if len(f.Name) > 100 {
			name := append([]byte(f.Name), 0)
			buf.Write(TarHeader(File{Name: "././@LongLink", Type: 'L'}, int64(len(name))))
			buf.Write(name)
			pad()
			f.Name = f.Name[:100]
		}

		buf.Write(TarHeader(f, int64(len(f.Content))))
		buf.Write(f.Content)
		pad()
	}

	buf.Write(make([]byte, 1024))
	return buf.Bytes()
}

// Compress compresses data with the given codec.
func Compress(c codec.Codec, data []byte) []byte {
	var buf bytes.Buffer

	enc, err := c.NewEncoder(&buf)
	must(err)
	_, err = enc.Write(data)
	must(err)
	must(enc.Close())

	return buf.Bytes()
}

// Deb returns a Debian package with the given control file and data files.
//
// control.tar.gz contains "./control"; data.tar.xz contains the data files.
func Deb(control string, data ...File) []byte {
	return Ar(
		NewFile("debian-binary", "2.0\n"),
		File{Name: "control.tar.gz", Content: Compress(codec.Gzip{}, Tar(NewFile("./control", control)))},
		File{Name: "data.tar.xz", Content: Compress(codec.Xz{}, Tar(data...))},
	)
}
