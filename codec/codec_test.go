package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func compress(t *testing.T, c Codec, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc, err := c.NewEncoder(&buf)
	assert.NoErrorf(t, err, "%s.NewEncoder() error", c.Name())

	_, err = enc.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, enc.Close())

	return buf.Bytes()
}

func TestDetect_RoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("hello, world! ", 1024))

	for _, c := range Decoders {
		t.Run(c.Name(), func(t *testing.T) {
			compressed := compress(t, c, data)
			assert.Truef(t, bytes.HasPrefix(compressed, c.Magic()), "%s output does not start with its magic", c.Name())

			// hide io.Seeker to exercise the buffered peek.
			got, r, err := Detect(struct{ io.Reader }{bytes.NewReader(compressed)})
			assert.NoError(t, err)
			assert.Equal(t, c.Name(), got.Name())

			dec, err := got.NewDecoder(r)
			assert.NoError(t, err)
			defer dec.Close()

			decompressed, err := io.ReadAll(dec)
			assert.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}
}

func TestNewDecoder(t *testing.T) {
	data := []byte(strings.Repeat("0123456789", 100))

	dec, c, err := NewDecoder(bytes.NewReader(compress(t, Xz{}, data)))
	assert.NoError(t, err)
	assert.Equal(t, "xz", c.Name())

	got, err := io.ReadAll(dec)
	assert.NoError(t, err)
	assert.NoError(t, dec.Close())
	assert.Equal(t, data, got)
}

func TestNewDecoder_Passthrough(t *testing.T) {
	dec, c, err := NewDecoder(strings.NewReader("plain text"))
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, ok := dec.(io.Seeker)
	assert.True(t, ok, "passthrough of a seekable source should stay seekable")

	got, err := io.ReadAll(dec)
	assert.NoError(t, err)
	assert.Equal(t, "plain text", string(got))
}

func TestNewDecoder_CorruptedHeader(t *testing.T) {
	// valid gzip magic followed by garbage.
	_, c, err := NewDecoder(bytes.NewReader([]byte{0x1f, 0x8b, 0xff, 0xff}))
	assert.Error(t, err)
	assert.Equal(t, "gzip", c.Name())
}

func TestFromName(t *testing.T) {
	for _, name := range []string{"gz", "gzip", "bz2", "bzip2", "lz", "lzip", "xz", "zst", "zstd"} {
		c, ok := FromName(name)
		assert.Truef(t, ok, "FromName(%s)", name)
		assert.NotNil(t, c)
	}

	_, ok := FromName("rar")
	assert.False(t, ok)
}
