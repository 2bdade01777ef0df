package util

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAndRewind(t *testing.T) {
	src := strings.NewReader("!<arch>\ndebian-binary")
	_, err := src.Seek(2, io.SeekStart)
	assert.NoError(t, err)

	p := make([]byte, 6)
	n, err := ReadAndRewind(src, p)
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "arch>\n", string(p))

	rest, err := io.ReadAll(src)
	assert.NoError(t, err)
	assert.Equal(t, "arch>\ndebian-binary", string(rest))
}

func TestReadAndRewind_Short(t *testing.T) {
	src := strings.NewReader("ab")

	p := make([]byte, 6)
	n, err := ReadAndRewind(src, p)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	offset, err := src.Seek(0, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), offset)
}

func TestCopyBufferWithContext(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 100)

	var dst bytes.Buffer
	written, err := CopyBufferWithContext(context.Background(), &dst, bytes.NewReader(data), make([]byte, 64))
	assert.NoError(t, err)
	assert.Equal(t, int64(len(data)), written)
	assert.Equal(t, data, dst.Bytes())
}

func TestCopyBufferWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bytes.Buffer
	written, err := CopyBufferWithContext(ctx, &dst, strings.NewReader(strings.Repeat("a", 1000)), make([]byte, 100))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(100), written)
}
