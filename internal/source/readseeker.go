package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client abstracts the S3 APIs that are needed to read archives from S3.
type Client interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// DefaultBufferSize is the default read-ahead of the ranged S3 reader.
const DefaultBufferSize = 64 * 1024

// ErrSeekBeforeFirstByte is returned when seeking to a negative offset.
//
// Seeking past the last byte is allowed in the same manner as os.File; the next Read returns io.EOF.
var ErrSeekBeforeFirstByte = errors.New("seek ends up before first byte")

// readSeeker uses ranged GetObject to implement io.ReadSeeker.
//
// Seeking is free until the next Read so skipping over archive members never downloads their content.
type readSeeker struct {
	ctx         context.Context
	client      Client
	bucket, key string
	goiFn       func(*s3.GetObjectInput)
	off, size   int64
	buf         bytes.Buffer
	bufferSize  int
}

func newReadSeeker(ctx context.Context, client Client, bucket, key string, expectedBucketOwner *string, bufferSize int) (*readSeeker, error) {
	headObjectOutput, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: expectedBucketOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("determine file size error: %w", err)
	}

	return &readSeeker{
		ctx:    ctx,
		client: client,
		bucket: bucket,
		key:    key,
		goiFn: func(input *s3.GetObjectInput) {
			input.ExpectedBucketOwner = expectedBucketOwner
		},
		size:       aws.ToInt64(headObjectOutput.ContentLength),
		bufferSize: bufferSize,
	}, nil
}

func (r *readSeeker) Size() int64 {
	return r.size
}

func (r *readSeeker) Read(p []byte) (n int, err error) {
	m := len(p)
	if m == 0 {
		return 0, nil
	}

	// always uses from buffer if possible.
	if r.buf.Len() >= m {
		n, _ = r.buf.Read(p)
		r.off += int64(n)
		return n, nil
	}

	rangeStart := r.off + int64(r.buf.Len())
	if rangeStart >= r.size {
		if r.buf.Len() == 0 {
			return 0, io.EOF
		}

		n, _ = r.buf.Read(p)
		r.off += int64(n)
		return n, nil
	}

	rangeEnd := min(r.size-1, rangeStart+int64(max(m, r.bufferSize))-1)
	input := &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", rangeStart, rangeEnd)),
	}
	r.goiFn(input)

	getObjectOutput, err := r.client.GetObject(r.ctx, input)
	if err != nil {
		return 0, err
	}

	_, err = r.buf.ReadFrom(getObjectOutput.Body)
	if _ = getObjectOutput.Body.Close(); err != nil {
		return 0, err
	}

	n, _ = r.buf.Read(p)
	r.off += int64(n)
	return n, nil
}

func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var off int64
	switch whence {
	case io.SeekStart:
		off = offset
	case io.SeekCurrent:
		off = r.off + offset
	case io.SeekEnd:
		off = r.size + offset
	default:
		return r.off, fmt.Errorf("invalid whence %d", whence)
	}

	if off < 0 {
		return r.off, ErrSeekBeforeFirstByte
	}

	if d := off - r.off; d >= 0 && d <= int64(r.buf.Len()) {
		r.buf.Next(int(d))
	} else {
		r.buf.Reset()
	}

	r.off = off
	return r.off, nil
}

func (r *readSeeker) Close() error {
	r.buf.Reset()
	return nil
}
