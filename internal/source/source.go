// Package source opens the archives named on the command line, either local files or S3 objects.
package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/arscan/internal"
	"github.com/nguyengg/arscan/internal/config"
)

// Mode controls how S3 objects are read.
type Mode int

const (
	// Ranged reads S3 objects with ranged GetObject calls so that skipped members are never downloaded.
	Ranged Mode = iota
	// Streaming reads S3 objects with a single GetObject call. The result is not seekable.
	Streaming
	// Download downloads S3 objects to a temporary file first using the S3 transfer manager.
	Download
)

// Options customises Open.
type Options struct {
	// Mode is only used for S3 objects.
	Mode Mode

	// Loader provides the bucket configuration and S3 clients. Defaults to config.DefaultLoader.
	Loader *config.Loader

	// Client overrides the S3 client created by Loader.
	Client Client

	// S3Options customises the S3 client created by Loader.
	S3Options []func(*s3.Options)

	// BufferSize is the read-ahead for Ranged mode. Defaults to DefaultBufferSize.
	BufferSize int

	// DownloadOptions customises the downloader in Download mode.
	DownloadOptions []func(*manager.Downloader)

	// Logger receives download progress in Download mode. Nil disables logging.
	Logger *log.Logger
}

// Open opens the named archive.
//
// Names starting with s3:// are read from S3 per Options.Mode; everything else is a local file. The returned reader
// implements io.Seeker whenever the underlying source can seek. Caller must close it.
func Open(ctx context.Context, name string, optFns ...func(*Options)) (io.ReadCloser, error) {
	if !internal.IsS3URI(name) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}

		return f, nil
	}

	opts := &Options{
		Mode:       Ranged,
		Loader:     config.DefaultLoader,
		BufferSize: DefaultBufferSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	bucket, key, err := internal.ParseS3URI(name)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		if client, err = opts.Loader.NewS3ClientForBucket(ctx, bucket, opts.S3Options...); err != nil {
			return nil, fmt.Errorf("create S3 client error: %w", err)
		}
	}

	expectedBucketOwner := opts.Loader.ForBucket(bucket).ExpectedBucketOwner

	switch opts.Mode {
	case Ranged:
		rs, err := newReadSeeker(ctx, client, bucket, key, expectedBucketOwner, opts.BufferSize)
		if err != nil {
			return nil, err
		}

		return rs, nil
	case Streaming:
		getObjectOutput, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket:              aws.String(bucket),
			Key:                 aws.String(key),
			ExpectedBucketOwner: expectedBucketOwner,
		})
		if err != nil {
			return nil, fmt.Errorf("get object error: %w", err)
		}

		return getObjectOutput.Body, nil
	case Download:
		optFns := append([]func(*manager.Downloader){}, opts.DownloadOptions...)
		if opts.Logger != nil {
			optFns = append(optFns, LogDownloadedParts(opts.Logger))
		}

		return download(ctx, client, bucket, key, expectedBucketOwner, optFns...)
	default:
		return nil, fmt.Errorf("unknown mode %d", opts.Mode)
	}
}

// Base returns the last element of the name which may be an S3 URI.
func Base(name string) string {
	if internal.IsS3URI(name) {
		return path.Base(name)
	}

	return filepath.Base(name)
}
