package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// tempFile is removed on Close.
type tempFile struct {
	*os.File
}

func (f tempFile) Close() error {
	err := f.File.Close()
	if rerr := os.Remove(f.Name()); err == nil {
		err = rerr
	}

	return err
}

func download(ctx context.Context, client manager.DownloadAPIClient, bucket, key string, expectedBucketOwner *string, optFns ...func(*manager.Downloader)) (_ io.ReadCloser, err error) {
	f, err := os.CreateTemp("", "arscan-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file error: %w", err)
	}

	tf := tempFile{f}
	defer func() {
		if err != nil {
			_ = tf.Close()
		}
	}()

	if _, err = manager.NewDownloader(client, optFns...).Download(ctx, f, &s3.GetObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: expectedBucketOwner,
	}); err != nil {
		return nil, fmt.Errorf("download error: %w", err)
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return tf, nil
}

// partLoggingClient calls postGetObject after every GetObject made by manager.Downloader.
//
// postGetObject may be called from any of the goroutines that are downloading parts in parallel.
type partLoggingClient struct {
	manager.DownloadAPIClient
	postGetObject func(*s3.GetObjectOutput, error)
}

func (c partLoggingClient) GetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	o, err := c.DownloadAPIClient.GetObject(ctx, input, optFns...)
	c.postGetObject(o, err)
	return o, err
}

// LogDownloadedParts logs a running tally of successfully downloaded parts in format `downloaded %d parts so far`.
func LogDownloadedParts(logger *log.Logger) func(*manager.Downloader) {
	return func(downloader *manager.Downloader) {
		var n atomic.Int32
		downloader.S3 = partLoggingClient{
			DownloadAPIClient: downloader.S3,
			postGetObject: func(_ *s3.GetObjectOutput, err error) {
				if err == nil {
					logger.Printf("downloaded %d parts so far", n.Add(1))
				}
			},
		}
	}
}
