package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/arscan/archive"
	"github.com/nguyengg/arscan/internal/config"
	"github.com/nguyengg/arscan/internal/source"
)

// SourceOptions are the flags shared by all commands that read archives.
type SourceOptions struct {
	Format   string `short:"f" long:"format" choice:"auto" choice:"ar" choice:"deb" choice:"cpio" choice:"tar" description:"archive format; [scan] format from .arscan or auto-detected from the leading bytes by default"`
	Stream   bool   `long:"stream" description:"read S3 objects with a single GetObject instead of ranged reads; skipped members are downloaded and discarded"`
	Download bool   `long:"download" description:"download S3 objects to a temporary file before reading"`

	// client overrides the S3 client in tests.
	client source.Client
	// out is where results are printed; defaults to os.Stdout.
	out io.Writer
}

func (o *SourceOptions) stdout() io.Writer {
	if o.out == nil {
		return os.Stdout
	}

	return o.out
}

// open opens the named archive and resolves its Format.
//
// The returned io.Reader must be used in place of the returned io.Closer which the caller must close.
func (o *SourceOptions) open(ctx context.Context, name string, logger *log.Logger) (archive.Format, io.Reader, io.Closer, error) {
	if o.Stream && o.Download {
		return nil, nil, nil, fmt.Errorf("--stream and --download are mutually exclusive")
	}

	rc, err := source.Open(ctx, name, func(opts *source.Options) {
		switch {
		case o.Stream:
			opts.Mode = source.Streaming
		case o.Download:
			opts.Mode = source.Download
		}

		opts.Client = o.client
		opts.Logger = logger
		opts.S3Options = append(opts.S3Options, func(options *s3.Options) {
			// without this, getting a bunch of WARN message below:
			// WARN Response has no supported checksum. Not validating response payload.
			options.DisableLogOutputChecksumValidationSkipped = true
		})
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open error: %w", err)
	}

	format := o.Format
	if format == "" {
		format = config.ForScan().Format
	}

	if format == "" || format == "auto" {
		f, r, err := archive.Detect(rc)
		if err != nil {
			_ = rc.Close()
			return nil, nil, nil, err
		}

		return f, r, rc, nil
	}

	f, ok := archive.ForName(format)
	if !ok {
		_ = rc.Close()
		return nil, nil, nil, fmt.Errorf("unknown format %q", format)
	}

	return f, rc, rc, nil
}

// patterns compiles the given expressions, falling back to [scan] patterns from .arscan then archive.MatchAll.
func patterns(exprs []string) (*archive.Patterns, error) {
	if len(exprs) == 0 {
		exprs = config.ForScan().Patterns
	}
	if len(exprs) == 0 {
		return archive.All, nil
	}

	return archive.NewPatterns(exprs...)
}
