package stream

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned if the magic signature or a header marker does not match the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrTruncatedStream is returned if the stream ends before a fixed-size read is satisfied.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrMalformedField is returned if a numeric header field contains non-digit content.
	ErrMalformedField = errors.New("malformed field")

	// ErrUnsupportedOperation is returned if the format does not support the requested operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrCancelled is returned if the context is done before or during an I/O operation.
	//
	// The error also wraps the context's own error so errors.Is(err, context.Canceled) works as well.
	ErrCancelled = errors.New("cancelled")
)

// checkContext returns an error wrapping ErrCancelled if ctx is done.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	return nil
}
