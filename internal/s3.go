package internal

import (
	"fmt"
	"strings"
)

// IsS3URI returns true if text starts with s3://.
func IsS3URI(text string) bool {
	return strings.HasPrefix(text, "s3://")
}

// ParseS3URI parses S3 URIs in format s3://bucket/key.
//
// Both bucket and key must be non-empty since an archive can only be read from an object.
func ParseS3URI(text string) (bucket, key string, err error) {
	if !IsS3URI(text) {
		return "", "", fmt.Errorf("text does not start with s3://")
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(text, "s3://"), "/")
	switch {
	case bucket == "":
		return "", "", fmt.Errorf("missing bucket in %q", text)
	case !ok || key == "":
		return "", "", fmt.Errorf("missing key in %q", text)
	}

	return bucket, key, nil
}
