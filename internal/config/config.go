package config

import (
	"github.com/aws/aws-sdk-go-v2/aws"
)

// ScanConfig contains the defaults for scanning archives.
type ScanConfig struct {
	// Format is one of "auto", "ar", "deb", "cpio", or "tar". Empty means not configured.
	Format string
	// Patterns are the entry name patterns to use when none are given on the command line.
	Patterns []string
}

// ForScan returns the [scan] section.
func (l *Loader) ForScan() (c ScanConfig) {
	sec, err := l.file().GetSection("scan")
	if err != nil {
		return c
	}

	c.Format = sec.Key("format").String()
	if sec.HasKey("patterns") {
		c.Patterns = sec.Key("patterns").Strings(",")
	}

	return
}

// ForScan calls Loader.ForScan on the DefaultLoader instance.
func ForScan() (c ScanConfig) {
	return DefaultLoader.ForScan()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket from the [s3://bucket] section.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	sec, err := l.file().GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	c.AWSProfile = sec.Key("aws-profile").String()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").String())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) (c BucketConfig) {
	return DefaultLoader.ForBucket(bucket)
}
