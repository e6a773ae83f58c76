package fileio

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds connection settings for an S3-compatible store.
type S3Config struct {
	Endpoint        string // e.g. "localhost:9000" or "s3.amazonaws.com"
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// S3 is a FileIO over an S3-compatible object store. Locations have the form
// s3://bucket/key (s3a:// and s3n:// are accepted too).
type S3 struct {
	mc *minio.Client
}

// NewS3 connects to the store described by cfg.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3: endpoint is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &S3{mc: mc}, nil
}

// NewInputFile implements FileIO.
func (s *S3) NewInputFile(location string) (InputFile, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	return &s3InputFile{mc: s.mc, location: location, bucket: bucket, key: key}, nil
}

// ParseS3Location splits an s3 location into bucket and key.
func ParseS3Location(location string) (bucket, key string, err error) {
	switch Scheme(location) {
	case "s3", "s3a", "s3n":
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, location)
	}
	rest := location[strings.Index(location, "://")+3:]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q", location)
	}
	return bucket, key, nil
}

type s3InputFile struct {
	mc       *minio.Client
	location string
	bucket   string
	key      string
}

func (f *s3InputFile) Location() string { return f.location }

func (f *s3InputFile) Size(ctx context.Context) (int64, error) {
	info, err := f.mc.StatObject(ctx, f.bucket, f.key, minio.StatObjectOptions{})
	if err != nil {
		return 0, s3Error(f.location, err)
	}
	return info.Size, nil
}

func (f *s3InputFile) Open(ctx context.Context) (File, error) {
	obj, err := f.mc.GetObject(ctx, f.bucket, f.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s3Error(f.location, err)
	}
	// GetObject is lazy; Stat surfaces a missing key now instead of on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s3Error(f.location, err)
	}
	return obj, nil
}

func s3Error(location string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return fmt.Errorf("s3 %s: %w", location, err)
}
