package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/systemstart/imgflow/pkg/api"
)

const DefaultS3Endpoint = "s3.amazonaws.com"

// Storage is the object storage used by the upload action.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// URL returns the public address of key.
	URL(key string) string
}

// S3Storage stores objects in an S3 compatible bucket.
type S3Storage struct {
	client   *minio.Client
	bucket   string
	region   string
	endpoint string
	cdn      string
	secure   bool
}

// NewS3 creates a storage from a service configuration. bucket,
// access_key_id and secret_access_key are required.
func NewS3(cfg api.Params) (*S3Storage, error) {
	bucket := cfg.String("bucket")
	if bucket == "" {
		return nil, fmt.Errorf("%w: storage bucket is not configured", api.ErrMissingCredential)
	}

	accessKey := cfg.String("access_key_id")
	secretKey := cfg.String("secret_access_key")
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("%w: storage access_key_id and secret_access_key are required", api.ErrMissingCredential)
	}

	endpoint := cfg.String("endpoint")
	if endpoint == "" {
		endpoint = DefaultS3Endpoint
	}
	secure := !cfg.Bool("insecure")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, cfg.String("session_token")),
		Secure: secure,
		Region: cfg.String("region"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &S3Storage{
		client:   client,
		bucket:   bucket,
		region:   cfg.String("region"),
		endpoint: endpoint,
		cdn:      cfg.String("cdn"),
		secure:   secure,
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: uploading %s: %v", api.ErrServiceError, key, err)
	}
	slog.Info("object uploaded", "bucket", s.bucket, "key", key, "size", humanize.Bytes(uint64(info.Size)))
	return nil
}

func (s *S3Storage) URL(key string) string {
	return ObjectURL(s.cdn, s.endpoint, s.bucket, s.region, s.secure, key)
}

// ObjectURL builds the public URL of key. A CDN base wins; otherwise AWS
// endpoints use virtual-hosted style and other endpoints path style.
func ObjectURL(cdn, endpoint, bucket, region string, secure bool, key string) string {
	escaped := escapeKey(key)
	if cdn != "" {
		return strings.TrimRight(cdn, "/") + "/" + escaped
	}

	scheme := "https"
	if !secure {
		scheme = "http"
	}

	if endpoint == "" || endpoint == DefaultS3Endpoint {
		host := bucket + ".s3.amazonaws.com"
		if region != "" && region != "us-east-1" {
			host = fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
		}
		return fmt.Sprintf("%s://%s/%s", scheme, host, escaped)
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimRight(endpoint, "/"), bucket, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
