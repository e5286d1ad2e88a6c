package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage stores exported files in an object storage bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// SaveBlob uploads an exported file as <prefix>/<filename> and returns the
// name used. A taken name gets a " (n)" suffix so earlier exports are kept;
// two concurrent saves can still race between the check and the upload.
func (s *MinIOStorage) SaveBlob(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	base := path.Base(filename)
	for n := 0; n < maxNameAttempts; n++ {
		name := numberedName(base, n)
		key := path.Join(s.prefix, name)
		_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			continue
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return "", fmt.Errorf("stat %s: %w", key, err)
		}
		if err := s.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("no free object name for %q", base)
}

// UploadFile uploads data from reader to the configured bucket using the provided key.
func (s *MinIOStorage) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Link returns a presigned download URL for a file stored by SaveBlob.
func (s *MinIOStorage) Link(ctx context.Context, filename string, expires time.Duration) (string, error) {
	key := path.Join(s.prefix, path.Base(filename))
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
