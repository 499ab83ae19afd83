package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"storefront/internal/common"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageService resolves catalog image keys to short-lived object store URLs.
type ImageService interface {
	PresignedURL(ctx context.Context, key string) (string, error)
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioImageService struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinioImageService(endpoint, accessKey, secretKey string, useSSL bool, bucket string, expiry time.Duration) (ImageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &minioImageService{client: client, bucket: bucket, expiry: expiry}, nil
}

// cleanImageKey rejects keys that would escape the bucket prefix.
func cleanImageKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", common.NewValidationError("key", "is required")
	}
	if strings.Contains(key, "..") {
		return "", common.NewValidationError("key", "is invalid")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "/") {
		return "", common.NewValidationError("key", "is invalid")
	}
	return cleaned, nil
}

func (m *minioImageService) PresignedURL(ctx context.Context, key string) (string, error) {
	objectName, err := cleanImageKey(key)
	if err != nil {
		return "", err
	}

	if _, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", fmt.Errorf("image %s: %w", objectName, common.ErrNotFound)
		}
		return "", common.Unavailable("stat image", err)
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, m.expiry, url.Values{})
	if err != nil {
		return "", common.Unavailable("presign image", err)
	}
	return u.String(), nil
}

func (m *minioImageService) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioImageService) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
