package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStorage stores item images and hands back a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, originalFileName, contentType string, data []byte) (url, objectKey string, err error)
	Remove(ctx context.Context, objectKey string) error
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("make/verify bucket %s: %w", bucket, err)
		}
	}

	return &MinioStorage{client: client, bucket: bucket}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, originalFileName, contentType string, data []byte) (string, string, error) {
	ext := filepath.Ext(originalFileName)
	objectKey := fmt.Sprintf("items/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	return url, objectKey, nil
}

func (s *MinioStorage) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
