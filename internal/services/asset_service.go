package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const logoBucket = "tenant-logos"

// AssetService stores tenant logo objects and hands out presigned GET
// URLs for them.
type AssetService interface {
	UploadLogo(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	LogoURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

type minioAssetService struct {
	client *minio.Client
}

func NewAssetService(endpoint, accessKey, secretKey string, useSSL bool) (AssetService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioAssetService{client: client}, nil
}

func (m *minioAssetService) UploadLogo(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, logoBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioAssetService) LogoURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, logoBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioAssetService) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, logoBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, logoBucket, minio.MakeBucketOptions{})
	}
	return nil
}
