package storage

import (
	"bytes"
	"closet/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// NewOSSStorage 创建阿里云 OSS 驱动。
func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	switch {
	case endpoint == "":
		return nil, errors.New("storage: missing OSS endpoint")
	case bucketName == "":
		return nil, errors.New("storage: missing OSS bucket")
	case accessKey == "" || secretKey == "":
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}
	return newRemoteStorage(TypeOSS, &ossBackend{bucket: bucket}, cfg.StorageOSSPrefix), nil
}

type ossBackend struct {
	bucket *oss.Bucket
}

func (b *ossBackend) put(ctx context.Context, key string, data []byte, contentType string) error {
	return b.bucket.PutObject(key, bytes.NewReader(data), oss.WithContext(ctx), oss.ContentType(contentType))
}

func (b *ossBackend) exists(ctx context.Context, key string) (bool, error) {
	return b.bucket.IsObjectExist(key, oss.WithContext(ctx))
}

// remove 对不存在的 key OSS 也返回 204。
func (b *ossBackend) remove(ctx context.Context, key string) error {
	return b.bucket.DeleteObject(key, oss.WithContext(ctx))
}
