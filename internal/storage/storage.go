package storage

import (
	"closet/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	TypeLocal = "local"
	TypeS3    = "s3"
	TypeOSS   = "oss" // 阿里云
	TypeCOS   = "cos" // 腾讯云
	TypeR2    = "r2"  // Cloudflare，走 S3 协议
)

var (
	// ErrEmptyPayload 表示没有可保存的图片数据。
	ErrEmptyPayload = errors.New("storage: empty payload")
	// ErrInvalidKey 表示 key 为空或试图越出存储根目录。
	ErrInvalidKey = errors.New("storage: invalid key")
)

// SaveOptions 描述一张衣橱照片。
//
// Category 区分衣物照片与日记照片，OwnerID 非零时照片按所有者分目录。
// Extension 不含前导点；BaseName 为空时生成随机文件名。
type SaveOptions struct {
	Category     string
	OwnerID      uint
	Extension    string
	BaseName     string
	SkipIfExists bool
}

// Storage 保存照片并返回存储 key，key 之后用于拼接公开 URL 或删除。
// Delete 对不存在的 key 不报错。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider 由可以直接通过 HTTP 提供静态文件的驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据 STORAGE_TYPE 创建驱动。
func NewStorage(cfg config.Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageType)) {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}

func checkSave(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	return ctx.Err()
}
