package storage

import (
	"context"
	"fmt"
	"time"
)

// blobBackend 是对象存储 SDK 需要提供的最小能力。
type blobBackend interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	exists(ctx context.Context, key string) (bool, error)
	remove(ctx context.Context, key string) error
}

// remoteStorage 在 blobBackend 之上实现 Storage，S3/R2/OSS/COS 共用。
type remoteStorage struct {
	name    string
	backend blobBackend
	prefix  string
	now     func() time.Time
}

func newRemoteStorage(name string, backend blobBackend, prefix string) *remoteStorage {
	return &remoteStorage{
		name:    name,
		backend: backend,
		prefix:  trimPrefix(prefix),
		now:     time.Now,
	}
}

func (s *remoteStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkSave(ctx, data); err != nil {
		return "", err
	}

	key := newObjectKey(s.prefix, opts, s.now())
	name := key.String()

	if opts.SkipIfExists {
		found, err := s.backend.exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("%s: head object: %w", s.name, err)
		}
		if found {
			return name, nil
		}
	}

	if err := s.backend.put(ctx, name, data, key.ContentType()); err != nil {
		return "", fmt.Errorf("%s: put object: %w", s.name, err)
	}
	return name, nil
}

func (s *remoteStorage) Delete(ctx context.Context, key string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.backend.remove(ctx, name); err != nil {
		return fmt.Errorf("%s: delete object: %w", s.name, err)
	}
	return nil
}

var _ Storage = (*remoteStorage)(nil)
