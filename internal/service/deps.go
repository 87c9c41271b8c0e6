package service

import (
	"closet/internal/entity"
	"closet/internal/imaging"
	"closet/internal/metrics"
	"closet/internal/model"
	"closet/internal/storage"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Deps 汇总各服务共享的协作者。零值字段在 normalize 中补默认值。
type Deps struct {
	Repo     model.Repository
	Storage  storage.Storage
	Recorder metrics.Recorder
	Locks    *OwnerLocks
	Cache    *SnapshotCache
	Clock    func() time.Time
}

func (d Deps) normalize() Deps {
	if d.Recorder == nil {
		d.Recorder = metrics.Nop{}
	}
	if d.Locks == nil {
		d.Locks = NewOwnerLocks()
	}
	if d.Cache == nil {
		d.Cache = NewSnapshotCache()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// now 返回当前 UTC 时间。
func (d Deps) now() time.Time {
	return d.Clock().UTC()
}

// storedImage 是写入存储后的图片信息。
type storedImage struct {
	Key      string
	Analysis imaging.Analysis
}

// saveImage 解码、分析并保存一张图片。payload 无法解析时返回 ErrInvalidInput。
func (d Deps) saveImage(ctx context.Context, payload, category string, maxBytes int, ownerID uint) (*storedImage, error) {
	decoded, err := imaging.DecodeImagePayload(payload, maxBytes)
	if err != nil {
		return nil, invalidInput("image: %v", err)
	}
	data, ext := decoded.Data, decoded.Ext
	analysis, err := imaging.Analyze(data)
	if err != nil {
		return nil, invalidInput("image: %v", err)
	}
	if d.Storage == nil {
		return nil, fmt.Errorf("save image: %w: storage not configured", ErrStoreWrite)
	}

	key, err := d.Storage.Save(ctx, data, storage.SaveOptions{Category: category, OwnerID: ownerID, Extension: ext})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"owner_id": ownerID,
			"category": category,
			"size":     len(data),
		}).Error("failed to persist image")
		d.Recorder.RecordStoreFailure("save_image", "write")
		return nil, fmt.Errorf("save image: %w: %w", ErrStoreWrite, err)
	}
	return &storedImage{Key: key, Analysis: analysis}, nil
}

// deleteBlob 尽力删除存储中的图片，失败只记录日志。
func (d Deps) deleteBlob(ctx context.Context, key string) {
	if d.Storage == nil || key == "" {
		return
	}
	if err := d.Storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete stored image")
	}
}

// OwnerLocks 为每个用户提供一把写锁，保证同一衣橱的写操作串行执行。
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock 获取 ownerID 的写锁并返回解锁函数。
func (l *OwnerLocks) Lock(ownerID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ownerID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// NotifyFunc 接收衣橱变更事件（由调用方设置，用于 SSE 推送）。
type NotifyFunc func(ownerID uint, event entity.WardrobeEvent)

type notifier struct {
	mu sync.RWMutex
	fn NotifyFunc
}

// SetNotifyFunc 设置通知函数（用于 SSE 推送）
func (n *notifier) SetNotifyFunc(fn NotifyFunc) {
	n.mu.Lock()
	n.fn = fn
	n.mu.Unlock()
}

func (n *notifier) notify(ownerID uint, action string, ids ...uint) {
	n.mu.RLock()
	fn := n.fn
	n.mu.RUnlock()
	if fn == nil {
		return
	}
	fn(ownerID, entity.WardrobeEvent{Action: action, IDs: ids})
}

// SnapshotCache 保存每个用户最后一次成功读取的衣橱与日记。
// 衣物与日记互相引用，任何写操作都会同时丢弃两者。
type SnapshotCache struct {
	garments *snapshotCache[entity.DbGarment]
	entries  *snapshotCache[entity.DbOutfitEntry]
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		garments: newSnapshotCache[entity.DbGarment](),
		entries:  newSnapshotCache[entity.DbOutfitEntry](),
	}
}

// Drop 丢弃 ownerID 的全部快照。
func (c *SnapshotCache) Drop(ownerID uint) {
	c.garments.drop(ownerID)
	c.entries.drop(ownerID)
}

type snapshotCache[T any] struct {
	mu    sync.RWMutex
	items map[uint][]T
}

func newSnapshotCache[T any]() *snapshotCache[T] {
	return &snapshotCache[T]{items: make(map[uint][]T)}
}

func (c *snapshotCache[T]) get(ownerID uint) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.items[ownerID]
	if !ok {
		return nil, false
	}
	out := make([]T, len(items))
	copy(out, items)
	return out, true
}

func (c *snapshotCache[T]) set(ownerID uint, items []T) {
	stored := make([]T, len(items))
	copy(stored, items)
	c.mu.Lock()
	c.items[ownerID] = stored
	c.mu.Unlock()
}

func (c *snapshotCache[T]) drop(ownerID uint) {
	c.mu.Lock()
	delete(c.items, ownerID)
	c.mu.Unlock()
}
