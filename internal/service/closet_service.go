package service

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const garmentImageCategory = "garments"

// GarmentSnapshot 是一次衣橱读取的结果。Stale 为 true 表示数据来自缓存。
type GarmentSnapshot struct {
	Garments []entity.DbGarment
	Stale    bool
}

// ClosetService 管理用户衣橱中的衣物，并维护最后一次成功读取的快照。
type ClosetService struct {
	notifier
	deps          Deps
	maxImageBytes int
}

// NewClosetService 创建衣橱服务实例
func NewClosetService(deps Deps, maxImageBytes int) *ClosetService {
	return &ClosetService{
		deps:          deps.normalize(),
		maxImageBytes: maxImageBytes,
	}
}

// Snapshot 读取用户的全部衣物。
//
// 读取失败时，若存在上次成功读取的快照则返回该快照（Stale=true）并同时返回
// 包装了 ErrStoreRead 的错误；没有缓存时返回空快照和错误。
func (s *ClosetService) Snapshot(ctx context.Context, ownerID uint) (GarmentSnapshot, error) {
	if ownerID == 0 {
		return GarmentSnapshot{Garments: []entity.DbGarment{}}, invalidInput("owner is required")
	}

	garments, err := s.deps.Repo.ListGarments(ctx, entity.GarmentQuery{OwnerID: ownerID})
	if err != nil {
		return s.fallback(ownerID, s.deps.readFailed("list_garments", ownerID, err), nil)
	}
	s.deps.Cache.garments.set(ownerID, garments)
	return GarmentSnapshot{Garments: garments}, nil
}

// List 按分类、颜色与收藏筛选衣物，按最近穿着时间升序（从未穿过的在前）。
func (s *ClosetService) List(ctx context.Context, ownerID uint, filter entity.GarmentListQuery) (GarmentSnapshot, error) {
	category := strings.TrimSpace(filter.Category)
	color := strings.TrimSpace(filter.Color)
	if color != "" {
		canonical, ok := wardrobe.CanonicalColor(color)
		if !ok {
			return GarmentSnapshot{Garments: []entity.DbGarment{}}, invalidInput("unknown color %q", color)
		}
		color = canonical
	}
	if category == "" && color == "" && !filter.Favorite {
		return s.Snapshot(ctx, ownerID)
	}
	if ownerID == 0 {
		return GarmentSnapshot{Garments: []entity.DbGarment{}}, invalidInput("owner is required")
	}

	garments, err := s.deps.Repo.ListGarments(ctx, entity.GarmentQuery{
		OwnerID:      ownerID,
		Category:     category,
		Color:        color,
		FavoriteOnly: filter.Favorite,
	})
	if err != nil {
		keep := func(g entity.DbGarment) bool {
			if category != "" && g.Category != category {
				return false
			}
			if color != "" && !strings.EqualFold(g.Color, color) {
				return false
			}
			return !filter.Favorite || g.Favorite
		}
		return s.fallback(ownerID, s.deps.readFailed("list_garments", ownerID, err), keep)
	}
	return GarmentSnapshot{Garments: garments}, nil
}

func (s *ClosetService) fallback(ownerID uint, err error, keep func(entity.DbGarment) bool) (GarmentSnapshot, error) {
	cached, ok := s.deps.Cache.garments.get(ownerID)
	if !ok {
		return GarmentSnapshot{Garments: []entity.DbGarment{}}, err
	}
	s.deps.Recorder.RecordStaleRead("list_garments")
	if keep != nil {
		filtered := make([]entity.DbGarment, 0, len(cached))
		for _, g := range cached {
			if keep(g) {
				filtered = append(filtered, g)
			}
		}
		cached = filtered
	}
	return GarmentSnapshot{Garments: cached, Stale: true}, err
}

// Get 返回单件衣物。
func (s *ClosetService) Get(ctx context.Context, ownerID, id uint) (*entity.DbGarment, error) {
	if id == 0 {
		return nil, invalidInput("garment id is required")
	}
	garment, err := s.deps.Repo.GetGarment(ctx, ownerID, id)
	if err != nil {
		return nil, s.deps.readFailed("get_garment", ownerID, err)
	}
	return garment, nil
}

// Add 新增一件衣物。带图片时会生成 BlurHash，未指定颜色时取图片主色。
func (s *ClosetService) Add(ctx context.Context, ownerID uint, req entity.GarmentCreateRequest) (*entity.DbGarment, error) {
	if ownerID == 0 {
		return nil, invalidInput("owner is required")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, invalidInput("category is required")
	}
	color := strings.TrimSpace(req.Color)
	if color != "" {
		canonical, ok := wardrobe.CanonicalColor(color)
		if !ok {
			return nil, invalidInput("unknown color %q", color)
		}
		color = canonical
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	garment := &entity.DbGarment{
		OwnerID:  ownerID,
		Category: category,
		Color:    color,
		Favorite: req.Favorite,
		AddedAt:  s.deps.now(),
	}

	if strings.TrimSpace(req.Image) != "" {
		image, err := s.deps.saveImage(ctx, req.Image, garmentImageCategory, s.maxImageBytes, ownerID)
		if err != nil {
			return nil, err
		}
		garment.ImagePath = image.Key
		garment.BlurHash = image.Analysis.BlurHash
		if garment.Color == "" {
			garment.Color = image.Analysis.Color
		}
	}

	if err := s.deps.Repo.CreateGarment(ctx, garment); err != nil {
		s.deps.deleteBlob(ctx, garment.ImagePath)
		return nil, s.deps.writeFailed("create_garment", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)

	logrus.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"garment_id": garment.ID,
		"category":   garment.Category,
		"color":      garment.Color,
	}).Info("garment added")
	s.notify(ownerID, "garment_added", garment.ID)
	return garment, nil
}

// Update 修改衣物的分类、颜色或收藏状态。
func (s *ClosetService) Update(ctx context.Context, ownerID, id uint, req entity.GarmentUpdateRequest) (*entity.DbGarment, error) {
	if id == 0 {
		return nil, invalidInput("garment id is required")
	}

	var updates entity.GarmentUpdates
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, invalidInput("category must not be empty")
		}
		updates.Category = &category
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		if color != "" {
			canonical, ok := wardrobe.CanonicalColor(color)
			if !ok {
				return nil, invalidInput("unknown color %q", color)
			}
			color = canonical
		}
		updates.Color = &color
	}
	updates.Favorite = req.Favorite

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if !updates.IsEmpty() {
		if err := s.deps.Repo.UpdateGarment(ctx, ownerID, id, updates); err != nil {
			return nil, s.deps.writeFailed("update_garment", ownerID, err)
		}
		s.deps.Cache.Drop(ownerID)
		s.notify(ownerID, "garment_updated", id)
	}
	return s.Get(ctx, ownerID, id)
}

// ToggleFavorite 切换收藏状态并返回更新后的衣物。
func (s *ClosetService) ToggleFavorite(ctx context.Context, ownerID, id uint) (*entity.DbGarment, error) {
	if id == 0 {
		return nil, invalidInput("garment id is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	current, err := s.deps.Repo.GetGarment(ctx, ownerID, id)
	if err != nil {
		return nil, s.deps.readFailed("get_garment", ownerID, err)
	}
	toggled := wardrobe.ToggleFavorite(*current)
	if err := s.deps.Repo.UpdateGarment(ctx, ownerID, id, entity.GarmentUpdates{Favorite: &toggled.Favorite}); err != nil {
		return nil, s.deps.writeFailed("toggle_favorite", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	s.notify(ownerID, "favorite_toggled", id)
	return &toggled, nil
}

// Delete 删除衣物及其在日记与计划中的关联，并尽力删除图片。
func (s *ClosetService) Delete(ctx context.Context, ownerID, id uint) error {
	if id == 0 {
		return invalidInput("garment id is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	garment, err := s.deps.Repo.GetGarment(ctx, ownerID, id)
	if err != nil {
		return s.deps.readFailed("get_garment", ownerID, err)
	}
	if err := s.deps.Repo.DeleteGarment(ctx, ownerID, id); err != nil {
		return s.deps.writeFailed("delete_garment", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	s.deps.deleteBlob(ctx, garment.ImagePath)
	s.notify(ownerID, "garment_deleted", id)
	return nil
}

// Reset 清空用户衣橱，返回删除的衣物数量。
func (s *ClosetService) Reset(ctx context.Context, ownerID uint) (int64, error) {
	if ownerID == 0 {
		return 0, invalidInput("owner is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	garments, err := s.deps.Repo.ListGarments(ctx, entity.GarmentQuery{OwnerID: ownerID})
	if err != nil {
		return 0, s.deps.readFailed("list_garments", ownerID, err)
	}
	deleted, err := s.deps.Repo.DeleteAllGarments(ctx, ownerID)
	if err != nil {
		return 0, s.deps.writeFailed("reset_closet", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	for _, g := range garments {
		s.deps.deleteBlob(ctx, g.ImagePath)
	}

	logrus.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"deleted":  deleted,
	}).Info("closet reset")
	s.notify(ownerID, "closet_reset")
	return deleted, nil
}

// WearOutfit 将一组衣物标记为已穿着：每件穿着次数加一，最近穿着时间统一为同一时刻。
// 写入在单个事务中完成，任一衣物不存在时整体失败。
func (s *ClosetService) WearOutfit(ctx context.Context, ownerID uint, garmentIDs []uint) ([]entity.DbGarment, time.Time, error) {
	ids := wardrobe.UniqueIDs(garmentIDs)
	if len(ids) == 0 {
		return nil, time.Time{}, invalidInput("at least one garment is required")
	}
	if ownerID == 0 {
		return nil, time.Time{}, invalidInput("owner is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	wornAt := s.deps.now()
	garments, err := s.deps.Repo.MarkGarmentsWorn(ctx, ownerID, ids, wornAt)
	if err != nil {
		return nil, time.Time{}, s.deps.writeFailed("wear_outfit", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	s.deps.Recorder.RecordWear(len(garments))

	logrus.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"garments": ids,
	}).Info("outfit worn")
	s.notify(ownerID, "outfit_worn", ids...)
	return garments, wornAt, nil
}
