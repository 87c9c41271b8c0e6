package service

import (
	"closet/internal/entity"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

const diaryImageCategory = "diary"

// HistorySnapshot 是一次穿搭日记读取的结果。Stale 为 true 表示数据来自缓存。
type HistorySnapshot struct {
	Entries []entity.DbOutfitEntry
	Stale   bool
}

// DiaryService 管理穿搭日记。保存日记时会在同一事务中记录所含衣物的穿着。
type DiaryService struct {
	notifier
	deps          Deps
	maxImageBytes int
}

// NewDiaryService 创建日记服务实例
func NewDiaryService(deps Deps, maxImageBytes int) *DiaryService {
	return &DiaryService{
		deps:          deps.normalize(),
		maxImageBytes: maxImageBytes,
	}
}

// History 读取用户的全部日记（最新在前），失败时遵循与 ClosetService.Snapshot 相同的缓存约定。
func (s *DiaryService) History(ctx context.Context, ownerID uint) (HistorySnapshot, error) {
	return s.List(ctx, ownerID, "")
}

// List 按心情筛选日记，mood 为空时返回全部。
func (s *DiaryService) List(ctx context.Context, ownerID uint, mood string) (HistorySnapshot, error) {
	if ownerID == 0 {
		return HistorySnapshot{Entries: []entity.DbOutfitEntry{}}, invalidInput("owner is required")
	}
	mood = strings.TrimSpace(mood)

	entries, err := s.deps.Repo.ListOutfitEntries(ctx, entity.OutfitEntryQuery{OwnerID: ownerID, Mood: mood})
	if err != nil {
		wrapped := s.deps.readFailed("list_outfit_entries", ownerID, err)
		cached, ok := s.deps.Cache.entries.get(ownerID)
		if !ok {
			return HistorySnapshot{Entries: []entity.DbOutfitEntry{}}, wrapped
		}
		s.deps.Recorder.RecordStaleRead("list_outfit_entries")
		if mood != "" {
			filtered := make([]entity.DbOutfitEntry, 0, len(cached))
			for _, e := range cached {
				if strings.EqualFold(e.Mood, mood) {
					filtered = append(filtered, e)
				}
			}
			cached = filtered
		}
		return HistorySnapshot{Entries: cached, Stale: true}, wrapped
	}
	if mood == "" {
		s.deps.Cache.entries.set(ownerID, entries)
	}
	return HistorySnapshot{Entries: entries}, nil
}

// Get 返回单条日记。
func (s *DiaryService) Get(ctx context.Context, ownerID, id uint) (*entity.DbOutfitEntry, error) {
	if id == 0 {
		return nil, invalidInput("outfit entry id is required")
	}
	entry, err := s.deps.Repo.GetOutfitEntry(ctx, ownerID, id)
	if err != nil {
		return nil, s.deps.readFailed("get_outfit_entry", ownerID, err)
	}
	return entry, nil
}

// Create 保存一条日记。未指定时间时使用当前时间，时间不能晚于当前时间。
func (s *DiaryService) Create(ctx context.Context, ownerID uint, req entity.OutfitEntryCreateRequest) (*entity.DbOutfitEntry, error) {
	if ownerID == 0 {
		return nil, invalidInput("owner is required")
	}
	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		return nil, invalidInput("mood is required")
	}

	now := s.deps.now()
	wornAt := now
	if req.WornAt != nil && !req.WornAt.IsZero() {
		wornAt = req.WornAt.UTC()
		if wornAt.After(now) {
			return nil, invalidInput("worn_at must not be in the future")
		}
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	entry := &entity.DbOutfitEntry{
		OwnerID: ownerID,
		WornAt:  wornAt,
		Mood:    mood,
		Notes:   strings.TrimSpace(req.Notes),
	}
	if strings.TrimSpace(req.Image) != "" {
		image, err := s.deps.saveImage(ctx, req.Image, diaryImageCategory, s.maxImageBytes, ownerID)
		if err != nil {
			return nil, err
		}
		entry.ImagePath = image.Key
	}

	if err := s.deps.Repo.CreateOutfitEntry(ctx, entry, req.GarmentIDs); err != nil {
		s.deps.deleteBlob(ctx, entry.ImagePath)
		return nil, s.deps.writeFailed("create_outfit_entry", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	if len(entry.Garments) > 0 {
		s.deps.Recorder.RecordWear(len(entry.Garments))
	}

	logrus.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"entry_id": entry.ID,
		"mood":     entry.Mood,
		"garments": len(entry.Garments),
	}).Info("outfit entry saved")
	s.notify(ownerID, "diary_saved", entry.ID)
	return entry, nil
}

// Update 修改日记的心情与备注。
func (s *DiaryService) Update(ctx context.Context, ownerID, id uint, req entity.OutfitEntryUpdateRequest) (*entity.DbOutfitEntry, error) {
	if id == 0 {
		return nil, invalidInput("outfit entry id is required")
	}

	var updates entity.OutfitEntryUpdates
	if req.Mood != nil {
		mood := strings.TrimSpace(*req.Mood)
		if mood == "" {
			return nil, invalidInput("mood must not be empty")
		}
		updates.Mood = &mood
	}
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		updates.Notes = &notes
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if !updates.IsEmpty() {
		if err := s.deps.Repo.UpdateOutfitEntry(ctx, ownerID, id, updates); err != nil {
			return nil, s.deps.writeFailed("update_outfit_entry", ownerID, err)
		}
		s.deps.Cache.Drop(ownerID)
		s.notify(ownerID, "diary_updated", id)
	}
	return s.Get(ctx, ownerID, id)
}

// Delete 删除日记。已记录的穿着次数保持不变。
func (s *DiaryService) Delete(ctx context.Context, ownerID, id uint) error {
	if id == 0 {
		return invalidInput("outfit entry id is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	entry, err := s.deps.Repo.GetOutfitEntry(ctx, ownerID, id)
	if err != nil {
		return s.deps.readFailed("get_outfit_entry", ownerID, err)
	}
	if err := s.deps.Repo.DeleteOutfitEntry(ctx, ownerID, id); err != nil {
		return s.deps.writeFailed("delete_outfit_entry", ownerID, err)
	}
	s.deps.Cache.Drop(ownerID)
	s.deps.deleteBlob(ctx, entry.ImagePath)
	s.notify(ownerID, "diary_deleted", id)
	return nil
}
