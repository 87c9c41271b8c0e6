package model

import (
	"closet/internal/entity"
	"context"
	"time"
)

// Repository 定义衣橱数据存储接口
type Repository interface {
	// 连接
	Ping(ctx context.Context) error
	Close() error

	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	CountUsers(ctx context.Context) (int64, error)

	// 衣物
	ListGarments(ctx context.Context, query entity.GarmentQuery) ([]entity.DbGarment, error)
	GetGarment(ctx context.Context, ownerID, id uint) (*entity.DbGarment, error)
	CreateGarment(ctx context.Context, garment *entity.DbGarment) error
	UpdateGarment(ctx context.Context, ownerID, id uint, updates entity.GarmentUpdates) error
	DeleteGarment(ctx context.Context, ownerID, id uint) error
	DeleteAllGarments(ctx context.Context, ownerID uint) (int64, error)
	// MarkGarmentsWorn 在同一事务中为所有衣物增加一次穿着并写入相同的时间，任一衣物缺失则整体回滚。
	MarkGarmentsWorn(ctx context.Context, ownerID uint, ids []uint, at time.Time) ([]entity.DbGarment, error)

	// 穿搭日记
	CreateOutfitEntry(ctx context.Context, entry *entity.DbOutfitEntry, garmentIDs []uint) error
	ListOutfitEntries(ctx context.Context, query entity.OutfitEntryQuery) ([]entity.DbOutfitEntry, error)
	GetOutfitEntry(ctx context.Context, ownerID, id uint) (*entity.DbOutfitEntry, error)
	UpdateOutfitEntry(ctx context.Context, ownerID, id uint, updates entity.OutfitEntryUpdates) error
	DeleteOutfitEntry(ctx context.Context, ownerID, id uint) error

	// 穿搭计划
	CreateCalendarSlot(ctx context.Context, slot *entity.DbCalendarSlot, garmentIDs []uint) error
	ListCalendarSlots(ctx context.Context, query entity.CalendarSlotQuery) ([]entity.DbCalendarSlot, error)
	GetCalendarSlot(ctx context.Context, ownerID, id uint) (*entity.DbCalendarSlot, error)
	UpdateCalendarSlot(ctx context.Context, ownerID, id uint, updates entity.CalendarSlotUpdates) error
	AddGarmentToSlot(ctx context.Context, ownerID, slotID, garmentID uint) error
	RemoveGarmentFromSlot(ctx context.Context, ownerID, slotID, garmentID uint) error
	DeleteCalendarSlot(ctx context.Context, ownerID, id uint) error
}
