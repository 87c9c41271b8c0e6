package sql

import (
	"closet/internal/entity"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Ping checks that the database still answers.
func (r *GormRepository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (r *GormRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates every wardrobe table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbGarment{},
		&entity.DbOutfitEntry{},
		&entity.DbOutfitEntryGarment{},
		&entity.DbCalendarSlot{},
		&entity.DbCalendarSlotGarment{},
	)
}

// loadOwnedGarments fetches garments by id in ascending id order and fails
// unless every id belongs to owner.
func loadOwnedGarments(tx *gorm.DB, ownerID uint, ids []uint) ([]entity.DbGarment, error) {
	if len(ids) == 0 {
		return []entity.DbGarment{}, nil
	}
	var garments []entity.DbGarment
	if err := tx.Where("owner_id = ? AND id IN ?", ownerID, ids).Order("id ASC").Find(&garments).Error; err != nil {
		return nil, err
	}
	if len(garments) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return garments, nil
}
