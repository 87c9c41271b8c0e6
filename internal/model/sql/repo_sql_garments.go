package sql

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// garmentOrder puts never-worn garments first, then the longest unworn.
const garmentOrder = "CASE WHEN last_worn_at IS NULL THEN 0 ELSE 1 END, last_worn_at ASC, id ASC"

// ListGarments returns the garments matching every set field of query.
func (r *GormRepository) ListGarments(ctx context.Context, query entity.GarmentQuery) ([]entity.DbGarment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	tx := r.db.WithContext(ctx).Model(&entity.DbGarment{}).Where("owner_id = ?", query.OwnerID)
	if len(query.IDs) > 0 {
		tx = tx.Where("id IN ?", query.IDs)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		tx = tx.Where("category = ?", category)
	}
	if len(query.Categories) > 0 {
		tx = tx.Where("category IN ?", query.Categories)
	}
	if color := strings.TrimSpace(query.Color); color != "" {
		tx = tx.Where("color = ?", color)
	}
	if len(query.Colors) > 0 {
		tx = tx.Where("color IN ?", query.Colors)
	}
	if query.FavoriteOnly {
		tx = tx.Where("favorite = ?", true)
	}
	if query.WornAfter != nil {
		tx = tx.Where("last_worn_at >= ?", *query.WornAfter)
	}
	if query.WornBefore != nil {
		tx = tx.Where("last_worn_at < ?", *query.WornBefore)
	}
	if query.AddedAfter != nil {
		tx = tx.Where("added_at >= ?", *query.AddedAfter)
	}
	if query.AddedBefore != nil {
		tx = tx.Where("added_at < ?", *query.AddedBefore)
	}

	garments := make([]entity.DbGarment, 0)
	if err := tx.Order(garmentOrder).Find(&garments).Error; err != nil {
		return nil, err
	}
	return garments, nil
}

// GetGarment loads one garment of owner.
func (r *GormRepository) GetGarment(ctx context.Context, ownerID, id uint) (*entity.DbGarment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid garment id")
	}
	var garment entity.DbGarment
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).First(&garment).Error; err != nil {
		return nil, err
	}
	return &garment, nil
}

// CreateGarment inserts a new garment.
func (r *GormRepository) CreateGarment(ctx context.Context, garment *entity.DbGarment) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if garment == nil {
		return fmt.Errorf("garment is nil")
	}
	if garment.OwnerID == 0 {
		return fmt.Errorf("garment owner is required")
	}
	if garment.TimesWorn < 0 {
		return fmt.Errorf("times worn must not be negative")
	}
	if garment.AddedAt.IsZero() {
		garment.AddedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(garment).Error
}

// UpdateGarment applies editable fields.
func (r *GormRepository) UpdateGarment(ctx context.Context, ownerID, id uint, updates entity.GarmentUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid garment id")
	}
	if updates.IsEmpty() {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entity.DbGarment{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteGarment removes a garment together with its diary and planner links.
func (r *GormRepository) DeleteGarment(ctx context.Context, ownerID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid garment id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var garment entity.DbGarment
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&garment).Error; err != nil {
			return err
		}
		if err := deleteGarmentLinks(tx, []uint{id}); err != nil {
			return err
		}
		result := tx.Delete(&entity.DbGarment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteAllGarments empties the wardrobe of owner and returns how many
// garments were removed.
func (r *GormRepository) DeleteAllGarments(ctx context.Context, ownerID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if ownerID == 0 {
		return 0, fmt.Errorf("invalid owner id")
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&entity.DbGarment{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := deleteGarmentLinks(tx, ids); err != nil {
			return err
		}
		result := tx.Where("owner_id = ?", ownerID).Delete(&entity.DbGarment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// MarkGarmentsWorn records one wear at the same instant for every garment.
// Nothing is written unless all garments belong to owner.
func (r *GormRepository) MarkGarmentsWorn(ctx context.Context, ownerID uint, ids []uint, at time.Time) ([]entity.DbGarment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	unique := wardrobe.UniqueIDs(ids)
	if len(unique) == 0 {
		return nil, fmt.Errorf("no garments to mark as worn")
	}

	var garments []entity.DbGarment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		garments, err = markWorn(tx, ownerID, unique, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return garments, nil
}

// markWorn locks the garments, applies one wear and writes the counters back.
func markWorn(tx *gorm.DB, ownerID uint, ids []uint, at time.Time) ([]entity.DbGarment, error) {
	current, err := loadOwnedGarments(tx.Clauses(clause.Locking{Strength: "UPDATE"}), ownerID, ids)
	if err != nil {
		return nil, err
	}

	worn := wardrobe.ApplyWear(current, at)
	for _, garment := range worn {
		err := tx.Model(&entity.DbGarment{}).
			Where("owner_id = ? AND id = ?", ownerID, garment.ID).
			Updates(map[string]interface{}{
				"times_worn":   garment.TimesWorn,
				"last_worn_at": garment.LastWornAt,
			}).Error
		if err != nil {
			return nil, err
		}
	}
	return worn, nil
}

func deleteGarmentLinks(tx *gorm.DB, garmentIDs []uint) error {
	if err := tx.Where("garment_id IN ?", garmentIDs).Delete(&entity.DbOutfitEntryGarment{}).Error; err != nil {
		return err
	}
	return tx.Where("garment_id IN ?", garmentIDs).Delete(&entity.DbCalendarSlotGarment{}).Error
}
