package sql

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOutfitEntry stores a diary entry and marks its garments as worn at
// the entry's time, all in one transaction.
func (r *GormRepository) CreateOutfitEntry(ctx context.Context, entry *entity.DbOutfitEntry, garmentIDs []uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if entry == nil {
		return fmt.Errorf("outfit entry is nil")
	}
	if entry.OwnerID == 0 {
		return fmt.Errorf("outfit entry owner is required")
	}
	if entry.WornAt.IsZero() {
		return fmt.Errorf("outfit entry time is required")
	}
	ids := wardrobe.UniqueIDs(garmentIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedGarments(tx, entry.OwnerID, ids); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			entry.Garments = []entity.DbGarment{}
			return nil
		}

		links := make([]entity.DbOutfitEntryGarment, 0, len(ids))
		for _, id := range ids {
			links = append(links, entity.DbOutfitEntryGarment{OutfitEntryID: entry.ID, GarmentID: id})
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}

		garments, err := markWorn(tx, entry.OwnerID, ids, entry.WornAt)
		if err != nil {
			return err
		}
		entry.Garments = garments
		return nil
	})
}

// ListOutfitEntries returns diary entries newest first.
func (r *GormRepository) ListOutfitEntries(ctx context.Context, query entity.OutfitEntryQuery) ([]entity.DbOutfitEntry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	tx := r.db.WithContext(ctx).Model(&entity.DbOutfitEntry{}).
		Preload("Garments").
		Where("owner_id = ?", query.OwnerID)
	if mood := strings.TrimSpace(query.Mood); mood != "" {
		tx = tx.Where("LOWER(mood) = ?", strings.ToLower(mood))
	}
	if query.From != nil {
		tx = tx.Where("worn_at >= ?", *query.From)
	}
	if query.To != nil {
		tx = tx.Where("worn_at < ?", *query.To)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	entries := make([]entity.DbOutfitEntry, 0)
	if err := tx.Order("worn_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetOutfitEntry loads one diary entry with its garments.
func (r *GormRepository) GetOutfitEntry(ctx context.Context, ownerID, id uint) (*entity.DbOutfitEntry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid outfit entry id")
	}
	var entry entity.DbOutfitEntry
	if err := r.db.WithContext(ctx).Preload("Garments").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateOutfitEntry edits mood and notes.
func (r *GormRepository) UpdateOutfitEntry(ctx context.Context, ownerID, id uint, updates entity.OutfitEntryUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid outfit entry id")
	}
	if updates.IsEmpty() {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entity.DbOutfitEntry{}).
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

// DeleteOutfitEntry removes an entry and its garment links. Wear counters
// already recorded are kept.
func (r *GormRepository) DeleteOutfitEntry(ctx context.Context, ownerID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid outfit entry id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry entity.DbOutfitEntry
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&entry).Error; err != nil {
			return err
		}
		if err := tx.Where("outfit_entry_id = ?", id).Delete(&entity.DbOutfitEntryGarment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.DbOutfitEntry{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
