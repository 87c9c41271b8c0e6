package sql

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCalendarSlot stores a planned outfit and links its garments.
func (r *GormRepository) CreateCalendarSlot(ctx context.Context, slot *entity.DbCalendarSlot, garmentIDs []uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if slot == nil {
		return fmt.Errorf("calendar slot is nil")
	}
	if slot.OwnerID == 0 {
		return fmt.Errorf("calendar slot owner is required")
	}
	ids := wardrobe.UniqueIDs(garmentIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		garments, err := loadOwnedGarments(tx, slot.OwnerID, ids)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(slot).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			links := make([]entity.DbCalendarSlotGarment, 0, len(ids))
			for _, id := range ids {
				links = append(links, entity.DbCalendarSlotGarment{CalendarSlotID: slot.ID, GarmentID: id})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		slot.Garments = garments
		return nil
	})
}

// ListCalendarSlots returns slots dated in [From, To), earliest first.
func (r *GormRepository) ListCalendarSlots(ctx context.Context, query entity.CalendarSlotQuery) ([]entity.DbCalendarSlot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("invalid owner id")
	}
	if !query.To.After(query.From) {
		return nil, fmt.Errorf("invalid date range")
	}

	slots := make([]entity.DbCalendarSlot, 0)
	err := r.db.WithContext(ctx).
		Preload("Garments").
		Where("owner_id = ? AND date >= ? AND date < ?", query.OwnerID, query.From, query.To).
		Order("date ASC, id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// GetCalendarSlot loads one slot with its garments.
func (r *GormRepository) GetCalendarSlot(ctx context.Context, ownerID, id uint) (*entity.DbCalendarSlot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid calendar slot id")
	}
	var slot entity.DbCalendarSlot
	if err := r.db.WithContext(ctx).Preload("Garments").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateCalendarSlot edits date, occasion and notes.
func (r *GormRepository) UpdateCalendarSlot(ctx context.Context, ownerID, id uint, updates entity.CalendarSlotUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid calendar slot id")
	}
	if updates.IsEmpty() {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entity.DbCalendarSlot{}).
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

// AddGarmentToSlot assigns a garment to a slot. Assigning twice is a no-op.
func (r *GormRepository) AddGarmentToSlot(ctx context.Context, ownerID, slotID, garmentID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if slotID == 0 || garmentID == 0 {
		return fmt.Errorf("invalid calendar slot or garment id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot entity.DbCalendarSlot
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, slotID).First(&slot).Error; err != nil {
			return err
		}
		if _, err := loadOwnedGarments(tx, ownerID, []uint{garmentID}); err != nil {
			return err
		}
		link := entity.DbCalendarSlotGarment{CalendarSlotID: slotID, GarmentID: garmentID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

// RemoveGarmentFromSlot unassigns a garment from a slot.
func (r *GormRepository) RemoveGarmentFromSlot(ctx context.Context, ownerID, slotID, garmentID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if slotID == 0 || garmentID == 0 {
		return fmt.Errorf("invalid calendar slot or garment id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot entity.DbCalendarSlot
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, slotID).First(&slot).Error; err != nil {
			return err
		}
		result := tx.Where("calendar_slot_id = ? AND garment_id = ?", slotID, garmentID).
			Delete(&entity.DbCalendarSlotGarment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteCalendarSlot removes a slot and its garment links.
func (r *GormRepository) DeleteCalendarSlot(ctx context.Context, ownerID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid calendar slot id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot entity.DbCalendarSlot
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&slot).Error; err != nil {
			return err
		}
		if err := tx.Where("calendar_slot_id = ?", id).Delete(&entity.DbCalendarSlotGarment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.DbCalendarSlot{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
