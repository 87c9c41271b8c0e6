package entity

import "time"

// UserUpdates 用户更新字段
type UserUpdates struct {
	DisplayName  *string
	PasswordHash *string
	IsActive     *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// GarmentUpdates 衣物更新字段。穿着次数只能通过穿着事件修改，因此不在此列。
type GarmentUpdates struct {
	Category  *string
	Color     *string
	ImagePath *string
	BlurHash  *string
	Favorite  *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u GarmentUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	if u.Color != nil {
		updates["color"] = *u.Color
	}
	if u.ImagePath != nil {
		updates["image_path"] = *u.ImagePath
	}
	if u.BlurHash != nil {
		updates["blur_hash"] = *u.BlurHash
	}
	if u.Favorite != nil {
		updates["favorite"] = *u.Favorite
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u GarmentUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// OutfitEntryUpdates 穿搭日记更新字段
type OutfitEntryUpdates struct {
	Mood  *string
	Notes *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u OutfitEntryUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Mood != nil {
		updates["mood"] = *u.Mood
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u OutfitEntryUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// CalendarSlotUpdates 日程更新字段
type CalendarSlotUpdates struct {
	Date     *time.Time
	Occasion *string
	Notes    *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u CalendarSlotUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Date != nil {
		updates["date"] = *u.Date
	}
	if u.Occasion != nil {
		updates["occasion"] = *u.Occasion
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u CalendarSlotUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
