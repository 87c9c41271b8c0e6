package entity

import "time"

// DbOutfitEntry is a diary record of an outfit worn at a point in time.
type DbOutfitEntry struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	OwnerID   uint        `gorm:"column:owner_id;index;not null" json:"owner_id"`
	WornAt    time.Time   `gorm:"column:worn_at;index;not null" json:"worn_at"`
	Mood      string      `gorm:"column:mood;type:varchar(32);index" json:"mood"`
	Notes     string      `gorm:"column:notes;type:text" json:"notes"`
	ImagePath string      `gorm:"column:image_path;type:varchar(512)" json:"image_path"`
	Garments  []DbGarment `gorm:"many2many:outfit_entry_garments;joinForeignKey:OutfitEntryID;joinReferences:GarmentID" json:"garments"`
}

// TableName overrides default singular name.
func (DbOutfitEntry) TableName() string {
	return "outfit_entries"
}

// DbOutfitEntryGarment links diary entries to the garments they include.
type DbOutfitEntryGarment struct {
	OutfitEntryID uint `gorm:"primaryKey" json:"outfit_entry_id"`
	GarmentID     uint `gorm:"primaryKey;index" json:"garment_id"`
}

// TableName overrides default singular name.
func (DbOutfitEntryGarment) TableName() string {
	return "outfit_entry_garments"
}

// OutfitEntryQuery filters diary entries. Limit 0 means no limit.
type OutfitEntryQuery struct {
	OwnerID uint
	Mood    string
	From    *time.Time
	To      *time.Time
	Limit   int
}

// OutfitEntry is the client representation of a diary entry.
type OutfitEntry struct {
	ID       uint      `json:"id"`
	WornAt   time.Time `json:"worn_at"`
	Mood     string    `json:"mood"`
	Notes    string    `json:"notes,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	Garments []Garment `json:"garments"`
}

type OutfitEntryCreateRequest struct {
	Mood       string     `json:"mood" binding:"required,max=32"`
	Notes      string     `json:"notes"`
	Image      string     `json:"image"`
	WornAt     *time.Time `json:"worn_at"`
	GarmentIDs []uint     `json:"garment_ids"`
}

type OutfitEntryUpdateRequest struct {
	Mood  *string `json:"mood,omitempty" binding:"omitempty,max=32"`
	Notes *string `json:"notes,omitempty"`
}

type OutfitEntryListResponse struct {
	Entries []OutfitEntry `json:"entries"`
	Stale   bool          `json:"stale,omitempty"`
}

type OutfitEntryDetailResponse struct {
	Entry OutfitEntry `json:"entry"`
}

type WearOutfitRequest struct {
	GarmentIDs []uint `json:"garment_ids" binding:"required,min=1"`
}

type WearOutfitResponse struct {
	Garments []Garment `json:"garments"`
	WornAt   time.Time `json:"worn_at"`
}

type SuggestionQuery struct {
	Occasion string `form:"occasion"`
	Mood     string `form:"mood"`
	Auto     bool   `form:"auto"`
}

type SuggestionResponse struct {
	Occasion string    `json:"occasion,omitempty"`
	Mood     string    `json:"mood,omitempty"`
	Garments []Garment `json:"garments"`
	Stale    bool      `json:"stale,omitempty"`
}
