package entity

import "time"

// DbCalendarSlot is an outfit planned for a calendar date.
type DbCalendarSlot struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	OwnerID   uint        `gorm:"column:owner_id;index;not null" json:"owner_id"`
	Date      time.Time   `gorm:"column:date;index;not null" json:"date"`
	Occasion  string      `gorm:"column:occasion;type:varchar(32)" json:"occasion"`
	Notes     string      `gorm:"column:notes;type:text" json:"notes"`
	Garments  []DbGarment `gorm:"many2many:calendar_slot_garments;joinForeignKey:CalendarSlotID;joinReferences:GarmentID" json:"garments"`
}

// TableName overrides default singular name.
func (DbCalendarSlot) TableName() string {
	return "calendar_slots"
}

// DbCalendarSlotGarment links planned slots to garments.
type DbCalendarSlotGarment struct {
	CalendarSlotID uint `gorm:"primaryKey" json:"calendar_slot_id"`
	GarmentID      uint `gorm:"primaryKey;index" json:"garment_id"`
}

// TableName overrides default singular name.
func (DbCalendarSlotGarment) TableName() string {
	return "calendar_slot_garments"
}

// CalendarSlotQuery selects slots whose date falls in [From, To).
type CalendarSlotQuery struct {
	OwnerID uint
	From    time.Time
	To      time.Time
}

type CalendarSlot struct {
	ID       uint      `json:"id"`
	Date     time.Time `json:"date"`
	Occasion string    `json:"occasion"`
	Notes    string    `json:"notes,omitempty"`
	Garments []Garment `json:"garments"`
}

type CalendarSlotCreateRequest struct {
	Date       time.Time `json:"date" binding:"required"`
	Occasion   string    `json:"occasion" binding:"required,max=32"`
	Notes      string    `json:"notes"`
	GarmentIDs []uint    `json:"garment_ids"`
}

type CalendarSlotUpdateRequest struct {
	Date     *time.Time `json:"date,omitempty"`
	Occasion *string    `json:"occasion,omitempty" binding:"omitempty,max=32"`
	Notes    *string    `json:"notes,omitempty"`
}

type CalendarSlotQueryParams struct {
	Date string `form:"date"`
	From string `form:"from"`
	To   string `form:"to"`
}

type CalendarSlotListResponse struct {
	Slots []CalendarSlot `json:"slots"`
}

type CalendarSlotDetailResponse struct {
	Slot CalendarSlot `json:"slot"`
}
