package entity

import "time"

// DbGarment is a single clothing item owned by a user.
type DbGarment struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	OwnerID    uint       `gorm:"column:owner_id;index;not null" json:"owner_id"`
	Category   string     `gorm:"column:category;type:varchar(64);index" json:"category"`
	Color      string     `gorm:"column:color;type:varchar(32);index" json:"color"`
	ImagePath  string     `gorm:"column:image_path;type:varchar(512)" json:"image_path"`
	BlurHash   string     `gorm:"column:blur_hash;type:varchar(64)" json:"blur_hash"`
	Favorite   bool       `gorm:"column:favorite;not null;default:false;index" json:"favorite"`
	TimesWorn  int64      `gorm:"column:times_worn;not null;default:0" json:"times_worn"`
	LastWornAt *time.Time `gorm:"column:last_worn_at;index" json:"last_worn_at"`
	AddedAt    time.Time  `gorm:"column:added_at;not null" json:"added_at"`
}

// TableName overrides default singular name.
func (DbGarment) TableName() string {
	return "garments"
}

// GarmentQuery filters a wardrobe read. Empty fields are ignored; all set
// fields are combined with AND.
type GarmentQuery struct {
	OwnerID      uint
	IDs          []uint
	Category     string
	Categories   []string
	Color        string
	Colors       []string
	FavoriteOnly bool
	WornAfter    *time.Time
	WornBefore   *time.Time
	AddedAfter   *time.Time
	AddedBefore  *time.Time
}

// GarmentListQuery is the closet filter accepted over HTTP.
type GarmentListQuery struct {
	Category string `form:"category"`
	Color    string `form:"color"`
	Favorite bool   `form:"favorite"`
}

// Garment is the client representation of a garment.
type Garment struct {
	ID         uint       `json:"id"`
	Category   string     `json:"category"`
	Color      string     `json:"color"`
	ImageURL   string     `json:"image_url,omitempty"`
	BlurHash   string     `json:"blur_hash,omitempty"`
	Favorite   bool       `json:"favorite"`
	TimesWorn  int64      `json:"times_worn"`
	LastWornAt *time.Time `json:"last_worn_at,omitempty"`
	AddedAt    time.Time  `json:"added_at"`
}

type GarmentCreateRequest struct {
	Category string `json:"category" binding:"required,max=64"`
	Color    string `json:"color" binding:"omitempty,palette"`
	Image    string `json:"image"`
	Favorite bool   `json:"favorite"`
}

type GarmentUpdateRequest struct {
	Category *string `json:"category,omitempty" binding:"omitempty,max=64"`
	Color    *string `json:"color,omitempty" binding:"omitempty,palette"`
	Favorite *bool   `json:"favorite,omitempty"`
}

type GarmentListResponse struct {
	Garments []Garment `json:"garments"`
	Stale    bool      `json:"stale,omitempty"`
}

type GarmentDetailResponse struct {
	Garment Garment `json:"garment"`
}
