package models

import "time"

// ItemImage is one of an item's images. At most one image per item carries
// IsPrimary; the repository unmarks siblings in a single update on write.
type ItemImage struct {
	ID        uint   `gorm:"primaryKey"`
	ItemID    uint   `gorm:"not null;index:idx_item_images_item_sort"`
	Item      Item   `gorm:"constraint:OnDelete:CASCADE"`
	URL       string `gorm:"type:text;not null"`
	ObjectKey string `gorm:"size:255"`
	SortOrder int    `gorm:"not null;default:0;index:idx_item_images_item_sort"`
	IsPrimary bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
