package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemStatusLive = "LIVE"
	ItemStatusSold = "SOLD"
)

// Item is a single personal item for sale. Each item is unique and can only
// be sold once; status moves LIVE -> SOLD and never back.
type Item struct {
	ID          uint            `gorm:"primaryKey"`
	Slug        string          `gorm:"size:200;not null;uniqueIndex"`
	Title       string          `gorm:"size:200;not null"`
	Description string          `gorm:"type:text"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency    string          `gorm:"size:3;not null;default:'NZD'"`
	Status      string          `gorm:"size:20;not null;default:'LIVE';index:idx_items_status_created"`

	StripePaymentLinkID  string `gorm:"size:255"`
	StripePaymentLinkURL string `gorm:"type:text"`
	StripeProductID      string `gorm:"size:255"`
	StripePriceID        string `gorm:"size:255;index"`

	Images []ItemImage

	CreatedAt time.Time `gorm:"index:idx_items_status_created"`
	UpdatedAt time.Time
	SoldAt    *time.Time
}

func (i *Item) IsLive() bool {
	return i.Status == ItemStatusLive
}

// PrimaryImage returns the image flagged primary, falling back to the lowest
// sort order. Assumes Images was preloaded in sort order.
func (i *Item) PrimaryImage() *ItemImage {
	for idx := range i.Images {
		if i.Images[idx].IsPrimary {
			return &i.Images[idx]
		}
	}
	if len(i.Images) > 0 {
		return &i.Images[0]
	}
	return nil
}
