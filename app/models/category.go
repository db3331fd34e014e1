package models

import "time"

type Category struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null;uniqueIndex"`
	Slug         string `gorm:"size:100;not null;uniqueIndex"`
	Description  string `gorm:"type:text"`
	DisplayOrder int    `gorm:"not null;default:0"`
	Items        []Item
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
