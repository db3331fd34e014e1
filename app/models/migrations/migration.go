package migrations

import (
	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{}, &models.Item{}, &models.ItemImage{}, &models.WebhookEvent{})
}
