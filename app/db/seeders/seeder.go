package seeders

import (
	"github.com/brynwhyman/sell-my-stuff/app/db/fakers"
	"github.com/brynwhyman/sell-my-stuff/app/helpers"
	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gorm.io/gorm"
)

var categoryNames = []string{"Furniture", "Kitchen", "Books", "Electronics", "Outdoors"}

func DBSeed(db *gorm.DB) error {
	for order, name := range categoryNames {
		category := &models.Category{
			Name:         name,
			Slug:         helpers.GenerateSlug(name),
			DisplayOrder: order,
		}
		if err := db.FirstOrCreate(category, "slug = ?", category.Slug).Error; err != nil {
			return err
		}

		for i := 0; i < 3; i++ {
			if err := db.Create(fakers.ItemFaker(category)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
