package repositories

import (
	"context"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gorm.io/gorm"
)

type ItemImageRepositoryImpl interface {
	Create(ctx context.Context, image *models.ItemImage) error
	GetByID(ctx context.Context, id uint) (*models.ItemImage, error)
	GetByItemID(ctx context.Context, itemID uint) ([]models.ItemImage, error)
	SetPrimary(ctx context.Context, itemID, imageID uint) error
	Delete(ctx context.Context, id uint) error
}

type itemImageRepository struct {
	db *gorm.DB
}

func NewItemImageRepository(db *gorm.DB) ItemImageRepositoryImpl {
	return &itemImageRepository{db}
}

func (r *itemImageRepository) Create(ctx context.Context, image *models.ItemImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return err
	}
	if image.IsPrimary {
		return r.SetPrimary(ctx, image.ItemID, image.ID)
	}
	return nil
}

func (r *itemImageRepository) GetByID(ctx context.Context, id uint) (*models.ItemImage, error) {
	var image models.ItemImage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *itemImageRepository) GetByItemID(ctx context.Context, itemID uint) ([]models.ItemImage, error) {
	var images []models.ItemImage
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("sort_order ASC, created_at ASC").
		Find(&images).Error
	return images, err
}

// SetPrimary marks one image primary and unmarks its siblings in a single
// UPDATE scoped to the item, so "at most one primary" holds without a
// read-then-write race.
func (r *itemImageRepository) SetPrimary(ctx context.Context, itemID, imageID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.ItemImage{}).
		Where("item_id = ?", itemID).
		Update("is_primary", gorm.Expr("id = ?", imageID)).Error
}

func (r *itemImageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ItemImage{}, id).Error
}
