package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gorm.io/gorm"
)

type ItemRepositoryImpl interface {
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	GetBySlug(ctx context.Context, slug string) (*models.Item, error)
	FindByPriceID(ctx context.Context, priceID string) (*models.Item, error)
	GetPaginated(ctx context.Context, limit, offset int) ([]models.Item, int64, error)
	GetByCategorySlugPaginated(ctx context.Context, slug string, limit, offset int) ([]models.Item, int64, error)
	MarkSold(ctx context.Context, id uint) (bool, error)
	UpdateStripeFields(ctx context.Context, id uint, linkID, linkURL, productID, priceID string) error
	EnsureUniqueSlug(ctx context.Context, base string) (string, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepositoryImpl {
	return &itemRepository{db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetBySlug(ctx context.Context, slug string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByPriceID resolves the item that stored the given Stripe price id.
// Should that id ever end up on more than one item, the lowest item id wins
// so repeated deliveries always resolve to the same row.
func (r *itemRepository) FindByPriceID(ctx context.Context, priceID string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("stripe_price_id = ?", priceID).
		Order("id ASC").
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetPaginated(ctx context.Context, limit, offset int) ([]models.Item, int64, error) {
	var items []models.Item
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error

	return items, total, err
}

func (r *itemRepository) GetByCategorySlugPaginated(ctx context.Context, slug string, limit, offset int) ([]models.Item, int64, error) {
	var items []models.Item
	var total int64

	base := r.db.WithContext(ctx).
		Joins("JOIN categories c ON c.id = items.category_id").
		Where("c.slug = ?", slug)

	if err := base.Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Joins("JOIN categories c ON c.id = items.category_id").
		Where("c.slug = ?", slug).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Order("items.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error

	return items, total, err
}

// MarkSold flips the item to SOLD only if it is still LIVE, in one
// conditional UPDATE. Concurrent or redelivered webhook events race on this
// statement and exactly one of them sees a transition. The sold timestamp is
// only written when unset so the first sale time survives redelivery.
func (r *itemRepository) MarkSold(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND status = ?", id, models.ItemStatusLive).
		Updates(map[string]interface{}{
			"status":  models.ItemStatusSold,
			"sold_at": gorm.Expr("COALESCE(sold_at, ?)", time.Now()),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *itemRepository) UpdateStripeFields(ctx context.Context, id uint, linkID, linkURL, productID, priceID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stripe_payment_link_id":  linkID,
			"stripe_payment_link_url": linkURL,
			"stripe_product_id":       productID,
			"stripe_price_id":         priceID,
		}).Error
}

// EnsureUniqueSlug appends -2, -3, ... until the slug is free.
func (r *itemRepository) EnsureUniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for counter := 2; ; counter++ {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.Item{}).
			Where("slug = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
