package repositories

import (
	"context"
	"time"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepositoryImpl interface {
	Record(ctx context.Context, event *models.WebhookEvent) error
	MarkProcessed(ctx context.Context, id uint, processingError string) error
	Recent(ctx context.Context, limit int) ([]models.WebhookEvent, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepositoryImpl {
	return &webhookEventRepository{db}
}

// Record inserts an audit row for a received event. Redeliveries share the
// provider event id and are dropped on conflict; the event ID stays zero in
// that case.
func (r *webhookEventRepository) Record(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uint, processingError string) error {
	if id == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_at":     time.Now(),
			"processing_error": processingError,
		}).Error
}

func (r *webhookEventRepository) Recent(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
