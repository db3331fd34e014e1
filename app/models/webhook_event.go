package models

import "time"

// WebhookEvent is an audit row per received provider event. It records what
// was delivered and whether processing hit an anomaly. It is not a dedupe
// gate; idempotency lives in the item status transition.
type WebhookEvent struct {
	ID              uint   `gorm:"primaryKey"`
	ProviderEventID string `gorm:"size:191;not null;uniqueIndex"`
	EventType       string `gorm:"size:100;not null;index"`
	SignatureValid  bool   `gorm:"not null;default:false"`
	ProcessedAt     *time.Time
	ProcessingError string `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"index"`
}
