package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates the webhook delivery log repository
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Record stores a delivery. A redelivery of the same provider event bumps the
// delivery counter and replaces the stored payload.
func (r *webhookEventRepository) Record(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	db := r.db.WithContext(ctx)
	if event.Deliveries == 0 {
		event.Deliveries = 1
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"deliveries":      gorm.Expr("deliveries + 1"),
			"payload_json":    event.PayloadJSON,
			"signature_valid": event.SignatureValid,
			"updated_at":      time.Now(),
		}),
	}).Create(event).Error
	if err != nil {
		return nil, err
	}

	var stored models.WebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uint, outcome, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"outcome":          outcome,
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

type eventTypeCount struct {
	EventType string
	Total     int64
}

// CountByType returns the number of logged events per event type.
func (r *webhookEventRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	var rows []eventTypeCount
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Select("event_type, COUNT(*) AS total").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Total
	}
	return counts, nil
}
