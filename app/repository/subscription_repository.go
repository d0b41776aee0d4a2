package repository

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	store[models.Subscription]
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{store[models.Subscription]{db: db}}
}

func (r *subscriptionRepository) GetByClerkID(ctx context.Context, clerkSubscriptionID string) (*models.Subscription, error) {
	return r.first(ctx, "clerk_subscription_id = ?", clerkSubscriptionID)
}

// Create inserts the subscription after checking that its subscriber is
// stored. The subscriber-kind invariant is checked by the model hook.
func (r *subscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	return writeChecked(r.conn(ctx), s, true, func(tx *gorm.DB) error {
		return subscriberTx(tx, s)
	})
}

func (r *subscriptionRepository) Update(ctx context.Context, s *models.Subscription) error {
	return writeChecked(r.conn(ctx), s, false, func(tx *gorm.DB) error {
		return subscriberTx(tx, s)
	})
}

// Delete removes the subscription and its items. Payment attempts are kept
// but lose their subscription reference.
func (r *subscriptionRepository) Delete(ctx context.Context, id uint) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Subscription{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return deleteSubscriptionsTx(tx, []uint{id})
	})
}
