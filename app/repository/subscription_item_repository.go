package repository

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

type subscriptionItemRepository struct {
	store[models.SubscriptionItem]
}

// NewSubscriptionItemRepository creates a new subscription item repository instance
func NewSubscriptionItemRepository(db *gorm.DB) SubscriptionItemRepository {
	return &subscriptionItemRepository{store[models.SubscriptionItem]{db: db}}
}

func (r *subscriptionItemRepository) GetByClerkID(ctx context.Context, clerkItemID string) (*models.SubscriptionItem, error) {
	return r.first(ctx, "clerk_item_id = ?", clerkItemID)
}

// Create inserts the item after checking that its subscription is stored.
func (r *subscriptionItemRepository) Create(ctx context.Context, item *models.SubscriptionItem) error {
	return writeChecked(r.conn(ctx), item, true, func(tx *gorm.DB) error {
		return requireRowTx[models.Subscription](tx, "subscription", item.SubscriptionID)
	})
}

func (r *subscriptionItemRepository) Update(ctx context.Context, item *models.SubscriptionItem) error {
	return writeChecked(r.conn(ctx), item, false, func(tx *gorm.DB) error {
		return requireRowTx[models.Subscription](tx, "subscription", item.SubscriptionID)
	})
}

func (r *subscriptionItemRepository) Delete(ctx context.Context, id uint) error {
	return deleteRowTx[models.SubscriptionItem](r.conn(ctx), id)
}
