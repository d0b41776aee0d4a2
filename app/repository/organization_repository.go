package repository

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

type organizationRepository struct {
	store[models.Organization]
}

// NewOrganizationRepository creates a new organization repository instance
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{store[models.Organization]{db: db}}
}

func (r *organizationRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.Organization, error) {
	return r.first(ctx, "clerk_id = ?", clerkID)
}

// Delete removes the organization after its memberships and subscriptions.
func (r *organizationRepository) Delete(ctx context.Context, id uint) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSubscriberTx(tx, "organization_id", "subscriber_organization_id", id); err != nil {
			return err
		}
		return deleteRowTx[models.Organization](tx, id)
	})
}
