package repository

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

type membershipRepository struct {
	store[models.OrganizationMembership]
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{store[models.OrganizationMembership]{db: db}}
}

func (r *membershipRepository) GetByClerkID(ctx context.Context, clerkMembershipID string) (*models.OrganizationMembership, error) {
	return r.first(ctx, "clerk_membership_id = ?", clerkMembershipID)
}

// Create inserts the membership after checking that its organization and
// user are stored.
func (r *membershipRepository) Create(ctx context.Context, m *models.OrganizationMembership) error {
	return writeChecked(r.conn(ctx), m, true, func(tx *gorm.DB) error {
		return membershipParentsTx(tx, m)
	})
}

func (r *membershipRepository) Update(ctx context.Context, m *models.OrganizationMembership) error {
	return writeChecked(r.conn(ctx), m, false, func(tx *gorm.DB) error {
		return membershipParentsTx(tx, m)
	})
}

func (r *membershipRepository) Delete(ctx context.Context, id uint) error {
	return deleteRowTx[models.OrganizationMembership](r.conn(ctx), id)
}
