package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	store[models.User]
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{store[models.User]{db: db}}
}

// GetByClerkID retrieves a user by the identity provider's id
func (r *userRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return r.first(ctx, "clerk_id = ?", clerkID)
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByVerificationToken finds the user owning an unexpired verification token
// for the given email.
func (r *userRepository) GetByVerificationToken(ctx context.Context, token, email string, now time.Time) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.TrimSpace(email) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.first(ctx,
		"email_verification_token = ? AND email = ? AND email_verification_expires > ?",
		token, email, now,
	)
}

// Delete removes the user with their memberships and subscriptions, and clears
// the creator reference on organizations they created.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSubscriberTx(tx, "user_id", "subscriber_user_id", id); err != nil {
			return err
		}
		if err := tx.Model(&models.Organization{}).
			Where("created_by_id = ?", id).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}
		return deleteRowTx[models.User](tx, id)
	})
}
