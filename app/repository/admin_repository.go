package repository

import (
	"context"
	"strings"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

type adminRepository struct {
	store[models.Admin]
}

// NewAdminRepository creates a new admin repository instance
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{store[models.Admin]{db: db}}
}

// GetByEmail retrieves an admin by email, case-insensitively
func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}
