package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// Organization mirrors an identity-provider organization.
type Organization struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	ClerkID               string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_id" validate:"required,max=191"`
	Name                  string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Slug                  *string        `gorm:"type:varchar(191);uniqueIndex;default:null" json:"slug,omitempty" validate:"omitempty,max=191"`
	ImageURL              string         `gorm:"type:text" json:"image_url"`
	Description           string         `gorm:"type:text" json:"description"`
	MaxAllowedMemberships *int           `gorm:"default:null" json:"max_allowed_memberships,omitempty" validate:"omitempty,min=0"`
	PublicMetadata        datatypes.JSON `json:"public_metadata,omitempty"`
	PrivateMetadata       datatypes.JSON `json:"private_metadata,omitempty"`
	// CreatedByID is a weak reference; the creator may never be synced.
	CreatedByID *uint     `gorm:"index;default:null" json:"created_by_id,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Organization) Validate() error {
	v := validator.New()

	return v.Struct(o)
}
