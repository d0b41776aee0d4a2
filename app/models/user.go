package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// User mirrors an identity-provider user. Rows are created and kept current by
// the webhook synchronizer; ClerkID is the correlation key.
type User struct {
	ID                       uint           `gorm:"primaryKey" json:"id"`
	ClerkID                  string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_id" validate:"required,max=191"`
	Email                    string         `gorm:"type:varchar(200);not null;uniqueIndex" json:"email" validate:"required,email,max=200"`
	FirstName                string         `gorm:"type:varchar(150);default:''" json:"first_name" validate:"max=150"`
	LastName                 string         `gorm:"type:varchar(150);default:''" json:"last_name" validate:"max=150"`
	ImageURL                 string         `gorm:"type:text" json:"image_url"`
	EmailVerified            bool           `gorm:"default:false" json:"email_verified"`
	EmailVerifiedAt          *time.Time     `gorm:"type:timestamp;default:null" json:"email_verified_at,omitempty"`
	PhoneNumber              *string        `gorm:"type:varchar(50);default:null" json:"phone_number,omitempty"`
	PhoneVerified            bool           `gorm:"default:false" json:"phone_verified"`
	LastSignInAt             *time.Time     `gorm:"type:timestamp;default:null" json:"last_sign_in_at,omitempty"`
	PublicMetadata           datatypes.JSON `json:"public_metadata,omitempty"`
	EmailVerificationToken   string         `gorm:"type:varchar(100);index" json:"-"`
	EmailVerificationExpires *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// MarkEmailVerified sets the verified flag. The verification timestamp is only
// ever written once; later calls keep the first value.
func (u *User) MarkEmailVerified(at time.Time) {
	u.EmailVerified = true
	if u.EmailVerifiedAt == nil {
		u.EmailVerifiedAt = &at
	}
}

// HasPendingVerification reports whether a verification link is outstanding.
func (u *User) HasPendingVerification() bool {
	return u.EmailVerificationToken != "" && u.EmailVerificationExpires != nil
}

// IsVerificationTokenValid checks token and expiry against now.
func (u *User) IsVerificationTokenValid(token string, now time.Time) bool {
	if !u.HasPendingVerification() || token == "" {
		return false
	}
	if u.EmailVerificationToken != token {
		return false
	}
	return now.Before(*u.EmailVerificationExpires)
}

// ClearVerificationToken makes the pending token unusable.
func (u *User) ClearVerificationToken() {
	u.EmailVerificationToken = ""
	u.EmailVerificationExpires = nil
}
