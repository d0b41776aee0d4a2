package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubscriberTypeUser         = "user"
	SubscriberTypeOrganization = "organization"
)

const (
	BillingStatusActive            = "active"
	BillingStatusPastDue           = "past_due"
	BillingStatusCanceled          = "canceled"
	BillingStatusIncomplete        = "incomplete"
	BillingStatusIncompleteExpired = "incomplete_expired"
	BillingStatusTrialing          = "trialing"
	BillingStatusUnpaid            = "unpaid"
)

// ErrSubscriberMismatch is returned when the subscriber references do not
// agree with the subscriber type.
var ErrSubscriberMismatch = errors.New("subscription must reference exactly one subscriber matching its subscriber type")

// Subscription mirrors a provider subscription owned by either a user or an
// organization.
type Subscription struct {
	ID                       uint           `gorm:"primaryKey" json:"id"`
	ClerkSubscriptionID      string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_subscription_id" validate:"required,max=191"`
	SubscriberType           string         `gorm:"type:varchar(20);not null" json:"subscriber_type" validate:"oneof=user organization"`
	SubscriberUserID         *uint          `gorm:"index;default:null" json:"subscriber_user_id,omitempty"`
	SubscriberOrganizationID *uint          `gorm:"index;default:null" json:"subscriber_organization_id,omitempty"`
	Status                   string         `gorm:"type:varchar(32);not null;default:'active';index" json:"status" validate:"oneof=active past_due canceled incomplete incomplete_expired trialing unpaid"`
	CurrentPeriodStart       *time.Time     `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd         *time.Time     `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	TrialStart               *time.Time     `gorm:"type:timestamp;default:null" json:"trial_start,omitempty"`
	TrialEnd                 *time.Time     `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	CancelAtPeriodEnd        bool           `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt               *time.Time     `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	Metadata                 datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		return err
	}
	return s.CheckSubscriber()
}

// CheckSubscriber enforces that exactly one subscriber reference is set and
// that it matches SubscriberType.
func (s *Subscription) CheckSubscriber() error {
	switch s.SubscriberType {
	case SubscriberTypeUser:
		if s.SubscriberUserID == nil || s.SubscriberOrganizationID != nil {
			return ErrSubscriberMismatch
		}
	case SubscriberTypeOrganization:
		if s.SubscriberOrganizationID == nil || s.SubscriberUserID != nil {
			return ErrSubscriberMismatch
		}
	default:
		return ErrSubscriberMismatch
	}
	return nil
}

// SetUserSubscriber points the subscription at a user.
func (s *Subscription) SetUserSubscriber(userID uint) {
	s.SubscriberType = SubscriberTypeUser
	s.SubscriberUserID = &userID
	s.SubscriberOrganizationID = nil
}

// SetOrganizationSubscriber points the subscription at an organization.
func (s *Subscription) SetOrganizationSubscriber(orgID uint) {
	s.SubscriberType = SubscriberTypeOrganization
	s.SubscriberOrganizationID = &orgID
	s.SubscriberUserID = nil
}

// BeforeSave keeps the subscriber invariant at the store boundary for every
// write path, including the admin surface.
func (s *Subscription) BeforeSave(tx *gorm.DB) error {
	return s.CheckSubscriber()
}

// IsSubscriptionStatus reports whether status is one of the stored values.
func IsSubscriptionStatus(status string) bool {
	switch status {
	case BillingStatusActive, BillingStatusPastDue, BillingStatusCanceled, BillingStatusIncomplete,
		BillingStatusIncompleteExpired, BillingStatusTrialing, BillingStatusUnpaid:
		return true
	default:
		return false
	}
}
