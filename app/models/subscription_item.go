package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const (
	BillingIntervalDay   = "day"
	BillingIntervalWeek  = "week"
	BillingIntervalMonth = "month"
	BillingIntervalYear  = "year"
)

const (
	ItemStatusActive     = "active"
	ItemStatusCanceled   = "canceled"
	ItemStatusUpcoming   = "upcoming"
	ItemStatusEnded      = "ended"
	ItemStatusAbandoned  = "abandoned"
	ItemStatusIncomplete = "incomplete"
	ItemStatusPastDue    = "past_due"
)

// SubscriptionItem is a priced line of a Subscription. It cannot exist without
// its parent subscription.
type SubscriptionItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ClerkItemID    string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_item_id" validate:"required,max=191"`
	SubscriptionID uint           `gorm:"not null;index" json:"subscription_id" validate:"required"`
	PlanID         string         `gorm:"type:varchar(191);not null" json:"plan_id" validate:"required,max=191"`
	PlanName       string         `gorm:"type:varchar(200);default:''" json:"plan_name"`
	Quantity       int            `gorm:"not null;default:1" json:"quantity" validate:"min=0"`
	UnitAmount     *int64         `gorm:"default:null" json:"unit_amount,omitempty"`
	Currency       string         `gorm:"type:varchar(8);default:'usd'" json:"currency"`
	Interval       *string        `gorm:"type:varchar(8);default:null" json:"interval,omitempty" validate:"omitempty,oneof=day week month year"`
	Status         string         `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"oneof=active canceled upcoming ended abandoned incomplete past_due"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *SubscriptionItem) Validate() error {
	v := validator.New()

	return v.Struct(i)
}

// IsItemStatus reports whether status is one of the stored item states.
func IsItemStatus(status string) bool {
	switch status {
	case ItemStatusActive, ItemStatusCanceled, ItemStatusUpcoming, ItemStatusEnded,
		ItemStatusAbandoned, ItemStatusIncomplete, ItemStatusPastDue:
		return true
	default:
		return false
	}
}

// IsBillingInterval reports whether interval is a supported billing interval.
func IsBillingInterval(interval string) bool {
	switch interval {
	case BillingIntervalDay, BillingIntervalWeek, BillingIntervalMonth, BillingIntervalYear:
		return true
	default:
		return false
	}
}
