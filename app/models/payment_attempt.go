package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const (
	PaymentStatusSucceeded             = "succeeded"
	PaymentStatusFailed                = "failed"
	PaymentStatusProcessing            = "processing"
	PaymentStatusRequiresAction        = "requires_action"
	PaymentStatusRequiresPaymentMethod = "requires_payment_method"
	PaymentStatusCanceled              = "canceled"
)

const DefaultCurrency = "usd"

// PaymentAttempt records one charge attempt. Amount is in minor currency units.
type PaymentAttempt struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ClerkPaymentID    string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_payment_id" validate:"required,max=191"`
	SubscriptionID    *uint          `gorm:"index;default:null" json:"subscription_id,omitempty"`
	Amount            int64          `gorm:"not null;default:0" json:"amount"`
	Currency          string         `gorm:"type:varchar(8);not null;default:'usd'" json:"currency" validate:"required,max=8"`
	Status            string         `gorm:"type:varchar(32);not null;index" json:"status" validate:"oneof=succeeded failed processing requires_action requires_payment_method canceled"`
	FailureReason     string         `gorm:"type:text" json:"failure_reason,omitempty"`
	FailureCode       string         `gorm:"type:varchar(100);default:''" json:"failure_code,omitempty"`
	InvoiceID         string         `gorm:"type:varchar(191);default:''" json:"invoice_id,omitempty"`
	ChargeID          string         `gorm:"type:varchar(191);default:''" json:"charge_id,omitempty"`
	PaymentMethodType string         `gorm:"type:varchar(50);default:''" json:"payment_method_type,omitempty"`
	AttemptedAt       time.Time      `gorm:"type:timestamp;not null" json:"attempted_at"`
	Metadata          datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PaymentAttempt) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsPaymentStatus reports whether status is one of the stored payment states.
func IsPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusProcessing,
		PaymentStatusRequiresAction, PaymentStatusRequiresPaymentMethod, PaymentStatusCanceled:
		return true
	default:
		return false
	}
}
