package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentAttemptRepository struct {
	store[models.PaymentAttempt]
}

// NewPaymentAttemptRepository creates a new payment attempt repository instance
func NewPaymentAttemptRepository(db *gorm.DB) PaymentAttemptRepository {
	return &paymentAttemptRepository{store[models.PaymentAttempt]{db: db}}
}

func (r *paymentAttemptRepository) GetByClerkID(ctx context.Context, clerkPaymentID string) (*models.PaymentAttempt, error) {
	return r.first(ctx, "clerk_payment_id = ?", clerkPaymentID)
}

// Create inserts the attempt. A set subscription reference must point at a
// stored subscription.
func (r *paymentAttemptRepository) Create(ctx context.Context, p *models.PaymentAttempt) error {
	return writeChecked(r.conn(ctx), p, true, func(tx *gorm.DB) error {
		return paymentSubscriptionTx(tx, p)
	})
}

func (r *paymentAttemptRepository) Update(ctx context.Context, p *models.PaymentAttempt) error {
	return writeChecked(r.conn(ctx), p, false, func(tx *gorm.DB) error {
		return paymentSubscriptionTx(tx, p)
	})
}

func (r *paymentAttemptRepository) Delete(ctx context.Context, id uint) error {
	return deleteRowTx[models.PaymentAttempt](r.conn(ctx), id)
}

// Upsert inserts the attempt or overwrites the row with the same
// clerk_payment_id. attempt is reloaded from the store afterwards.
func (r *paymentAttemptRepository) Upsert(ctx context.Context, attempt *models.PaymentAttempt) error {
	db := r.conn(ctx)

	// the conflict target is the external id, never the primary key
	row := *attempt
	row.ID = 0
	row.CreatedAt = time.Time{}
	row.UpdatedAt = time.Time{}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "clerk_payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subscription_id",
			"amount",
			"currency",
			"status",
			"failure_reason",
			"failure_code",
			"invoice_id",
			"charge_id",
			"payment_method_type",
			"attempted_at",
			"metadata",
			"updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	var stored models.PaymentAttempt
	if err := db.Where("clerk_payment_id = ?", attempt.ClerkPaymentID).First(&stored).Error; err != nil {
		return err
	}
	*attempt = stored
	return nil
}
