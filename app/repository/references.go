package repository

import (
	"errors"
	"fmt"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

// ErrMissingReference is returned when a row points at a parent row that is
// not stored.
var ErrMissingReference = errors.New("referenced row does not exist")

// requireRowTx fails with ErrMissingReference unless a T with the given id
// exists.
func requireRowTx[T any](tx *gorm.DB, name string, id uint) error {
	var count int64
	var row T
	if err := tx.Model(&row).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d", ErrMissingReference, name, id)
	}
	return nil
}

func membershipParentsTx(tx *gorm.DB, m *models.OrganizationMembership) error {
	if err := requireRowTx[models.Organization](tx, "organization", m.OrganizationID); err != nil {
		return err
	}
	return requireRowTx[models.User](tx, "user", m.UserID)
}

func subscriberTx(tx *gorm.DB, s *models.Subscription) error {
	if s.SubscriberUserID != nil {
		if err := requireRowTx[models.User](tx, "user", *s.SubscriberUserID); err != nil {
			return err
		}
	}
	if s.SubscriberOrganizationID != nil {
		return requireRowTx[models.Organization](tx, "organization", *s.SubscriberOrganizationID)
	}
	return nil
}

func paymentSubscriptionTx(tx *gorm.DB, p *models.PaymentAttempt) error {
	if p.SubscriptionID == nil {
		return nil
	}
	return requireRowTx[models.Subscription](tx, "subscription", *p.SubscriptionID)
}

// writeChecked runs check and the insert (or full save) of row in one
// transaction.
func writeChecked[T any](db *gorm.DB, row *T, insert bool, check func(tx *gorm.DB) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := check(tx); err != nil {
			return err
		}
		if insert {
			return tx.Create(row).Error
		}
		return tx.Save(row).Error
	})
}
