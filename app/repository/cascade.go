package repository

import (
	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

// deleteSubscriptionsTx removes subscriptions together with their items and
// detaches payment attempts that referenced them. Must run inside tx.
func deleteSubscriptionsTx(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("subscription_id IN ?", ids).Delete(&models.SubscriptionItem{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.PaymentAttempt{}).
		Where("subscription_id IN ?", ids).
		Update("subscription_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Subscription{}).Error
}

// deleteSubscriberTx removes the memberships and subscriptions hanging off a
// user or organization, in that order.
func deleteSubscriberTx(tx *gorm.DB, membershipColumn, subscriberColumn string, id uint) error {
	if err := tx.Where(membershipColumn+" = ?", id).Delete(&models.OrganizationMembership{}).Error; err != nil {
		return err
	}

	var subIDs []uint
	if err := tx.Model(&models.Subscription{}).Where(subscriberColumn+" = ?", id).Pluck("id", &subIDs).Error; err != nil {
		return err
	}
	return deleteSubscriptionsTx(tx, subIDs)
}

func deleteRowTx[T any](tx *gorm.DB, id uint) error {
	var row T
	res := tx.Delete(&row, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
