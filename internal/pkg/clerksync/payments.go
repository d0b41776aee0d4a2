package clerksync

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

const entityPaymentAttempt = "payment_attempt"

// applyPaymentAttempt inserts or overwrites the attempt regardless of kind.
// Payments may first show up as an update, so unlike subscription items an
// unseen attempt is always stored.
func (s *Service) applyPaymentAttempt(ctx context.Context, kind clerk.Kind, p *clerk.PaymentAttemptPayload) (Result, error) {
	existing, err := found(s.repos.PaymentAttempt.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find payment attempt", err)
	}

	attempt := &models.PaymentAttempt{ClerkPaymentID: p.ID}
	outcome := OutcomeCreated
	if existing != nil {
		attempt = existing
		outcome = OutcomeUpdated
	}

	// subscription reference is best effort
	if p.Subscription != "" {
		sub, err := found(s.repos.Subscription.GetByClerkID(ctx, p.Subscription))
		if err != nil {
			return Result{}, storeErr("find payment subscription", err)
		}
		if sub != nil {
			attempt.SubscriptionID = &sub.ID
		}
	}

	attempt.Amount = 0
	if p.Amount != nil {
		attempt.Amount = *p.Amount
	}
	attempt.Currency = orString(p.Currency, models.DefaultCurrency)
	attempt.Status = pickStatus(models.IsPaymentStatus, models.PaymentStatusProcessing, p.Status, attempt.Status)
	attempt.FailureReason = orString(p.FailureReason, attempt.FailureReason)
	attempt.FailureCode = orString(p.FailureCode, attempt.FailureCode)
	attempt.InvoiceID = orString(p.Invoice, attempt.InvoiceID)
	attempt.ChargeID = orString(p.Charge, attempt.ChargeID)
	attempt.PaymentMethodType = orString(p.PaymentMethodType, attempt.PaymentMethodType)
	if created := clerk.Seconds(p.Created); created != nil {
		attempt.AttemptedAt = *created
	} else if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = s.now().UTC()
	}
	if doc := document(p.Metadata); doc != nil {
		attempt.Metadata = doc
	}

	if err := s.repos.PaymentAttempt.Upsert(ctx, attempt); err != nil {
		return Result{}, storeErr("upsert payment attempt", err)
	}
	return Result{Outcome: outcome, Entity: entityPaymentAttempt, ExternalID: p.ID}, nil
}
