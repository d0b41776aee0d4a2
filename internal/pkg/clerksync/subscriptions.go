package clerksync

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

const (
	entitySubscription     = "subscription"
	entitySubscriptionItem = "subscription_item"
)

type subscriber struct {
	kind string
	id   uint
}

// resolveSubscriber looks the customer id up as an organization first, then
// as a user. A nil result means neither is stored.
func (s *Service) resolveSubscriber(ctx context.Context, customer string) (*subscriber, error) {
	if customer == "" {
		return nil, nil
	}

	org, err := found(s.repos.Organization.GetByClerkID(ctx, customer))
	if err != nil {
		return nil, err
	}
	if org != nil {
		return &subscriber{kind: models.SubscriberTypeOrganization, id: org.ID}, nil
	}

	user, err := found(s.repos.User.GetByClerkID(ctx, customer))
	if err != nil {
		return nil, err
	}
	if user != nil {
		return &subscriber{kind: models.SubscriberTypeUser, id: user.ID}, nil
	}
	return nil, nil
}

// applySubscription handles every subscription.* kind. Only a creation event
// may insert a row; other kinds arriving first are acknowledged and dropped.
func (s *Service) applySubscription(ctx context.Context, kind clerk.Kind, p *clerk.SubscriptionPayload) (Result, error) {
	sub, err := s.resolveSubscriber(ctx, p.Customer)
	if err != nil {
		return Result{}, storeErr("resolve subscriber", err)
	}

	existing, err := found(s.repos.Subscription.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find subscription", err)
	}

	if existing != nil {
		fillSubscription(existing, kind, p, sub)
		if err := s.repos.Subscription.Update(ctx, existing); err != nil {
			return Result{}, storeErr("update subscription", err)
		}
		return Result{Outcome: OutcomeUpdated, Entity: entitySubscription, ExternalID: p.ID}, nil
	}

	if kind != clerk.KindSubscriptionCreated {
		return Result{Outcome: OutcomeNoop, Entity: entitySubscription, ExternalID: p.ID, Reason: "subscription not found, only creation events insert"}, nil
	}
	if sub == nil {
		return Result{Outcome: OutcomeDeferred, Entity: entitySubscription, ExternalID: p.ID, Reason: "subscriber " + p.Customer + " not found, may sync later"}, nil
	}

	row := &models.Subscription{ClerkSubscriptionID: p.ID}
	fillSubscription(row, kind, p, sub)
	err = s.repos.Subscription.Create(ctx, row)
	switch {
	case err == nil:
		return Result{Outcome: OutcomeCreated, Entity: entitySubscription, ExternalID: p.ID}, nil
	case isDuplicate(err):
		return Result{Outcome: OutcomeAlreadyExists, Entity: entitySubscription, ExternalID: p.ID}, nil
	default:
		return Result{}, storeErr("create subscription", err)
	}
}

// fillSubscription merges the event into row. Timestamps missing from the
// payload keep their stored value, and an unresolved subscriber keeps the
// previous reference.
func fillSubscription(row *models.Subscription, kind clerk.Kind, p *clerk.SubscriptionPayload, sub *subscriber) {
	if sub != nil {
		switch sub.kind {
		case models.SubscriberTypeOrganization:
			row.SetOrganizationSubscriber(sub.id)
		default:
			row.SetUserSubscriber(sub.id)
		}
	}

	row.Status = pickStatus(models.IsSubscriptionStatus, models.BillingStatusActive, p.Status, kind.Suffix(), row.Status)

	if t := clerk.Seconds(p.CurrentPeriodStart); t != nil {
		row.CurrentPeriodStart = t
	}
	if t := clerk.Seconds(p.CurrentPeriodEnd); t != nil {
		row.CurrentPeriodEnd = t
	}
	if t := clerk.Seconds(p.TrialStart); t != nil {
		row.TrialStart = t
	}
	if t := clerk.Seconds(p.TrialEnd); t != nil {
		row.TrialEnd = t
	}
	if t := clerk.Seconds(p.CanceledAt); t != nil {
		row.CanceledAt = t
	}
	row.CancelAtPeriodEnd = p.CancelAtPeriodEnd
	if doc := document(p.Metadata); doc != nil {
		row.Metadata = doc
	}
}

// applySubscriptionItem requires the parent subscription to be stored. As
// with subscriptions, only the creation kind inserts an unseen item.
func (s *Service) applySubscriptionItem(ctx context.Context, kind clerk.Kind, p *clerk.SubscriptionItemPayload) (Result, error) {
	parent, err := found(s.repos.Subscription.GetByClerkID(ctx, p.Subscription))
	if err != nil {
		return Result{}, storeErr("find parent subscription", err)
	}
	if parent == nil {
		return Result{Outcome: OutcomeDeferred, Entity: entitySubscriptionItem, ExternalID: p.ID, Reason: "subscription " + p.Subscription + " not found, may sync later"}, nil
	}

	existing, err := found(s.repos.SubscriptionItem.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find subscription item", err)
	}

	if existing != nil {
		fillSubscriptionItem(existing, kind, p, parent.ID)
		if err := s.repos.SubscriptionItem.Update(ctx, existing); err != nil {
			return Result{}, storeErr("update subscription item", err)
		}
		return Result{Outcome: OutcomeUpdated, Entity: entitySubscriptionItem, ExternalID: p.ID}, nil
	}

	if kind != clerk.KindSubscriptionItemCreated {
		return Result{Outcome: OutcomeNoop, Entity: entitySubscriptionItem, ExternalID: p.ID, Reason: "subscription item not found, only creation events insert"}, nil
	}
	if p.Plan.ID == "" {
		return Result{}, &ValidationError{Kind: kind, Field: "plan", Message: "plan id is required"}
	}

	item := &models.SubscriptionItem{ClerkItemID: p.ID}
	fillSubscriptionItem(item, kind, p, parent.ID)
	err = s.repos.SubscriptionItem.Create(ctx, item)
	switch {
	case err == nil:
		return Result{Outcome: OutcomeCreated, Entity: entitySubscriptionItem, ExternalID: p.ID}, nil
	case isDuplicate(err):
		return Result{Outcome: OutcomeAlreadyExists, Entity: entitySubscriptionItem, ExternalID: p.ID}, nil
	default:
		return Result{}, storeErr("create subscription item", err)
	}
}

// fillSubscriptionItem normalizes both plan forms onto the row. Pricing
// fields come from the inline plan object only.
func fillSubscriptionItem(item *models.SubscriptionItem, kind clerk.Kind, p *clerk.SubscriptionItemPayload, subscriptionID uint) {
	item.SubscriptionID = subscriptionID
	if p.Plan.ID != "" {
		item.PlanID = p.Plan.ID
	}

	if plan := p.Plan.Object; plan != nil {
		item.PlanName = p.Plan.DisplayName()
		item.UnitAmount = plan.Amount
		item.Currency = orString(plan.Currency, models.DefaultCurrency)
		item.Interval = nil
		if models.IsBillingInterval(plan.Interval) {
			interval := plan.Interval
			item.Interval = &interval
		}
	} else if item.Currency == "" {
		item.Currency = models.DefaultCurrency
	}

	item.Quantity = 1
	if p.Quantity != nil && *p.Quantity > 0 {
		item.Quantity = *p.Quantity
	}
	item.Status = pickStatus(models.IsItemStatus, models.ItemStatusActive, p.Status, kind.Suffix(), item.Status)
	if doc := document(p.Metadata); doc != nil {
		item.Metadata = doc
	}
}
