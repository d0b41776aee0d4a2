package clerksync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

// Outcome describes what applying an event did to the store.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeUpdated       Outcome = "updated"
	OutcomeDeleted       Outcome = "deleted"
	OutcomeAlreadyExists Outcome = "already_exists"
	// OutcomeDeferred means a referenced entity is not stored yet; the event is
	// acknowledged and expected to be redelivered.
	OutcomeDeferred Outcome = "deferred"
	OutcomeNoop     Outcome = "noop"
	OutcomeIgnored  Outcome = "ignored"
)

// Result is returned for every successfully handled event, including the
// ones that did not touch the store.
type Result struct {
	Outcome    Outcome
	Entity     string
	ExternalID string
	Reason     string
}

// ValidationError means the payload lacks a field the handler needs.
type ValidationError struct {
	Kind    clerk.Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Kind, e.Field, e.Message)
}

// StoreError wraps an unexpected persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Service applies verified provider events to the store. It writes through
// the repositories directly and never consults the access policy.
type Service struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos, now: time.Now}
}

// Apply dispatches evt to the handler of its family. Every handler is
// idempotent; a redelivery of an already applied event leaves one row.
func (s *Service) Apply(ctx context.Context, evt clerk.Event) (Result, error) {
	var res Result
	var err error

	switch p := evt.Data.(type) {
	case *clerk.UserPayload:
		res, err = s.upsertUser(ctx, evt.Type, p)
	case *clerk.OrganizationPayload:
		res, err = s.applyOrganization(ctx, evt.Type, p)
	case *clerk.MembershipPayload:
		res, err = s.applyMembership(ctx, evt.Type, p)
	case *clerk.SubscriptionPayload:
		res, err = s.applySubscription(ctx, evt.Type, p)
	case *clerk.SubscriptionItemPayload:
		res, err = s.applySubscriptionItem(ctx, evt.Type, p)
	case *clerk.PaymentAttemptPayload:
		res, err = s.applyPaymentAttempt(ctx, evt.Type, p)
	case *clerk.DeletedPayload:
		res, err = s.applyDeleted(ctx, evt.Type, p)
	default:
		res = Result{Outcome: OutcomeIgnored, ExternalID: externalID(evt.Data), Reason: "unhandled event type"}
	}

	if err != nil {
		log.Errorw("webhook event failed", "eventId", evt.ID, "eventType", evt.Type, "error", err)
		return Result{}, err
	}

	log.Infow("webhook event applied",
		"eventId", evt.ID,
		"eventType", evt.Type,
		"entity", res.Entity,
		"externalId", res.ExternalID,
		"outcome", res.Outcome,
		"reason", res.Reason,
	)
	return res, nil
}

func (s *Service) applyDeleted(ctx context.Context, kind clerk.Kind, p *clerk.DeletedPayload) (Result, error) {
	switch kind.Family() {
	case clerk.FamilyUser:
		return s.deleteUser(ctx, p.ID)
	case clerk.FamilyOrganization:
		return s.deleteOrganization(ctx, p.ID)
	case clerk.FamilyMembership:
		return s.deleteMembership(ctx, p.ID)
	default:
		return Result{Outcome: OutcomeIgnored, ExternalID: p.ID, Reason: "unhandled event type"}, nil
	}
}

func externalID(p clerk.Payload) string {
	if p == nil {
		return ""
	}
	return p.ExternalID()
}

// found turns gorm.ErrRecordNotFound into a nil row.
func found[T any](row *T, err error) (*T, error) {
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

var errDuplicateEmail = errors.New("email address belongs to another user")
