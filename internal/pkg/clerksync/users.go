package clerksync

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

const entityUser = "user"

// upsertUser handles user.created and user.updated. An update for an unknown
// user creates it, and a repeated creation updates the existing row.
func (s *Service) upsertUser(ctx context.Context, kind clerk.Kind, p *clerk.UserPayload) (Result, error) {
	email, ok := p.PrimaryEmail()
	if !ok {
		return Result{}, &ValidationError{Kind: kind, Field: "primary_email_address_id", Message: "no primary email address"}
	}

	existing, err := found(s.repos.User.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find user", err)
	}

	if existing == nil {
		user := &models.User{ClerkID: p.ID}
		if created := clerk.Millis(&p.CreatedAt); created != nil {
			user.CreatedAt = *created
		}
		s.fillUser(user, p, email)

		err := s.repos.User.Create(ctx, user)
		if err == nil {
			return Result{Outcome: OutcomeCreated, Entity: entityUser, ExternalID: p.ID}, nil
		}
		if !isDuplicate(err) {
			return Result{}, storeErr("create user", err)
		}

		// lost a race with a concurrent delivery for the same user
		existing, err = found(s.repos.User.GetByClerkID(ctx, p.ID))
		if err != nil {
			return Result{}, storeErr("find user", err)
		}
		if existing == nil {
			return Result{}, storeErr("create user", errDuplicateEmail)
		}
	}

	s.fillUser(existing, p, email)
	if err := s.repos.User.Update(ctx, existing); err != nil {
		return Result{}, storeErr("update user", err)
	}
	return Result{Outcome: OutcomeUpdated, Entity: entityUser, ExternalID: p.ID}, nil
}

func (s *Service) fillUser(user *models.User, p *clerk.UserPayload, email clerk.EmailAddress) {
	user.Email = email.EmailAddress
	user.FirstName = p.FirstName
	user.LastName = p.LastName
	user.ImageURL = p.ImageURL

	if email.Verification.IsVerified() {
		user.MarkEmailVerified(s.now())
	} else {
		user.EmailVerified = false
	}

	user.PhoneNumber = nil
	user.PhoneVerified = false
	if phone, ok := p.PrimaryPhone(); ok && phone.PhoneNumber != "" {
		number := phone.PhoneNumber
		user.PhoneNumber = &number
		user.PhoneVerified = phone.Verification.IsVerified()
	}

	user.LastSignInAt = clerk.Millis(p.LastSignInAt)
	user.PublicMetadata = document(p.PublicMetadata)
}

func (s *Service) deleteUser(ctx context.Context, clerkID string) (Result, error) {
	user, err := found(s.repos.User.GetByClerkID(ctx, clerkID))
	if err != nil {
		return Result{}, storeErr("find user", err)
	}
	if user == nil {
		return Result{Outcome: OutcomeNoop, Entity: entityUser, ExternalID: clerkID, Reason: "user not found, already deleted"}, nil
	}

	if err := s.repos.User.Delete(ctx, user.ID); err != nil && !isNotFound(err) {
		return Result{}, storeErr("delete user", err)
	}
	return Result{Outcome: OutcomeDeleted, Entity: entityUser, ExternalID: clerkID}, nil
}
