package clerksync

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

const entityMembership = "organization_membership"

func (s *Service) applyMembership(ctx context.Context, kind clerk.Kind, p *clerk.MembershipPayload) (Result, error) {
	existing, err := found(s.repos.Membership.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find membership", err)
	}

	if kind == clerk.KindMembershipCreated {
		if existing != nil {
			return Result{Outcome: OutcomeAlreadyExists, Entity: entityMembership, ExternalID: p.ID}, nil
		}
		return s.createMembership(ctx, p)
	}

	if existing == nil {
		return Result{Outcome: OutcomeNoop, Entity: entityMembership, ExternalID: p.ID, Reason: "membership not found"}, nil
	}

	existing.Role = models.NormalizeMembershipRole(p.Role)
	if doc := document(p.PublicMetadata); doc != nil {
		existing.PublicMetadata = doc
	}
	if err := s.repos.Membership.Update(ctx, existing); err != nil {
		return Result{}, storeErr("update membership", err)
	}
	return Result{Outcome: OutcomeUpdated, Entity: entityMembership, ExternalID: p.ID}, nil
}

// createMembership needs both the organization and the user to be stored
// already; otherwise the event is deferred until the provider redelivers it.
func (s *Service) createMembership(ctx context.Context, p *clerk.MembershipPayload) (Result, error) {
	org, err := found(s.repos.Organization.GetByClerkID(ctx, p.Organization.ID))
	if err != nil {
		return Result{}, storeErr("find membership organization", err)
	}
	if org == nil {
		return Result{Outcome: OutcomeDeferred, Entity: entityMembership, ExternalID: p.ID, Reason: "organization " + p.Organization.ID + " not found, may sync later"}, nil
	}

	user, err := found(s.repos.User.GetByClerkID(ctx, p.PublicUserData.UserID))
	if err != nil {
		return Result{}, storeErr("find membership user", err)
	}
	if user == nil {
		return Result{Outcome: OutcomeDeferred, Entity: entityMembership, ExternalID: p.ID, Reason: "user " + p.PublicUserData.UserID + " not found, may sync later"}, nil
	}

	membership := &models.OrganizationMembership{
		ClerkMembershipID: p.ID,
		OrganizationID:    org.ID,
		UserID:            user.ID,
		Role:              models.NormalizeMembershipRole(p.Role),
		PublicMetadata:    document(p.PublicMetadata),
	}
	err = s.repos.Membership.Create(ctx, membership)
	switch {
	case err == nil:
		return Result{Outcome: OutcomeCreated, Entity: entityMembership, ExternalID: p.ID}, nil
	case isDuplicate(err):
		return Result{Outcome: OutcomeAlreadyExists, Entity: entityMembership, ExternalID: p.ID}, nil
	default:
		return Result{}, storeErr("create membership", err)
	}
}

func (s *Service) deleteMembership(ctx context.Context, clerkID string) (Result, error) {
	membership, err := found(s.repos.Membership.GetByClerkID(ctx, clerkID))
	if err != nil {
		return Result{}, storeErr("find membership", err)
	}
	if membership == nil {
		return Result{Outcome: OutcomeNoop, Entity: entityMembership, ExternalID: clerkID, Reason: "membership not found, already deleted"}, nil
	}

	if err := s.repos.Membership.Delete(ctx, membership.ID); err != nil && !isNotFound(err) {
		return Result{}, storeErr("delete membership", err)
	}
	return Result{Outcome: OutcomeDeleted, Entity: entityMembership, ExternalID: clerkID}, nil
}
