package clerksync

import (
	"context"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
)

const entityOrganization = "organization"

func (s *Service) applyOrganization(ctx context.Context, kind clerk.Kind, p *clerk.OrganizationPayload) (Result, error) {
	existing, err := found(s.repos.Organization.GetByClerkID(ctx, p.ID))
	if err != nil {
		return Result{}, storeErr("find organization", err)
	}

	if existing == nil {
		if kind != clerk.KindOrganizationCreated {
			return Result{Outcome: OutcomeDeferred, Entity: entityOrganization, ExternalID: p.ID, Reason: "organization not found, may sync later"}, nil
		}
		return s.createOrganization(ctx, kind, p)
	}

	fillOrganization(existing, p)
	if err := s.repos.Organization.Update(ctx, existing); err != nil {
		return Result{}, storeErr("update organization", err)
	}
	return Result{Outcome: OutcomeUpdated, Entity: entityOrganization, ExternalID: p.ID}, nil
}

func (s *Service) createOrganization(ctx context.Context, kind clerk.Kind, p *clerk.OrganizationPayload) (Result, error) {
	if p.Name == "" {
		return Result{}, &ValidationError{Kind: kind, Field: "name", Message: "organization name is required"}
	}

	org := &models.Organization{ClerkID: p.ID}
	fillOrganization(org, p)

	// creator lookup is best effort, a miss leaves the reference unset
	if p.CreatedBy != "" {
		creator, err := found(s.repos.User.GetByClerkID(ctx, p.CreatedBy))
		if err != nil {
			return Result{}, storeErr("find organization creator", err)
		}
		if creator != nil {
			org.CreatedByID = &creator.ID
		}
	}

	err := s.repos.Organization.Create(ctx, org)
	if err == nil {
		return Result{Outcome: OutcomeCreated, Entity: entityOrganization, ExternalID: p.ID}, nil
	}
	if !isDuplicate(err) {
		return Result{}, storeErr("create organization", err)
	}

	// the slug is unique too, so only a row with our id makes this benign
	stored, findErr := found(s.repos.Organization.GetByClerkID(ctx, p.ID))
	if findErr != nil {
		return Result{}, storeErr("find organization", findErr)
	}
	if stored == nil {
		return Result{}, storeErr("create organization", err)
	}
	return Result{Outcome: OutcomeAlreadyExists, Entity: entityOrganization, ExternalID: p.ID}, nil
}

// fillOrganization copies the mutable fields. Optional fields the payload
// leaves empty keep their stored value.
func fillOrganization(org *models.Organization, p *clerk.OrganizationPayload) {
	if p.Name != "" {
		org.Name = p.Name
	}
	if p.Slug != "" {
		slug := p.Slug
		org.Slug = &slug
	}
	if p.ImageURL != "" {
		org.ImageURL = p.ImageURL
	}
	if p.MaxAllowedMemberships != nil && *p.MaxAllowedMemberships > 0 {
		limit := *p.MaxAllowedMemberships
		org.MaxAllowedMemberships = &limit
	}
	if doc := document(p.PublicMetadata); doc != nil {
		org.PublicMetadata = doc
	}
	if doc := document(p.PrivateMetadata); doc != nil {
		org.PrivateMetadata = doc
	}
}

func (s *Service) deleteOrganization(ctx context.Context, clerkID string) (Result, error) {
	org, err := found(s.repos.Organization.GetByClerkID(ctx, clerkID))
	if err != nil {
		return Result{}, storeErr("find organization", err)
	}
	if org == nil {
		return Result{Outcome: OutcomeNoop, Entity: entityOrganization, ExternalID: clerkID, Reason: "organization not found, already deleted"}, nil
	}

	if err := s.repos.Organization.Delete(ctx, org.ID); err != nil && !isNotFound(err) {
		return Result{}, storeErr("delete organization", err)
	}
	return Result{Outcome: OutcomeDeleted, Entity: entityOrganization, ExternalID: clerkID}, nil
}
