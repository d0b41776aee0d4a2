package clerksync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/database"
)

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	db    *gorm.DB
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	repos := repository.NewRepositories(db)
	return &fixture{svc: NewService(repos), repos: repos, db: db, ctx: context.Background()}
}

func (f *fixture) apply(t *testing.T, kind clerk.Kind, data clerk.Payload) Result {
	t.Helper()
	res, err := f.svc.Apply(f.ctx, clerk.Event{ID: "msg_" + string(kind), Type: kind, Data: data})
	require.NoError(t, err)
	return res
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func userPayload(id, email string, verified bool) *clerk.UserPayload {
	status := "unverified"
	if verified {
		status = "verified"
	}
	return &clerk.UserPayload{
		ID:                    id,
		PrimaryEmailAddressID: "idn_" + id,
		EmailAddresses: []clerk.EmailAddress{
			{ID: "idn_" + id, EmailAddress: email, Verification: &clerk.Verification{Status: status}},
		},
		FirstName: "Ada",
		LastName:  "Lovelace",
		CreatedAt: 1700000000000,
	}
}

func orgPayload(id string) *clerk.OrganizationPayload {
	return &clerk.OrganizationPayload{ID: id, Name: "Org " + id, Slug: "slug-" + id}
}

func membershipPayload(id, orgID, userID, role string) *clerk.MembershipPayload {
	return &clerk.MembershipPayload{
		ID:             id,
		Organization:   clerk.MembershipOrganization{ID: orgID},
		PublicUserData: clerk.PublicUserData{UserID: userID},
		Role:           role,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestUserCreatedScenario(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	assert.Equal(t, OutcomeCreated, res.Outcome)

	user, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), user.CreatedAt.UTC())
}

func TestUserCreatedTwiceKeepsOneRow(t *testing.T) {
	f := newFixture(t)

	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	res := f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, int64(1), f.count(t, &models.User{}))
}

func TestUserWithoutPrimaryEmail(t *testing.T) {
	f := newFixture(t)
	p := userPayload("u1", "a@example.com", false)
	p.PrimaryEmailAddressID = "idn_other"

	for _, kind := range []clerk.Kind{clerk.KindUserCreated, clerk.KindUserUpdated} {
		_, err := f.svc.Apply(f.ctx, clerk.Event{ID: "msg", Type: kind, Data: p})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
	assert.Zero(t, f.count(t, &models.User{}))
}

func TestUserUpdatedBeforeCreated(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, clerk.KindUserUpdated, userPayload("u1", "a@example.com", true))
	assert.Equal(t, OutcomeCreated, res.Outcome)

	user, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.NotNil(t, user.EmailVerifiedAt)
}

func TestUserUpdatedOverwritesFields(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	p := userPayload("u1", "b@example.com", false)
	p.FirstName = "Grace"
	p.PrimaryPhoneNumberID = "phn_1"
	p.PhoneNumbers = []clerk.PhoneNumber{{ID: "phn_1", PhoneNumber: "+15555550100", Verification: &clerk.Verification{Status: "verified"}}}
	p.LastSignInAt = int64Ptr(1700000500000)
	p.PublicMetadata = json.RawMessage(`{"tier":"gold"}`)

	res := f.apply(t, clerk.KindUserUpdated, p)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	user, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", user.Email)
	assert.Equal(t, "Grace", user.FirstName)
	require.NotNil(t, user.PhoneNumber)
	assert.Equal(t, "+15555550100", *user.PhoneNumber)
	assert.True(t, user.PhoneVerified)
	require.NotNil(t, user.LastSignInAt)
	assert.JSONEq(t, `{"tier":"gold"}`, string(user.PublicMetadata))
}

func TestEmailVerifiedAtIsMonotonic(t *testing.T) {
	f := newFixture(t)
	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }

	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", true))

	f.svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	f.apply(t, clerk.KindUserUpdated, userPayload("u1", "a@example.com", true))
	f.apply(t, clerk.KindUserUpdated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindUserUpdated, userPayload("u1", "a@example.com", true))

	user, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerifiedAt)
	assert.True(t, first.Equal(*user.EmailVerifiedAt))
	assert.True(t, user.EmailVerified)
}

func TestUserDeletedCascades(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindUserCreated, userPayload("u2", "b@example.com", false))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o2"))

	f.apply(t, clerk.KindMembershipCreated, membershipPayload("m1", "o1", "u1", "org:admin"))
	f.apply(t, clerk.KindMembershipCreated, membershipPayload("m2", "o2", "u1", "org:member"))
	f.apply(t, clerk.KindMembershipCreated, membershipPayload("m3", "o1", "u2", "org:member"))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s2", Customer: "u1"})
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s3", Customer: "o1"})

	res := f.apply(t, clerk.KindUserDeleted, &clerk.DeletedPayload{ID: "u1", Deleted: true})
	assert.Equal(t, OutcomeDeleted, res.Outcome)

	for _, id := range []string{"m1", "m2"} {
		_, err := f.repos.Membership.GetByClerkID(f.ctx, id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, id)
	}
	for _, id := range []string{"s1", "s2"} {
		_, err := f.repos.Subscription.GetByClerkID(f.ctx, id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, id)
	}
	_, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.Equal(t, int64(1), f.count(t, &models.OrganizationMembership{}))
	assert.Equal(t, int64(1), f.count(t, &models.Subscription{}))

	res = f.apply(t, clerk.KindUserDeleted, &clerk.DeletedPayload{ID: "u1", Deleted: true})
	assert.Equal(t, OutcomeNoop, res.Outcome)
}

func TestOrganizationCreatedResolvesCreator(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	withCreator := orgPayload("o1")
	withCreator.CreatedBy = "u1"
	withCreator.PublicMetadata = json.RawMessage(`{"region":"eu"}`)
	f.apply(t, clerk.KindOrganizationCreated, withCreator)

	unknownCreator := orgPayload("o2")
	unknownCreator.CreatedBy = "u_missing"
	res := f.apply(t, clerk.KindOrganizationCreated, unknownCreator)
	assert.Equal(t, OutcomeCreated, res.Outcome)

	user, err := f.repos.User.GetByClerkID(f.ctx, "u1")
	require.NoError(t, err)

	o1, err := f.repos.Organization.GetByClerkID(f.ctx, "o1")
	require.NoError(t, err)
	require.NotNil(t, o1.CreatedByID)
	assert.Equal(t, user.ID, *o1.CreatedByID)
	assert.JSONEq(t, `{"region":"eu"}`, string(o1.PublicMetadata))

	o2, err := f.repos.Organization.GetByClerkID(f.ctx, "o2")
	require.NoError(t, err)
	assert.Nil(t, o2.CreatedByID)
}

func TestOrganizationUpdated(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, clerk.KindOrganizationUpdated, orgPayload("o1"))
	assert.Equal(t, OutcomeDeferred, res.Outcome)
	assert.Zero(t, f.count(t, &models.Organization{}))

	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))
	update := &clerk.OrganizationPayload{ID: "o1", Name: "Renamed"}
	res = f.apply(t, clerk.KindOrganizationUpdated, update)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	org, err := f.repos.Organization.GetByClerkID(f.ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", org.Name)
	require.NotNil(t, org.Slug)
	assert.Equal(t, "slug-o1", *org.Slug)
}

func TestOrganizationCreatedTwiceKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))
	assert.Equal(t, int64(1), f.count(t, &models.Organization{}))
}

func TestOrganizationDeletedCascades(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))
	f.apply(t, clerk.KindMembershipCreated, membershipPayload("m1", "o1", "u1", ""))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "o1"})
	f.apply(t, clerk.KindSubscriptionItemCreated, &clerk.SubscriptionItemPayload{ID: "si1", Subscription: "s1", Plan: clerk.PlanRef{ID: "plan_1"}})

	res := f.apply(t, clerk.KindOrganizationDeleted, &clerk.DeletedPayload{ID: "o1"})
	assert.Equal(t, OutcomeDeleted, res.Outcome)

	assert.Zero(t, f.count(t, &models.OrganizationMembership{}))
	assert.Zero(t, f.count(t, &models.Subscription{}))
	assert.Zero(t, f.count(t, &models.SubscriptionItem{}))
	assert.Equal(t, int64(1), f.count(t, &models.User{}))

	res = f.apply(t, clerk.KindOrganizationDeleted, &clerk.DeletedPayload{ID: "o1"})
	assert.Equal(t, OutcomeNoop, res.Outcome)
}

func TestMembershipRaceScenario(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	membership := membershipPayload("m1", "o1", "u1", "org:member")
	res := f.apply(t, clerk.KindMembershipCreated, membership)
	assert.Equal(t, OutcomeDeferred, res.Outcome)
	assert.Zero(t, f.count(t, &models.OrganizationMembership{}))

	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))

	res = f.apply(t, clerk.KindMembershipCreated, membership)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, int64(1), f.count(t, &models.OrganizationMembership{}))
}

func TestMembershipDeferredOnMissingUser(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))

	res := f.apply(t, clerk.KindMembershipCreated, membershipPayload("m1", "o1", "u1", ""))
	assert.Equal(t, OutcomeDeferred, res.Outcome)
	assert.Zero(t, f.count(t, &models.OrganizationMembership{}))
}

func TestMembershipLifecycle(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))

	res := f.apply(t, clerk.KindMembershipCreated, membershipPayload("m1", "o1", "u1", ""))
	assert.Equal(t, OutcomeCreated, res.Outcome)
	res = f.apply(t, clerk.KindMembershipCreated, membershipPayload("m1", "o1", "u1", "org:admin"))
	assert.Equal(t, OutcomeAlreadyExists, res.Outcome)

	m, err := f.repos.Membership.GetByClerkID(f.ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipRoleMember, m.Role)

	res = f.apply(t, clerk.KindMembershipUpdated, membershipPayload("m1", "o1", "u1", "org:billing"))
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	m, err = f.repos.Membership.GetByClerkID(f.ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipRoleBilling, m.Role)

	res = f.apply(t, clerk.KindMembershipUpdated, membershipPayload("m_missing", "o1", "u1", "org:admin"))
	assert.Equal(t, OutcomeNoop, res.Outcome)

	res = f.apply(t, clerk.KindMembershipDeleted, &clerk.DeletedPayload{ID: "m1"})
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	res = f.apply(t, clerk.KindMembershipDeleted, &clerk.DeletedPayload{ID: "m1"})
	assert.Equal(t, OutcomeNoop, res.Outcome)
}

func TestSubscriptionSubscriberResolution(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("cust_1", "a@example.com", false))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("cust_1"))
	f.apply(t, clerk.KindUserCreated, userPayload("u2", "b@example.com", false))

	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s_org", Customer: "cust_1"})
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s_user", Customer: "u2"})

	orgSub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s_org")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberTypeOrganization, orgSub.SubscriberType)
	assert.NotNil(t, orgSub.SubscriberOrganizationID)
	assert.Nil(t, orgSub.SubscriberUserID)

	userSub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s_user")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberTypeUser, userSub.SubscriberType)
	assert.NotNil(t, userSub.SubscriberUserID)
	assert.Nil(t, userSub.SubscriberOrganizationID)
}

func TestSubscriptionUnknownSubscriberIsDeferred(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "nobody"})
	assert.Equal(t, OutcomeDeferred, res.Outcome)
	assert.Zero(t, f.count(t, &models.Subscription{}))
}

func TestSubscriptionNonCreationKindsNeverInsert(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	for _, kind := range []clerk.Kind{clerk.KindSubscriptionUpdated, clerk.KindSubscriptionActive, clerk.KindSubscriptionPastDue} {
		res := f.apply(t, kind, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
		assert.Equal(t, OutcomeNoop, res.Outcome, kind)
	}
	assert.Zero(t, f.count(t, &models.Subscription{}))
}

func TestSubscriptionStatusDerivation(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	status := func() string {
		sub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s1")
		require.NoError(t, err)
		return sub.Status
	}

	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{
		ID: "s1", Customer: "u1", CurrentPeriodStart: int64Ptr(1700000000), CurrentPeriodEnd: int64Ptr(1702592000),
	})
	assert.Equal(t, models.BillingStatusActive, status())

	f.apply(t, clerk.KindSubscriptionPastDue, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
	assert.Equal(t, models.BillingStatusPastDue, status())

	f.apply(t, clerk.KindSubscriptionUpdated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
	assert.Equal(t, models.BillingStatusPastDue, status())

	f.apply(t, clerk.KindSubscriptionActive, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1", Status: "trialing"})
	assert.Equal(t, models.BillingStatusTrialing, status())

	f.apply(t, clerk.KindSubscriptionUpdated, &clerk.SubscriptionPayload{ID: "s1", Status: "bogus", CancelAtPeriodEnd: true})
	assert.Equal(t, models.BillingStatusTrialing, status())

	sub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, time.Unix(1702592000, 0).UTC(), sub.CurrentPeriodEnd.UTC())
	// customer omitted: previous subscriber kept
	assert.Equal(t, models.SubscriberTypeUser, sub.SubscriberType)
	assert.NotNil(t, sub.SubscriberUserID)
}

func TestSubscriptionCreatedTwiceKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))

	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
	res := f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})

	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, int64(1), f.count(t, &models.Subscription{}))
}

func TestSubscriptionItemOrderingTolerance(t *testing.T) {
	f := newFixture(t)
	item := &clerk.SubscriptionItemPayload{ID: "si1", Subscription: "s1", Plan: clerk.PlanRef{ID: "plan_1"}}

	res := f.apply(t, clerk.KindSubscriptionItemUpdated, item)
	assert.Equal(t, OutcomeDeferred, res.Outcome)
	assert.Zero(t, f.count(t, &models.SubscriptionItem{}))

	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})

	// parent exists now but the item was never created
	res = f.apply(t, clerk.KindSubscriptionItemUpdated, item)
	assert.Equal(t, OutcomeNoop, res.Outcome)

	res = f.apply(t, clerk.KindSubscriptionItemCreated, item)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	res = f.apply(t, clerk.KindSubscriptionItemCreated, item)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	sub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s1")
	require.NoError(t, err)
	stored, err := f.repos.SubscriptionItem.GetByClerkID(f.ctx, "si1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, stored.SubscriptionID)
	assert.Equal(t, int64(1), f.count(t, &models.SubscriptionItem{}))
}

func TestSubscriptionItemPlanForms(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})

	f.apply(t, clerk.KindSubscriptionItemCreated, &clerk.SubscriptionItemPayload{
		ID: "si_str", Subscription: "s1", Plan: clerk.PlanRef{ID: "plan_basic"},
	})
	quantity := 3
	f.apply(t, clerk.KindSubscriptionItemCreated, &clerk.SubscriptionItemPayload{
		ID: "si_obj", Subscription: "s1", Quantity: &quantity,
		Plan: clerk.PlanRef{ID: "plan_pro", Object: &clerk.Plan{
			ID: "plan_pro", Nickname: "Pro", Name: "Professional", Amount: int64Ptr(1999), Currency: "eur", Interval: "year",
		}},
	})

	str, err := f.repos.SubscriptionItem.GetByClerkID(f.ctx, "si_str")
	require.NoError(t, err)
	assert.Equal(t, "plan_basic", str.PlanID)
	assert.Empty(t, str.PlanName)
	assert.Nil(t, str.UnitAmount)
	assert.Nil(t, str.Interval)
	assert.Equal(t, 1, str.Quantity)
	assert.Equal(t, models.ItemStatusActive, str.Status)

	obj, err := f.repos.SubscriptionItem.GetByClerkID(f.ctx, "si_obj")
	require.NoError(t, err)
	assert.Equal(t, "plan_pro", obj.PlanID)
	assert.Equal(t, "Pro", obj.PlanName)
	require.NotNil(t, obj.UnitAmount)
	assert.Equal(t, int64(1999), *obj.UnitAmount)
	assert.Equal(t, "eur", obj.Currency)
	require.NotNil(t, obj.Interval)
	assert.Equal(t, models.BillingIntervalYear, *obj.Interval)
	assert.Equal(t, 3, obj.Quantity)

	f.apply(t, clerk.KindSubscriptionItemCanceled, &clerk.SubscriptionItemPayload{ID: "si_obj", Subscription: "s1"})
	obj, err = f.repos.SubscriptionItem.GetByClerkID(f.ctx, "si_obj")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCanceled, obj.Status)
	assert.Equal(t, "plan_pro", obj.PlanID)
}

func TestSubscriptionItemRequiresPlanOnCreate(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})

	_, err := f.svc.Apply(f.ctx, clerk.Event{Type: clerk.KindSubscriptionItemCreated, Data: &clerk.SubscriptionItemPayload{ID: "si1", Subscription: "s1"}})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPaymentAttemptWithoutPriorCreation(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	res := f.apply(t, clerk.KindPaymentAttemptUpdated, &clerk.PaymentAttemptPayload{ID: "p1", Subscription: "s_missing"})
	assert.Equal(t, OutcomeCreated, res.Outcome)

	p, err := f.repos.PaymentAttempt.GetByClerkID(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Amount)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, models.PaymentStatusProcessing, p.Status)
	assert.Nil(t, p.SubscriptionID)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.AttemptedAt.UTC())
	assert.Equal(t, int64(1), f.count(t, &models.PaymentAttempt{}))
}

func TestPaymentAttemptOverwrite(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})

	f.apply(t, clerk.KindPaymentAttemptCreated, &clerk.PaymentAttemptPayload{
		ID: "p1", Subscription: "s1", Amount: int64Ptr(1999), Currency: "usd", Invoice: "in_1", Created: int64Ptr(1700000000),
	})
	res := f.apply(t, clerk.KindPaymentAttemptUpdated, &clerk.PaymentAttemptPayload{
		ID: "p1", Amount: int64Ptr(1999), Status: "failed", FailureCode: "card_declined", FailureReason: "Your card was declined.",
	})
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	sub, err := f.repos.Subscription.GetByClerkID(f.ctx, "s1")
	require.NoError(t, err)
	p, err := f.repos.PaymentAttempt.GetByClerkID(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Equal(t, "card_declined", p.FailureCode)
	assert.Equal(t, "in_1", p.InvoiceID)
	require.NotNil(t, p.SubscriptionID)
	assert.Equal(t, sub.ID, *p.SubscriptionID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), p.AttemptedAt.UTC())
	assert.Equal(t, int64(1), f.count(t, &models.PaymentAttempt{}))
}

func TestUnknownKindIsIgnored(t *testing.T) {
	f := newFixture(t)
	evt, err := clerk.ParseEvent("msg", []byte(`{"type":"session.created","data":{"id":"sess_1"}}`))
	require.NoError(t, err)

	res, err := f.svc.Apply(f.ctx, evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Equal(t, "sess_1", res.ExternalID)
}

func TestStoreFailureIsStoreError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&models.User{}))

	_, err := f.svc.Apply(f.ctx, clerk.Event{Type: clerk.KindUserCreated, Data: userPayload("u1", "a@example.com", false)})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSubscriberTagConsistency(t *testing.T) {
	f := newFixture(t)
	f.apply(t, clerk.KindUserCreated, userPayload("u1", "a@example.com", false))
	f.apply(t, clerk.KindOrganizationCreated, orgPayload("o1"))

	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s1", Customer: "u1"})
	f.apply(t, clerk.KindSubscriptionCreated, &clerk.SubscriptionPayload{ID: "s2", Customer: "o1"})
	// moves s1 to the organization
	f.apply(t, clerk.KindSubscriptionUpdated, &clerk.SubscriptionPayload{ID: "s1", Customer: "o1"})
	f.apply(t, clerk.KindSubscriptionUpdated, &clerk.SubscriptionPayload{ID: "s2", Customer: "unknown"})

	var subs []models.Subscription
	require.NoError(t, f.db.Find(&subs).Error)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.NoError(t, sub.CheckSubscriber(), sub.ClerkSubscriptionID)
		assert.Equal(t, models.SubscriberTypeOrganization, sub.SubscriberType)
	}
}
