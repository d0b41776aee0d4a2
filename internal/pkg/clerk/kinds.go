package clerk

import "strings"

// Kind is the provider's event type, e.g. "user.created".
type Kind string

const (
	KindUserCreated Kind = "user.created"
	KindUserUpdated Kind = "user.updated"
	KindUserDeleted Kind = "user.deleted"

	KindOrganizationCreated Kind = "organization.created"
	KindOrganizationUpdated Kind = "organization.updated"
	KindOrganizationDeleted Kind = "organization.deleted"

	KindMembershipCreated Kind = "organizationMembership.created"
	KindMembershipUpdated Kind = "organizationMembership.updated"
	KindMembershipDeleted Kind = "organizationMembership.deleted"

	KindSubscriptionCreated Kind = "subscription.created"
	KindSubscriptionUpdated Kind = "subscription.updated"
	KindSubscriptionActive  Kind = "subscription.active"
	KindSubscriptionPastDue Kind = "subscription.past_due"

	KindSubscriptionItemCreated    Kind = "subscriptionItem.created"
	KindSubscriptionItemUpdated    Kind = "subscriptionItem.updated"
	KindSubscriptionItemActive     Kind = "subscriptionItem.active"
	KindSubscriptionItemCanceled   Kind = "subscriptionItem.canceled"
	KindSubscriptionItemUpcoming   Kind = "subscriptionItem.upcoming"
	KindSubscriptionItemEnded      Kind = "subscriptionItem.ended"
	KindSubscriptionItemAbandoned  Kind = "subscriptionItem.abandoned"
	KindSubscriptionItemIncomplete Kind = "subscriptionItem.incomplete"
	KindSubscriptionItemPastDue    Kind = "subscriptionItem.past_due"

	KindPaymentAttemptCreated Kind = "paymentAttempt.created"
	KindPaymentAttemptUpdated Kind = "paymentAttempt.updated"
)

// Event families, the part of the kind before the dot.
const (
	FamilyUser             = "user"
	FamilyOrganization     = "organization"
	FamilyMembership       = "organizationMembership"
	FamilySubscription     = "subscription"
	FamilySubscriptionItem = "subscriptionItem"
	FamilyPaymentAttempt   = "paymentAttempt"
)

var supportedKinds = []Kind{
	KindUserCreated, KindUserUpdated, KindUserDeleted,
	KindOrganizationCreated, KindOrganizationUpdated, KindOrganizationDeleted,
	KindMembershipCreated, KindMembershipUpdated, KindMembershipDeleted,
	KindSubscriptionCreated, KindSubscriptionUpdated, KindSubscriptionActive, KindSubscriptionPastDue,
	KindSubscriptionItemCreated, KindSubscriptionItemUpdated, KindSubscriptionItemActive,
	KindSubscriptionItemCanceled, KindSubscriptionItemUpcoming, KindSubscriptionItemEnded,
	KindSubscriptionItemAbandoned, KindSubscriptionItemIncomplete, KindSubscriptionItemPastDue,
	KindPaymentAttemptCreated, KindPaymentAttemptUpdated,
}

// SupportedKinds returns every event kind the service applies, in a stable order.
func SupportedKinds() []Kind {
	out := make([]Kind, len(supportedKinds))
	copy(out, supportedKinds)
	return out
}

// IsSupported reports whether k is one of SupportedKinds.
func (k Kind) IsSupported() bool {
	for _, s := range supportedKinds {
		if s == k {
			return true
		}
	}
	return false
}

// Family returns the entity family of the kind ("user" for "user.created").
func (k Kind) Family() string {
	family, _, _ := strings.Cut(string(k), ".")
	return family
}

// Suffix returns the transition part of the kind ("past_due" for
// "subscription.past_due").
func (k Kind) Suffix() string {
	_, suffix, _ := strings.Cut(string(k), ".")
	return suffix
}

// IsCreated reports whether the kind is a creation event.
func (k Kind) IsCreated() bool {
	return k.Suffix() == "created"
}

func (k Kind) String() string {
	return string(k)
}
