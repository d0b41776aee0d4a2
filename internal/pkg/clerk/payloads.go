package clerk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is one of the typed event bodies below.
type Payload interface {
	// ExternalID is the provider id of the entity the event is about.
	ExternalID() string
}

// Verification is the provider's verification sub-object.
type Verification struct {
	Status string `json:"status"`
}

func (v *Verification) IsVerified() bool {
	return v != nil && v.Status == "verified"
}

type EmailAddress struct {
	ID           string        `json:"id"`
	EmailAddress string        `json:"email_address"`
	Verification *Verification `json:"verification"`
}

type PhoneNumber struct {
	ID           string        `json:"id"`
	PhoneNumber  string        `json:"phone_number"`
	Verification *Verification `json:"verification"`
}

// UserPayload is the body of user.created and user.updated. Timestamps are
// unix milliseconds.
type UserPayload struct {
	ID                    string          `json:"id"`
	EmailAddresses        []EmailAddress  `json:"email_addresses"`
	PrimaryEmailAddressID string          `json:"primary_email_address_id"`
	PhoneNumbers          []PhoneNumber   `json:"phone_numbers"`
	PrimaryPhoneNumberID  string          `json:"primary_phone_number_id"`
	FirstName             string          `json:"first_name"`
	LastName              string          `json:"last_name"`
	ImageURL              string          `json:"image_url"`
	CreatedAt             int64           `json:"created_at"`
	LastSignInAt          *int64          `json:"last_sign_in_at"`
	PublicMetadata        json.RawMessage `json:"public_metadata"`
}

func (p *UserPayload) ExternalID() string { return p.ID }

// PrimaryEmail returns the email address referenced as primary, if present.
func (p *UserPayload) PrimaryEmail() (EmailAddress, bool) {
	for _, e := range p.EmailAddresses {
		if e.ID == p.PrimaryEmailAddressID && e.EmailAddress != "" {
			return e, true
		}
	}
	return EmailAddress{}, false
}

// PrimaryPhone returns the phone number referenced as primary, if present.
func (p *UserPayload) PrimaryPhone() (PhoneNumber, bool) {
	if p.PrimaryPhoneNumberID == "" {
		return PhoneNumber{}, false
	}
	for _, n := range p.PhoneNumbers {
		if n.ID == p.PrimaryPhoneNumberID {
			return n, true
		}
	}
	return PhoneNumber{}, false
}

// DeletedPayload is the body of every *.deleted kind.
type DeletedPayload struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (p *DeletedPayload) ExternalID() string { return p.ID }

type OrganizationPayload struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Slug                  string          `json:"slug"`
	ImageURL              string          `json:"image_url"`
	CreatedBy             string          `json:"created_by"`
	MaxAllowedMemberships *int            `json:"max_allowed_memberships"`
	PublicMetadata        json.RawMessage `json:"public_metadata"`
	PrivateMetadata       json.RawMessage `json:"private_metadata"`
}

func (p *OrganizationPayload) ExternalID() string { return p.ID }

type MembershipOrganization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PublicUserData struct {
	UserID     string `json:"user_id"`
	Identifier string `json:"identifier"`
}

type MembershipPayload struct {
	ID             string                 `json:"id"`
	Organization   MembershipOrganization `json:"organization"`
	PublicUserData PublicUserData         `json:"public_user_data"`
	Role           string                 `json:"role"`
	PublicMetadata json.RawMessage        `json:"public_metadata"`
}

func (p *MembershipPayload) ExternalID() string { return p.ID }

// SubscriptionPayload is the body of subscription.* kinds. Timestamps are unix
// seconds. Customer is the external id of a user or an organization.
type SubscriptionPayload struct {
	ID                 string          `json:"id"`
	Customer           string          `json:"customer"`
	Status             string          `json:"status"`
	CurrentPeriodStart *int64          `json:"current_period_start"`
	CurrentPeriodEnd   *int64          `json:"current_period_end"`
	TrialStart         *int64          `json:"trial_start"`
	TrialEnd           *int64          `json:"trial_end"`
	CancelAtPeriodEnd  bool            `json:"cancel_at_period_end"`
	CanceledAt         *int64          `json:"canceled_at"`
	Metadata           json.RawMessage `json:"metadata"`
}

func (p *SubscriptionPayload) ExternalID() string { return p.ID }

// Plan is the inline plan object of a subscription item.
type Plan struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// PlanRef holds a plan given either as a bare id string or as an object.
type PlanRef struct {
	ID     string
	Object *Plan
}

func (r *PlanRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = PlanRef{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = PlanRef{ID: id}
		return nil
	case data[0] == '{':
		var plan Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			return err
		}
		*r = PlanRef{ID: plan.ID, Object: &plan}
		return nil
	default:
		return fmt.Errorf("plan must be a string or an object, got %s", string(data))
	}
}

// DisplayName prefers the plan nickname over its name.
func (r PlanRef) DisplayName() string {
	if r.Object == nil {
		return ""
	}
	if r.Object.Nickname != "" {
		return r.Object.Nickname
	}
	return r.Object.Name
}

type SubscriptionItemPayload struct {
	ID           string          `json:"id"`
	Subscription string          `json:"subscription"`
	Plan         PlanRef         `json:"plan"`
	Quantity     *int            `json:"quantity"`
	Status       string          `json:"status"`
	Metadata     json.RawMessage `json:"metadata"`
}

func (p *SubscriptionItemPayload) ExternalID() string { return p.ID }

// PaymentAttemptPayload is the body of paymentAttempt.* kinds. Created is in
// unix seconds.
type PaymentAttemptPayload struct {
	ID                string          `json:"id"`
	Subscription      string          `json:"subscription"`
	Amount            *int64          `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failure_reason"`
	FailureCode       string          `json:"failure_code"`
	Invoice           string          `json:"invoice"`
	Charge            string          `json:"charge"`
	PaymentMethodType string          `json:"payment_method_type"`
	Created           *int64          `json:"created"`
	Metadata          json.RawMessage `json:"metadata"`
}

func (p *PaymentAttemptPayload) ExternalID() string { return p.ID }

// UnknownPayload carries the body of kinds the service does not apply.
type UnknownPayload struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"-"`
}

func (p *UnknownPayload) ExternalID() string { return p.ID }

// Millis converts a unix-millisecond timestamp; nil and zero yield nil.
func Millis(ms *int64) *time.Time {
	if ms == nil || *ms == 0 {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

// Seconds converts a unix-second timestamp; nil and zero yield nil.
func Seconds(s *int64) *time.Time {
	if s == nil || *s == 0 {
		return nil
	}
	t := time.Unix(*s, 0).UTC()
	return &t
}
