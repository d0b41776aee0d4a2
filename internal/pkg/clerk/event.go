package clerk

import (
	"encoding/json"
	"errors"
)

// Event is a decoded delivery. Data holds one of the *Payload types matching
// Type; unsupported kinds carry *UnknownPayload.
type Event struct {
	// ID is the delivery id from the svix-id header.
	ID   string
	Type Kind
	Data Payload
}

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a verified body into an Event. Failures are *DecodeError.
func ParseEvent(id string, body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, &DecodeError{Err: err}
	}
	if env.Type == "" {
		return Event{}, &DecodeError{Err: errors.New("missing event type")}
	}
	if !env.Type.IsSupported() {
		unknown := &UnknownPayload{Raw: env.Data}
		// best effort, the id is only used for logging
		_ = json.Unmarshal(env.Data, unknown)
		return Event{ID: id, Type: env.Type, Data: unknown}, nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return Event{}, &DecodeError{Kind: env.Type, Err: errors.New("missing event data")}
	}

	family := env.Type.Family()
	deleted := env.Type.Suffix() == "deleted"

	var data Payload
	switch {
	case deleted && (family == FamilyUser || family == FamilyOrganization || family == FamilyMembership):
		data = &DeletedPayload{}
	case family == FamilyUser:
		data = &UserPayload{}
	case family == FamilyOrganization:
		data = &OrganizationPayload{}
	case family == FamilyMembership:
		data = &MembershipPayload{}
	case family == FamilySubscription:
		data = &SubscriptionPayload{}
	case family == FamilySubscriptionItem:
		data = &SubscriptionItemPayload{}
	case family == FamilyPaymentAttempt:
		data = &PaymentAttemptPayload{}
	}

	if data == nil {
		return Event{}, &DecodeError{Kind: env.Type, Err: errors.New("no payload type for kind")}
	}

	if err := json.Unmarshal(env.Data, data); err != nil {
		return Event{}, &DecodeError{Kind: env.Type, Err: err}
	}
	if data.ExternalID() == "" {
		return Event{}, &DecodeError{Kind: env.Type, Err: errors.New("missing data.id")}
	}

	return Event{ID: id, Type: env.Type, Data: data}, nil
}
