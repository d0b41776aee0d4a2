package clerk

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// Header names of a signed delivery.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Verifier checks svix signatures with the shared webhook secret.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier returns ErrSecretNotConfigured for an empty secret.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &Verifier{wh: wh}, nil
}

// CheckHeaders fails with *AuthenticationError when any signature header is
// missing.
func CheckHeaders(h http.Header) error {
	for _, name := range []string{HeaderID, HeaderTimestamp, HeaderSignature} {
		if strings.TrimSpace(h.Get(name)) == "" {
			return &AuthenticationError{Reason: "missing " + name + " header"}
		}
	}
	return nil
}

// Verify authenticates the raw body against the signature headers.
func (v *Verifier) Verify(body []byte, h http.Header) error {
	if err := CheckHeaders(h); err != nil {
		return err
	}
	if err := v.wh.Verify(body, h); err != nil {
		return &AuthenticationError{Reason: "invalid signature", Err: err}
	}
	return nil
}

// Sign returns the headers a provider delivery of body would carry.
func (v *Verifier) Sign(id string, ts time.Time, body []byte) (http.Header, error) {
	signature, err := v.wh.Sign(id, ts, body)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set(HeaderID, id)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSignature, signature)
	return h, nil
}
