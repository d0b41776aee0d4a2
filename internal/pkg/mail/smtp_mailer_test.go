package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

type recordedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func TestSendBuildsMessage(t *testing.T) {
	var got recordedMail
	m := newSMTPMailer(config.SMTP{Host: "smtp.example.com", Port: "587", Sender: "hello@example.com"},
		func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			got = recordedMail{addr: addr, from: from, to: to, msg: string(msg)}
			return nil
		})

	require.NoError(t, m.Send(context.Background(), "a@example.com", "Subject line", "<p>hi</p>"))

	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "hello@example.com", got.from)
	assert.Equal(t, []string{"a@example.com"}, got.to)
	assert.True(t, strings.HasPrefix(got.msg, "From: hello@example.com\r\nTo: a@example.com\r\nSubject: Subject line\r\n"))
	assert.True(t, strings.HasSuffix(got.msg, "<p>hi</p>"))
}

func TestSendWithoutHost(t *testing.T) {
	m := NewSMTPMailer(config.SMTP{})
	assert.ErrorIs(t, m.Send(context.Background(), "a@example.com", "s", "b"), ErrNotConfigured)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	m := newSMTPMailer(config.SMTP{Host: "smtp.example.com", Port: "25"},
		func(string, smtp.Auth, string, []string, []byte) error {
			calls++
			return errors.New("connection refused")
		})

	for i := 0; i < 3; i++ {
		assert.Error(t, m.Send(context.Background(), "a@example.com", "s", "b"))
	}
	err := m.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, calls)
}

func TestTemplatesEscape(t *testing.T) {
	body, err := RenderWelcome(WelcomeData{FirstName: "<Ada>", Email: "a@example.com", SignInURL: "https://app.example.com/sign-in"})
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;Ada&gt;")
	assert.Contains(t, body, "https://app.example.com/sign-in")

	body, err = RenderVerification(VerificationData{Email: "a@example.com", Link: "https://x.test/verify?token=t&email=a%40example.com", ValidFor: "24 hours"})
	require.NoError(t, err)
	assert.Contains(t, body, "24 hours")
	assert.Contains(t, body, "token=t&amp;email=a%40example.com")
}
