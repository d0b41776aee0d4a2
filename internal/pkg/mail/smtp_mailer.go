package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sony/gobreaker/v2"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp is not configured")

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends emails via SMTP. Consecutive failures open a circuit
// breaker so an unreachable server fails fast instead of blocking requests.
type SMTPMailer struct {
	cfg     config.SMTP
	send    sendFunc
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return newSMTPMailer(cfg, smtp.SendMail)
}

func newSMTPMailer(cfg config.SMTP, send sendFunc) *SMTPMailer {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &SMTPMailer{
		cfg:     cfg,
		send:    send,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sender := m.cfg.Sender
	if sender == "" {
		sender = "no-reply@localhost"
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.send(addr, auth, sender, []string{to}, msg)
	})
	if err != nil {
		log.Warnw("SMTP send failed", "to", to, "addr", addr, "error", err)
		return err
	}
	log.Infow("Email sent", "to", to, "addr", addr)
	return nil
}
