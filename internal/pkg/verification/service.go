package verification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/constants"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/mail"
)

// TokenTTL is how long a verification link stays valid.
const TokenTTL = 24 * time.Hour

var (
	ErrInvalidLink     = errors.New("verification link is invalid or expired")
	ErrAlreadyVerified = errors.New("email address is already verified")
)

// Service runs the email verification link flow.
type Service struct {
	users     repository.UserRepository
	mailer    mail.Sender
	publicURL string
	signInURL string
	now       func() time.Time
}

// NewService wires the flow. publicURL is the externally reachable base URL
// used in outgoing links; signInURL may be relative.
func NewService(users repository.UserRepository, mailer mail.Sender, publicURL, signInURL string) *Service {
	return &Service{
		users:     users,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		signInURL: signInURL,
		now:       time.Now,
	}
}

// Confirm consumes a verification link. The token is single use: it is
// cleared in the same write that marks the address verified. A failing
// welcome email is reported but does not undo the verification.
func (s *Service) Confirm(ctx context.Context, token, email string) error {
	token = strings.TrimSpace(token)
	email = strings.TrimSpace(email)
	if token == "" || email == "" {
		return ErrInvalidLink
	}

	now := s.now()
	user, err := s.users.GetByVerificationToken(ctx, token, email, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidLink
	}
	if err != nil {
		return fmt.Errorf("find verification token: %w", err)
	}
	if !user.IsVerificationTokenValid(token, now) {
		return ErrInvalidLink
	}

	user.ClearVerificationToken()
	user.MarkEmailVerified(now)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	log.Infow("email verified", "userId", user.ID, "clerkId", user.ClerkID)

	body, err := mail.RenderWelcome(mail.WelcomeData{
		FirstName: user.FirstName,
		Email:     user.Email,
		SignInURL: ResolveSignInURL(s.publicURL, s.signInURL),
	})
	if err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}
	if err := s.mailer.Send(ctx, user.Email, mail.SubjectWelcome, body); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}

// Issue creates a fresh verification token for the user and mails the link.
// Any earlier token is replaced.
func (s *Service) Issue(ctx context.Context, userID uint) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.EmailVerified {
		return "", ErrAlreadyVerified
	}

	token := uuid.NewString()
	expires := s.now().Add(TokenTTL)
	user.EmailVerificationToken = token
	user.EmailVerificationExpires = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	body, err := mail.RenderVerification(mail.VerificationData{
		FirstName: user.FirstName,
		Email:     user.Email,
		Link:      s.Link(token, user.Email),
		ValidFor:  "24 hours",
	})
	if err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	if err := s.mailer.Send(ctx, user.Email, mail.SubjectVerification, body); err != nil {
		return "", fmt.Errorf("send verification email: %w", err)
	}
	return token, nil
}

// Link builds the absolute verification URL for token and email.
func (s *Service) Link(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return s.publicURL + constants.RouteVerifyEmail + "?" + q.Encode()
}

// ResolveSignInURL makes a relative sign-in destination absolute against
// base. Absolute destinations are returned unchanged.
func ResolveSignInURL(base, signIn string) string {
	if signIn == "" {
		signIn = constants.DefaultSignInPath
	}
	target, err := url.Parse(signIn)
	if err != nil {
		return signIn
	}
	if target.IsAbs() {
		return target.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return target.String()
	}
	return baseURL.ResolveReference(target).String()
}
