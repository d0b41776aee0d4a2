package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"gorm.io/gorm"
)

// CRUD is the operation set the admin surface needs for any collection.
type CRUD[T any] interface {
	Create(ctx context.Context, row *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	CRUD[models.User]
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token, email string, now time.Time) (*models.User, error)
}

// OrganizationRepository defines the interface for organization operations
type OrganizationRepository interface {
	CRUD[models.Organization]
	GetByClerkID(ctx context.Context, clerkID string) (*models.Organization, error)
}

// MembershipRepository defines the interface for organization membership operations
type MembershipRepository interface {
	CRUD[models.OrganizationMembership]
	GetByClerkID(ctx context.Context, clerkMembershipID string) (*models.OrganizationMembership, error)
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	CRUD[models.Subscription]
	GetByClerkID(ctx context.Context, clerkSubscriptionID string) (*models.Subscription, error)
}

// SubscriptionItemRepository defines the interface for subscription item operations
type SubscriptionItemRepository interface {
	CRUD[models.SubscriptionItem]
	GetByClerkID(ctx context.Context, clerkItemID string) (*models.SubscriptionItem, error)
}

// PaymentAttemptRepository defines the interface for payment attempt operations
type PaymentAttemptRepository interface {
	CRUD[models.PaymentAttempt]
	GetByClerkID(ctx context.Context, clerkPaymentID string) (*models.PaymentAttempt, error)
	Upsert(ctx context.Context, attempt *models.PaymentAttempt) error
}

// AdminRepository defines the interface for administrator accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

// WebhookEventRepository defines the interface for the webhook delivery log
type WebhookEventRepository interface {
	Record(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, outcome, processingError string) error
	CountByType(ctx context.Context) (map[string]int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User             UserRepository
	Organization     OrganizationRepository
	Membership       MembershipRepository
	Subscription     SubscriptionRepository
	SubscriptionItem SubscriptionItemRepository
	PaymentAttempt   PaymentAttemptRepository
	Admin            AdminRepository
	WebhookEvent     WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:             NewUserRepository(db),
		Organization:     NewOrganizationRepository(db),
		Membership:       NewMembershipRepository(db),
		Subscription:     NewSubscriptionRepository(db),
		SubscriptionItem: NewSubscriptionItemRepository(db),
		PaymentAttempt:   NewPaymentAttemptRepository(db),
		Admin:            NewAdminRepository(db),
		WebhookEvent:     NewWebhookEventRepository(db),
	}
}
