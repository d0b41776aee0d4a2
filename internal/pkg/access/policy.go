package access

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/usercontext"
)

// Operation is one of the four collection operations.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Collection names as they appear in routes.
const (
	CollectionUsers             = "users"
	CollectionOrganizations     = "organizations"
	CollectionMemberships       = "organization-memberships"
	CollectionSubscriptions     = "subscriptions"
	CollectionSubscriptionItems = "subscription-items"
	CollectionPaymentAttempts   = "payment-attempts"
)

// Policy decides whether a principal may run an operation.
type Policy interface {
	Allow(op Operation, p usercontext.Principal) bool
}

type adminOnly struct{}

// AdminOnly requires an administrator for every operation.
var AdminOnly Policy = adminOnly{}

func (adminOnly) Allow(_ Operation, p usercontext.Principal) bool {
	return p.IsAdmin
}

type publicRead struct{}

// PublicRead lets anyone read and requires an administrator for mutations.
var PublicRead Policy = publicRead{}

func (publicRead) Allow(op Operation, p usercontext.Principal) bool {
	return op == OpRead || p.IsAdmin
}

var policies = map[string]Policy{
	CollectionUsers:             PublicRead,
	CollectionOrganizations:     PublicRead,
	CollectionMemberships:       AdminOnly,
	CollectionSubscriptions:     AdminOnly,
	CollectionSubscriptionItems: AdminOnly,
	CollectionPaymentAttempts:   AdminOnly,
}

// For returns the policy of a collection. Unknown collections get AdminOnly.
func For(collection string) Policy {
	if p, ok := policies[collection]; ok {
		return p
	}
	return AdminOnly
}

// Allowed checks the collection policy for op and principal.
func Allowed(collection string, op Operation, p usercontext.Principal) bool {
	return For(collection).Allow(op, p)
}

// Enforce is a fiber handler rejecting callers the collection policy denies.
// The collection is taken from the :collection route parameter when
// collection is empty, and the operation from the request method when op is
// empty.
func Enforce(collection string, op Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := collection
		if name == "" {
			name = c.Params("collection")
		}
		operation := op
		if operation == "" {
			operation = OperationForMethod(c.Method())
		}
		principal := usercontext.Get(c)
		if Allowed(name, operation, principal) {
			return c.Next()
		}
		if !principal.IsAdmin && principal.AdminID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin login required",
			})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "operation not permitted",
		})
	}
}

// OperationForMethod maps an HTTP method onto a collection operation.
func OperationForMethod(method string) Operation {
	switch method {
	case fiber.MethodPost:
		return OpCreate
	case fiber.MethodPatch, fiber.MethodPut:
		return OpUpdate
	case fiber.MethodDelete:
		return OpDelete
	default:
		return OpRead
	}
}
