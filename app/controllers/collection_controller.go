package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/access"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Fields clients may never write through the collection API.
var readOnlyFields = []string{"id", "created_at", "updated_at"}

type record[T any] interface {
	*T
	Validate() error
}

// collection adapts one repository to the generic REST handlers.
type collection interface {
	list(c *fiber.Ctx) error
	get(c *fiber.Ctx, id uint) error
	create(c *fiber.Ctx) error
	update(c *fiber.Ctx, id uint) error
	remove(c *fiber.Ctx, id uint) error
}

type crudCollection[T any, PT record[T]] struct {
	repo repository.CRUD[T]
}

func newCollection[T any, PT record[T]](repo repository.CRUD[T]) collection {
	return &crudCollection[T, PT]{repo: repo}
}

func (h *crudCollection[T, PT]) list(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	ctx := c.UserContext()
	rows, err := h.repo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return storeFailure(c, "list", err)
	}
	total, err := h.repo.Count(ctx)
	if err != nil {
		return storeFailure(c, "count", err)
	}

	return c.JSON(fiber.Map{
		"docs":      rows,
		"totalDocs": total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *crudCollection[T, PT]) get(c *fiber.Ctx, id uint) error {
	row, err := h.repo.GetByID(c.UserContext(), id)
	if err != nil {
		return storeFailure(c, "get", err)
	}
	return c.JSON(row)
}

func (h *crudCollection[T, PT]) create(c *fiber.Ctx) error {
	row := PT(new(T))
	if err := decodeWritable(c.Body(), row); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := row.Validate(); err != nil {
		return validationFailure(c, err)
	}
	if err := h.repo.Create(c.UserContext(), row); err != nil {
		return storeFailure(c, "create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// update merges the JSON body into the stored row; absent fields keep their
// values.
func (h *crudCollection[T, PT]) update(c *fiber.Ctx, id uint) error {
	ctx := c.UserContext()
	stored, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return storeFailure(c, "get", err)
	}
	row := PT(stored)
	if err := decodeWritable(c.Body(), row); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := row.Validate(); err != nil {
		return validationFailure(c, err)
	}
	if err := h.repo.Update(ctx, row); err != nil {
		return storeFailure(c, "update", err)
	}
	return c.JSON(row)
}

func (h *crudCollection[T, PT]) remove(c *fiber.Ctx, id uint) error {
	if err := h.repo.Delete(c.UserContext(), id); err != nil {
		return storeFailure(c, "delete", err)
	}
	return c.JSON(fiber.Map{"id": id, "deleted": true})
}

// CollectionController serves /api/:collection for the mirrored entities.
// Access is enforced by the router before a handler runs.
type CollectionController struct {
	collections map[string]collection
	onChange    func(ctx context.Context)
}

// NewCollectionController registers every mirrored collection. onChange runs
// after successful writes and may be nil.
func NewCollectionController(repos *repository.Repositories, onChange func(ctx context.Context)) *CollectionController {
	if onChange == nil {
		onChange = func(context.Context) {}
	}
	return &CollectionController{
		collections: map[string]collection{
			access.CollectionUsers:             newCollection[models.User](repos.User),
			access.CollectionOrganizations:     newCollection[models.Organization](repos.Organization),
			access.CollectionMemberships:       newCollection[models.OrganizationMembership](repos.Membership),
			access.CollectionSubscriptions:     newCollection[models.Subscription](repos.Subscription),
			access.CollectionSubscriptionItems: newCollection[models.SubscriptionItem](repos.SubscriptionItem),
			access.CollectionPaymentAttempts:   newCollection[models.PaymentAttempt](repos.PaymentAttempt),
		},
		onChange: onChange,
	}
}

func (cc *CollectionController) lookup(c *fiber.Ctx) (collection, bool) {
	h, ok := cc.collections[c.Params("collection")]
	return h, ok
}

func (cc *CollectionController) HandleList(c *fiber.Ctx) error {
	h, ok := cc.lookup(c)
	if !ok {
		return unknownCollection(c)
	}
	return h.list(c)
}

func (cc *CollectionController) HandleGet(c *fiber.Ctx) error {
	h, ok := cc.lookup(c)
	if !ok {
		return unknownCollection(c)
	}
	id, ok := parseID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid id")
	}
	return h.get(c, id)
}

func (cc *CollectionController) HandleCreate(c *fiber.Ctx) error {
	h, ok := cc.lookup(c)
	if !ok {
		return unknownCollection(c)
	}
	if err := h.create(c); err != nil {
		return err
	}
	cc.changed(c)
	return nil
}

func (cc *CollectionController) HandleUpdate(c *fiber.Ctx) error {
	h, ok := cc.lookup(c)
	if !ok {
		return unknownCollection(c)
	}
	id, ok := parseID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid id")
	}
	if err := h.update(c, id); err != nil {
		return err
	}
	cc.changed(c)
	return nil
}

func (cc *CollectionController) HandleDelete(c *fiber.Ctx) error {
	h, ok := cc.lookup(c)
	if !ok {
		return unknownCollection(c)
	}
	id, ok := parseID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid id")
	}
	if err := h.remove(c, id); err != nil {
		return err
	}
	cc.changed(c)
	return nil
}

func (cc *CollectionController) changed(c *fiber.Ctx) {
	if c.Response().StatusCode() < fiber.StatusBadRequest {
		cc.onChange(c.UserContext())
	}
}

// decodeWritable unmarshals body into row after dropping read-only fields.
// Keys are compared case-insensitively, the way encoding/json matches them.
func decodeWritable(body []byte, row interface{}) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}
	for key := range fields {
		if isReadOnlyField(key) {
			delete(fields, key)
		}
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(clean, row)
}

func isReadOnlyField(key string) bool {
	for _, name := range readOnlyFields {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

func unknownCollection(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown collection")
}

func validationFailure(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": err.Error(),
			"fields":  fields,
		})
	}
	return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
}

func storeFailure(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Document not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return jsonError(c, fiber.StatusConflict, "conflict", "A document with the same unique value already exists")
	case errors.Is(err, models.ErrSubscriberMismatch), errors.Is(err, repository.ErrMissingReference):
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	default:
		log.Errorw("collection store operation failed", "op", op, "path", c.Path(), "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Store operation failed")
	}
}
