package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerk"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/clerksync"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/constants"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/metrics/counter"
)

// WebhookController receives identity-provider deliveries. Responses on the
// POST path carry no body; the status code is the whole answer.
type WebhookController struct {
	verifier    *clerk.Verifier
	verifierErr error
	sync        *clerksync.Service
	events      repository.WebhookEventRepository
	counter     *counter.WebhookCounter
	onChange    func(ctx context.Context)
	now         func() time.Time
}

// NewWebhookController builds the controller. An empty or malformed secret is
// not fatal; deliveries are then answered with 500. onChange runs after an
// event created or deleted a row and may be nil.
func NewWebhookController(secret string, sync *clerksync.Service, events repository.WebhookEventRepository, wc *counter.WebhookCounter, onChange func(ctx context.Context)) *WebhookController {
	if onChange == nil {
		onChange = func(context.Context) {}
	}
	v, err := clerk.NewVerifier(secret)
	if err != nil && !errors.Is(err, clerk.ErrSecretNotConfigured) {
		log.Errorw("webhook secret is malformed", "error", err)
	}
	return &WebhookController{
		verifier:    v,
		verifierErr: err,
		sync:        sync,
		events:      events,
		counter:     wc,
		onChange:    onChange,
		now:         time.Now,
	}
}

// HandleReceive verifies, decodes and applies one delivery.
func (w *WebhookController) HandleReceive(c *fiber.Ctx) error {
	body := append([]byte(nil), c.BodyRaw()...)
	headers := http.Header{}
	for _, name := range []string{clerk.HeaderID, clerk.HeaderTimestamp, clerk.HeaderSignature} {
		headers.Set(name, c.Get(name))
	}
	eventID := headers.Get(clerk.HeaderID)

	if err := clerk.CheckHeaders(headers); err != nil {
		log.Warnw("webhook rejected", "eventId", eventID, "error", err)
		return emptyStatus(c, fiber.StatusBadRequest)
	}
	if w.verifier == nil {
		log.Errorw("webhook secret not configured", "eventId", eventID, "error", w.verifierErr)
		return emptyStatus(c, fiber.StatusInternalServerError)
	}
	if err := w.verifier.Verify(body, headers); err != nil {
		log.Warnw("webhook signature rejected", "eventId", eventID, "error", err)
		return emptyStatus(c, fiber.StatusBadRequest)
	}

	evt, err := clerk.ParseEvent(eventID, body)
	if err != nil {
		log.Warnw("webhook payload rejected", "eventId", eventID, "error", err)
		return emptyStatus(c, fiber.StatusBadRequest)
	}

	ctx := c.UserContext()
	stored := w.record(c, evt, body)
	if err := w.counter.AddDelivery(ctx, evt.Type.String()); err != nil {
		log.Warnw("webhook counter failed", "eventId", eventID, "error", err)
	}

	res, err := w.sync.Apply(ctx, evt)
	outcome := string(res.Outcome)
	if err != nil {
		outcome = "error"
	}
	if stored != nil {
		errText := ""
		if err != nil {
			errText = err.Error()
		}
		if merr := w.events.MarkProcessed(ctx, stored.ID, outcome, errText); merr != nil {
			log.Warnw("marking webhook event failed", "eventId", eventID, "error", merr)
		}
	}
	if cerr := w.counter.AddOutcome(ctx, outcome); cerr != nil {
		log.Warnw("webhook outcome counter failed", "eventId", eventID, "error", cerr)
	}

	if err == nil && (res.Outcome == clerksync.OutcomeCreated || res.Outcome == clerksync.OutcomeDeleted) {
		w.onChange(ctx)
	}

	var validationErr *clerksync.ValidationError
	switch {
	case err == nil:
		return emptyStatus(c, fiber.StatusOK)
	case errors.As(err, &validationErr):
		return emptyStatus(c, fiber.StatusBadRequest)
	default:
		return emptyStatus(c, fiber.StatusInternalServerError)
	}
}

// record writes the audit row. Failures are logged and never block the
// delivery.
func (w *WebhookController) record(c *fiber.Ctx, evt clerk.Event, body []byte) *models.WebhookEvent {
	stored, err := w.events.Record(c.UserContext(), &models.WebhookEvent{
		Provider:        models.WebhookProviderClerk,
		ProviderEventID: evt.ID,
		EventType:       evt.Type.String(),
		PayloadJSON:     string(body),
		SignatureValid:  true,
	})
	if err != nil {
		log.Warnw("recording webhook event failed", "eventId", evt.ID, "eventType", evt.Type, "error", err)
		return nil
	}
	if stored.Deliveries > 1 {
		log.Infow("webhook redelivered", "eventId", evt.ID, "eventType", evt.Type, "deliveries", stored.Deliveries)
	}
	return stored
}

// HandleStatus lets operators check that the endpoint is reachable.
func (w *WebhookController) HandleStatus(c *fiber.Ctx) error {
	configured := w.verifier != nil
	message := "Webhook endpoint is ready. Configure this URL in your Clerk Dashboard under Webhooks."
	if !configured {
		message = "WARNING: CLERK_WEBHOOK_SECRET is not configured. Webhooks will fail."
	}

	kinds := clerk.SupportedKinds()
	supported := make([]string, 0, len(kinds))
	for _, k := range kinds {
		supported = append(supported, k.String())
	}

	return c.JSON(fiber.Map{
		"status":                  "ok",
		"endpoint":                constants.RouteClerkWebhook,
		"webhookSecretConfigured": configured,
		"message":                 message,
		"supportedEvents":         supported,
		"timestamp":               w.now().UTC().Format(time.RFC3339),
	})
}
