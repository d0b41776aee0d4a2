package counter

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	deliveriesKey = "webhooks:counters:deliveries"
	outcomesKey   = "webhooks:counters:outcomes"
)

// WebhookCounter keeps per-event-kind delivery counts and per-outcome counts
// in Redis hashes. A nil *WebhookCounter is valid and counts nothing.
type WebhookCounter struct {
	rdb *redis.Client
}

func NewWebhookCounter(rdb *redis.Client) *WebhookCounter {
	return &WebhookCounter{rdb: rdb}
}

// AddDelivery increments the delivery counter for an event kind.
func (w *WebhookCounter) AddDelivery(ctx context.Context, kind string) error {
	if w == nil {
		return nil
	}
	return w.rdb.HIncrBy(ctx, deliveriesKey, kind, 1).Err()
}

// AddOutcome increments the counter for a processing outcome.
func (w *WebhookCounter) AddOutcome(ctx context.Context, outcome string) error {
	if w == nil {
		return nil
	}
	return w.rdb.HIncrBy(ctx, outcomesKey, outcome, 1).Err()
}

// Deliveries returns the delivery count per event kind.
func (w *WebhookCounter) Deliveries(ctx context.Context) (map[string]int64, error) {
	return w.read(ctx, deliveriesKey)
}

// Outcomes returns the count per processing outcome.
func (w *WebhookCounter) Outcomes(ctx context.Context) (map[string]int64, error) {
	return w.read(ctx, outcomesKey)
}

func (w *WebhookCounter) read(ctx context.Context, key string) (map[string]int64, error) {
	out := map[string]int64{}
	if w == nil {
		return out, nil
	}
	data, err := w.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[k] = n
	}
	return out, nil
}
