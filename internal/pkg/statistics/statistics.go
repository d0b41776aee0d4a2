package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/access"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/cache"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/metrics/counter"
)

const (
	CacheKeyCollections = "statistics:collections"
	CacheExpiration     = time.Minute
)

// Data is the admin statistics document.
type Data struct {
	Collections       map[string]int64 `json:"collections"`
	WebhookDeliveries map[string]int64 `json:"webhook_deliveries"`
	WebhookOutcomes   map[string]int64 `json:"webhook_outcomes"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Collector gathers row counts and webhook counters. Both the cache and the
// counter are optional.
type Collector struct {
	repos   *repository.Repositories
	cache   *cache.Cache
	counter *counter.WebhookCounter
	now     func() time.Time
}

func NewCollector(repos *repository.Repositories, c *cache.Cache, wc *counter.WebhookCounter) *Collector {
	return &Collector{repos: repos, cache: c, counter: wc, now: time.Now}
}

// Collect returns the current statistics. Collection counts are cached for
// CacheExpiration; webhook counters are always read live.
func (s *Collector) Collect(ctx context.Context) (*Data, error) {
	collections, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	data := &Data{Collections: collections, GeneratedAt: s.now().UTC()}

	if s.counter != nil {
		if data.WebhookDeliveries, err = s.counter.Deliveries(ctx); err != nil {
			log.Warnw("reading webhook counters failed", "error", err)
		}
		if data.WebhookOutcomes, err = s.counter.Outcomes(ctx); err != nil {
			log.Warnw("reading webhook outcome counters failed", "error", err)
		}
	}
	if data.WebhookDeliveries == nil {
		// Without Redis the delivery log is the source of truth.
		if data.WebhookDeliveries, err = s.repos.WebhookEvent.CountByType(ctx); err != nil {
			return nil, fmt.Errorf("count webhook events: %w", err)
		}
	}
	if data.WebhookOutcomes == nil {
		data.WebhookOutcomes = map[string]int64{}
	}
	return data, nil
}

// Invalidate drops the cached collection counts.
func (s *Collector) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKeyCollections); err != nil {
		log.Warnw("invalidating statistics cache failed", "error", err)
	}
}

func (s *Collector) collections(ctx context.Context) (map[string]int64, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, CacheKeyCollections)
		switch {
		case err == nil:
			var cached map[string]int64
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return cached, nil
			}
		case !errors.Is(err, cache.ErrMiss):
			log.Warnw("reading statistics cache failed", "error", err)
		}
	}

	counts, err := s.count(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(counts); err == nil {
			if err := s.cache.Set(ctx, CacheKeyCollections, raw, CacheExpiration); err != nil {
				log.Warnw("writing statistics cache failed", "error", err)
			}
		}
	}
	return counts, nil
}

func (s *Collector) count(ctx context.Context) (map[string]int64, error) {
	counters := map[string]func(context.Context) (int64, error){
		access.CollectionUsers:             s.repos.User.Count,
		access.CollectionOrganizations:     s.repos.Organization.Count,
		access.CollectionMemberships:       s.repos.Membership.Count,
		access.CollectionSubscriptions:     s.repos.Subscription.Count,
		access.CollectionSubscriptionItems: s.repos.SubscriptionItem.Count,
		access.CollectionPaymentAttempts:   s.repos.PaymentAttempt.Count,
	}
	out := make(map[string]int64, len(counters))
	for name, count := range counters {
		n, err := count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
