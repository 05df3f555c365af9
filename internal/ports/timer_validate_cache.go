package ports

import (
	"context"
	"log"
	"time"

	"github.com/planetary-social/feedcache/pkg/cache"
)

type CacheValidator interface {
	ValidateCache() *cache.Task
}

// ValidateCacheTimer periodically asks the loader to evict a stale snapshot.
type ValidateCacheTimer struct {
	validator CacheValidator
	interval  time.Duration
}

func NewValidateCacheTimer(validator CacheValidator, interval time.Duration) *ValidateCacheTimer {
	return &ValidateCacheTimer{validator: validator, interval: interval}
}

func (t *ValidateCacheTimer) Run(ctx context.Context) {
	for {
		log.Print("[DEBUG] validating the cached feed")
		t.validator.ValidateCache()

		select {
		case <-time.After(t.interval):
			continue
		case <-ctx.Done():
			return
		}
	}
}
