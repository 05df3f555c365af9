package cache

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/feed"
	"github.com/planetary-social/feedcache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Loader orchestrates a Store and the staleness policy. The current date is
// injected so that policy decisions stay deterministic under test.
type Loader struct {
	store       Store
	currentDate func() time.Time
}

func NewLoader(store Store, currentDate func() time.Time) *Loader {
	return &Loader{store: store, currentDate: currentDate}
}

// Load retrieves the cached feed. A stale or absent cache yields an empty
// feed, a store failure surfaces verbatim. Load never evicts; that is
// ValidateCache's job.
func (l *Loader) Load(completion func([]feed.Image, error)) *Task {
	metrics.LoadRequests.Inc()

	task := &Task{}
	l.store.Retrieve(func(result RetrievalResult) {
		task.deliver(func() {
			completion(l.mapRetrieval(result))
		})
	})
	return task
}

func (l *Loader) mapRetrieval(result RetrievalResult) ([]feed.Image, error) {
	if err := result.Err(); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_RETRIEVE"}).Inc()
		return nil, err
	}

	cached, ok := result.Found()
	if !ok || !validateTimestamp(cached.Timestamp, l.currentDate()) {
		metrics.CacheMiss.Inc()
		return []feed.Image{}, nil
	}

	images := make([]feed.Image, 0, len(cached.Images))
	for _, stored := range cached.Images {
		image, err := stored.ToDomain()
		if err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_MAP"}).Inc()
			return nil, errors.Wrap(err, "error mapping the stored image")
		}
		images = append(images, image)
	}

	metrics.CacheHits.Inc()
	return images, nil
}

// Save replaces the cached feed with the given images timestamped at the
// current date. The previous snapshot is deleted first; if that fails the
// insertion is never attempted and the deletion error is delivered.
func (l *Loader) Save(images []feed.Image, completion func(error)) *Task {
	metrics.SaveRequests.Inc()

	task := &Task{}
	l.store.Delete(func(err error) {
		task.deliver(func() {
			if err != nil {
				completion(err)
				return
			}

			l.store.Insert(NewStoredImages(images), l.currentDate(), func(err error) {
				task.deliver(func() {
					completion(err)
				})
			})
		})
	})
	return task
}

// ValidateCache evicts the snapshot when it is stale or unreadable. Eviction
// is best effort: the deletion result is discarded.
func (l *Loader) ValidateCache() *Task {
	metrics.ValidateRequests.Inc()

	task := &Task{}
	l.store.Retrieve(func(result RetrievalResult) {
		task.deliver(func() {
			if !l.shouldEvict(result) {
				return
			}

			metrics.CacheEvictions.Inc()
			l.store.Delete(func(err error) {
				if err != nil {
					log.Printf("[DEBUG] best effort cache eviction failed: %v", err)
				}
			})
		})
	})
	return task
}

func (l *Loader) shouldEvict(result RetrievalResult) bool {
	if result.Err() != nil {
		return true
	}

	cached, ok := result.Found()
	if !ok {
		return false
	}

	return !validateTimestamp(cached.Timestamp, l.currentDate())
}
