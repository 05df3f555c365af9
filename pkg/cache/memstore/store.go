// Package memstore keeps the cached feed in process memory on top of a
// bigcache backend. Staleness is the loader's decision, so the backend life
// window only has to outlive the seven day policy.
package memstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/allegro/bigcache"
	gocache "github.com/eko/gocache/lib/v4/cache"
	gocachestore "github.com/eko/gocache/lib/v4/store"
	bigcachestore "github.com/eko/gocache/store/bigcache/v4"
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/cache"
)

const cacheKey = "cached-feed"

const lifeWindow = 30 * 24 * time.Hour

type Store struct {
	cache *gocache.Cache[[]byte]
	mutex sync.Mutex
}

func New() (*Store, error) {
	client, err := bigcache.NewBigCache(bigcache.DefaultConfig(lifeWindow))
	if err != nil {
		return nil, errors.Wrap(err, "error initializing the bigcache backend")
	}

	return &Store{
		cache: gocache.New[[]byte](bigcachestore.NewBigcache(client)),
	}, nil
}

func (s *Store) Retrieve(completion func(cache.RetrievalResult)) {
	go func() {
		completion(s.retrieve())
	}()
}

func (s *Store) Insert(images []cache.StoredImage, timestamp time.Time, completion func(error)) {
	go func() {
		completion(s.insert(images, timestamp))
	}()
}

func (s *Store) Delete(completion func(error)) {
	go func() {
		completion(s.delete())
	}()
}

func (s *Store) retrieve() cache.RetrievalResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := s.cache.Get(context.Background(), cacheKey)
	if err != nil {
		if isNotFound(err) {
			return cache.RetrievalEmpty()
		}
		return cache.RetrievalFailure(errors.Wrap(err, "error reading the cached feed"))
	}

	var cached cache.CachedFeed
	if err := json.Unmarshal(data, &cached); err != nil {
		return cache.RetrievalFailure(errors.Wrap(err, "error decoding the cached feed"))
	}

	return cache.RetrievalFound(cached)
}

func (s *Store) insert(images []cache.StoredImage, timestamp time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.Marshal(cache.CachedFeed{Images: images, Timestamp: timestamp})
	if err != nil {
		return errors.Wrap(err, "error encoding the feed")
	}

	if err := s.cache.Set(context.Background(), cacheKey, data); err != nil {
		return errors.Wrap(err, "error storing the feed")
	}

	return nil
}

func (s *Store) delete() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.cache.Delete(context.Background(), cacheKey)
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, "error removing the feed")
	}

	return nil
}

// The gocache store wraps misses in its own NotFound error, but deletions of
// absent keys surface the raw bigcache sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, new(gocachestore.NotFound)) || errors.Is(err, bigcache.ErrEntryNotFound)
}
