// Package redistore persists the cached feed under a single Redis key, which
// lets several reader instances share one snapshot. Redis serializes the
// per-key commands itself, so no extra queueing is needed here.
package redistore

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	gocachestore "github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const cacheKey = "feedcache:cached-feed"

// Redis hands values back as strings, so the cache is parameterized
// accordingly; a []byte parameter would fail the library's type assertion on
// every read.
type Store struct {
	cache *gocache.Cache[string]
}

func New(client redisstore.RedisClientInterface) *Store {
	return &Store{
		cache: gocache.New[string](redisstore.NewRedis(client)),
	}
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
	data, err := s.cache.Get(context.Background(), cacheKey)
	if err != nil {
		if errors.Is(err, new(gocachestore.NotFound)) || errors.Is(err, redis.Nil) {
			return cache.RetrievalEmpty()
		}
		return cache.RetrievalFailure(errors.Wrap(err, "error reading the cached feed"))
	}

	var cached cache.CachedFeed
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return cache.RetrievalFailure(errors.Wrap(err, "error decoding the cached feed"))
	}

	return cache.RetrievalFound(cached)
}

func (s *Store) insert(images []cache.StoredImage, timestamp time.Time) error {
	data, err := json.Marshal(cache.CachedFeed{Images: images, Timestamp: timestamp})
	if err != nil {
		return errors.Wrap(err, "error encoding the feed")
	}

	if err := s.cache.Set(context.Background(), cacheKey, string(data)); err != nil {
		return errors.Wrap(err, "error storing the feed")
	}

	return nil
}

func (s *Store) delete() error {
	err := s.cache.Delete(context.Background(), cacheKey)
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "error removing the feed")
	}

	return nil
}
