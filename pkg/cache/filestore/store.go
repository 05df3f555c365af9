// Package filestore persists the cached feed as a single JSON file. All
// operations run on one dedicated goroutine so that overlapping calls never
// observe a partially written file.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/cache"
)

type Store struct {
	path string
	ops  chan func()
}

func New(path string) *Store {
	s := &Store{
		path: path,
		ops:  make(chan func()),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	for op := range s.ops {
		op()
	}
}

// Close stops the operation queue. Calling any store operation after Close
// panics.
func (s *Store) Close() error {
	close(s.ops)
	return nil
}

func (s *Store) Retrieve(completion func(cache.RetrievalResult)) {
	s.ops <- func() {
		completion(s.retrieve())
	}
}

func (s *Store) Insert(images []cache.StoredImage, timestamp time.Time, completion func(error)) {
	s.ops <- func() {
		completion(s.insert(images, timestamp))
	}
}

func (s *Store) Delete(completion func(error)) {
	s.ops <- func() {
		completion(s.delete())
	}
}

func (s *Store) retrieve() cache.RetrievalResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cache.RetrievalEmpty()
		}
		return cache.RetrievalFailure(errors.Wrap(err, "error reading the cache file"))
	}

	var cached cache.CachedFeed
	if err := json.Unmarshal(data, &cached); err != nil {
		return cache.RetrievalFailure(errors.Wrap(err, "error decoding the cache file"))
	}

	return cache.RetrievalFound(cached)
}

func (s *Store) insert(images []cache.StoredImage, timestamp time.Time) error {
	data, err := json.Marshal(cache.CachedFeed{Images: images, Timestamp: timestamp})
	if err != nil {
		return errors.Wrap(err, "error encoding the feed")
	}

	// The new snapshot is staged in a temporary file and renamed over the
	// previous one, so a failed insert leaves the prior state readable.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "feedcache-*.json")
	if err != nil {
		return errors.Wrap(err, "error staging the cache file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "error writing the cache file")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "error closing the cache file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "error replacing the cache file")
	}

	return nil
}

func (s *Store) delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "error removing the cache file")
	}
	return nil
}
