// Package sqlitestore persists the cached feed as a single row in a SQLite
// database, with the replacement done inside one transaction.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/cache"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cached_feed (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload BLOB NOT NULL,
	timestamp INTEGER NOT NULL
);`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, errors.Wrap(err, "cannot migrate schema")
	}

	return &Store{db: db}, nil
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
	row := s.db.QueryRow(`SELECT payload, timestamp FROM cached_feed WHERE id = 1`)

	var payload []byte
	var timestamp int64
	err := row.Scan(&payload, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.RetrievalEmpty()
	} else if err != nil {
		return cache.RetrievalFailure(errors.Wrap(err, "error scanning the cached feed"))
	}

	var images []cache.StoredImage
	if err := json.Unmarshal(payload, &images); err != nil {
		return cache.RetrievalFailure(errors.Wrap(err, "error decoding the cached feed"))
	}

	return cache.RetrievalFound(cache.CachedFeed{
		Images:    images,
		Timestamp: time.Unix(0, timestamp),
	})
}

func (s *Store) insert(images []cache.StoredImage, timestamp time.Time) error {
	payload, err := json.Marshal(images)
	if err != nil {
		return errors.Wrap(err, "error encoding the feed")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "error starting the transaction")
	}

	if _, err := tx.Exec(`DELETE FROM cached_feed`); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "error removing the previous feed")
	}

	if _, err := tx.Exec(`INSERT INTO cached_feed (id, payload, timestamp) VALUES (1, ?, ?)`, payload, timestamp.UnixNano()); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "error inserting the new feed")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing the transaction")
	}

	return nil
}

func (s *Store) delete() error {
	if _, err := s.db.Exec(`DELETE FROM cached_feed`); err != nil {
		return errors.Wrap(err, "error removing the feed")
	}

	return nil
}
