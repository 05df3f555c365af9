package cache

import "time"

// RetrievalResult is the outcome of Store.Retrieve: an empty slot, a found
// feed, or a failure. Build it through the constructors below.
type RetrievalResult struct {
	found bool
	feed  CachedFeed
	err   error
}

func RetrievalEmpty() RetrievalResult {
	return RetrievalResult{}
}

func RetrievalFound(feed CachedFeed) RetrievalResult {
	return RetrievalResult{found: true, feed: feed}
}

func RetrievalFailure(err error) RetrievalResult {
	return RetrievalResult{err: err}
}

func (r RetrievalResult) Err() error {
	return r.err
}

func (r RetrievalResult) Found() (CachedFeed, bool) {
	return r.feed, r.found
}

// Store persists at most one feed snapshot. All operations are asynchronous
// and must invoke their completion exactly once, possibly on a different
// goroutine than the caller's.
//
// Implementations whose underlying resource is not safe under concurrent
// access must serialize their own operations: a subsequent Retrieve sees
// either the previous snapshot or the new one, never a mixture, and a failed
// Insert leaves the previously retrievable state unchanged.
type Store interface {
	Retrieve(completion func(RetrievalResult))

	// Insert unconditionally replaces any existing snapshot.
	Insert(images []StoredImage, timestamp time.Time, completion func(error))

	// Delete removes the snapshot if present. An absent snapshot is not an
	// error.
	Delete(completion func(error))
}
