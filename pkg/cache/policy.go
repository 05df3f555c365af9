package cache

import "time"

const maxCacheAgeInDays = 7

// validateTimestamp reports whether a feed saved at timestamp is still fresh
// when observed at against. The comparison is strict: a cache exactly seven
// calendar days old is already stale.
func validateTimestamp(timestamp time.Time, against time.Time) bool {
	maxCacheAge := timestamp.AddDate(0, 0, maxCacheAgeInDays)
	return against.Before(maxCacheAge)
}
