package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoadRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_load_ops_total",
		Help: "The total number of processed local load requests",
	})
	SaveRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_save_ops_total",
		Help: "The total number of processed save requests",
	})
	ValidateRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_validate_ops_total",
		Help: "The total number of processed cache validation requests",
	})
	RemoteFetchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_remote_fetch_ops_total",
		Help: "The total number of processed remote feed fetches",
	})
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_cache_hits_ops_total",
		Help: "The total number of cache hits",
	})
	CacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_cache_miss_ops_total",
		Help: "The total number of cache misses",
	})
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_processed_cache_evictions_ops_total",
		Help: "The total number of policy driven cache evictions",
	})
	AppErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcache_errors_total",
		Help: "Number of errors for the app.",
	}, []string{"type"})
)
