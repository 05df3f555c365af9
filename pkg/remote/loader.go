package remote

import (
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/feed"
	"github.com/planetary-social/feedcache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrConnectivity means the transport produced no response at all.
	ErrConnectivity = errors.New("connectivity error")

	// ErrInvalidData means a response arrived but was not a valid feed.
	ErrInvalidData = errors.New("invalid data")
)

// Loader fetches the feed from a fixed URL and maps it into the domain model.
// It keeps no state across calls, so overlapping loads never cross-talk.
type Loader struct {
	client HTTPClient
	url    string
}

func NewLoader(client HTTPClient, url string) *Loader {
	return &Loader{client: client, url: url}
}

func (l *Loader) Load(completion func([]feed.Image, error)) {
	metrics.RemoteFetchRequests.Inc()

	l.client.Get(l.url, func(result HTTPResult) {
		if result.Err() != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "REMOTE_CONNECTIVITY"}).Inc()
			completion(nil, ErrConnectivity)
			return
		}

		body, response, _ := result.Success()
		images, err := mapImages(body, response)
		if err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "REMOTE_INVALID_DATA"}).Inc()
			completion(nil, err)
			return
		}

		completion(images, nil)
	})
}
