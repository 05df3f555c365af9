package rss

import (
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/feed"
	"github.com/planetary-social/feedcache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Loader serves an RSS or Atom feed through the same completion shape as the
// remote JSON loader, so callers can swap the source without noticing. The
// page URL is resolved to its feed URL on every load.
type Loader struct {
	parser    *gofeed.Parser
	converter *Converter
	url       string
}

func NewLoader(url string) *Loader {
	return &Loader{
		parser:    gofeed.NewParser(),
		converter: NewConverter(),
		url:       url,
	}
}

func (l *Loader) Load(completion func([]feed.Image, error)) {
	metrics.RemoteFetchRequests.Inc()

	go func() {
		feedUrl := FindFeedURL(l.url)
		if feedUrl == "" {
			metrics.AppErrors.With(prometheus.Labels{"type": "RSS_DISCOVERY"}).Inc()
			completion(nil, errors.Errorf("no feed found at %q", l.url))
			return
		}

		parsedFeed, err := l.parser.ParseURL(feedUrl)
		if err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "RSS_FETCH"}).Inc()
			completion(nil, errors.Wrapf(err, "error parsing the feed at %q", feedUrl))
			return
		}

		completion(l.converter.Convert(parsedFeed), nil)
	}()
}
