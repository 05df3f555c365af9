// Package rss turns RSS and Atom feeds into the domain feed model, so a
// syndication source can stand in for the JSON feed service.
package rss

import (
	"log"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/planetary-social/feedcache/pkg/feed"
	"github.com/planetary-social/feedcache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Converter struct {
	sanitizer *bluemonday.Policy
	markdown  *md.Converter
}

func NewConverter() *Converter {
	return &Converter{
		sanitizer: bluemonday.StrictPolicy(),
		markdown:  md.NewConverter("", true, nil),
	}
}

// Convert maps feed entries to domain images in document order. Entries
// without a usable image URL are skipped. Image ids are derived from the
// entry identity so that re-fetching the same feed yields the same ids.
func (c *Converter) Convert(parsedFeed *gofeed.Feed) []feed.Image {
	images := make([]feed.Image, 0, len(parsedFeed.Items))
	for _, item := range parsedFeed.Items {
		imageUrl := itemImageUrl(item)
		if imageUrl == "" {
			log.Printf("[DEBUG] skipping feed entry %q without an image", item.Title)
			continue
		}

		image, err := feed.NewImage(
			uuid.NewSHA1(uuid.NameSpaceURL, []byte(itemIdentity(item))),
			c.description(item),
			feedLocation(parsedFeed),
			imageUrl,
		)
		if err != nil {
			log.Printf("[ERROR] failure to convert feed entry %q: %v", item.Title, err)
			metrics.AppErrors.With(prometheus.Labels{"type": "RSS_CONVERT"}).Inc()
			continue
		}

		images = append(images, image)
	}
	return images
}

func (c *Converter) description(item *gofeed.Item) *string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	if raw == "" {
		return nil
	}

	markdown, err := c.markdown.ConvertString(raw)
	if err != nil {
		markdown = raw
	}

	description := strings.TrimSpace(c.sanitizer.Sanitize(markdown))
	if description == "" {
		return nil
	}
	return &description
}

func itemImageUrl(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	return ""
}

func itemIdentity(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// The source title doubles as the location label; RSS has no per-entry place.
func feedLocation(parsedFeed *gofeed.Feed) *string {
	title := strings.TrimSpace(parsedFeed.Title)
	if title == "" {
		return nil
	}
	return &title
}
