package rss

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/planetary-social/feedcache/pkg/helpers"
)

var client = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 2 {
			return errors.New("stopped after 2 redirects")
		}
		return nil
	},
	Timeout: 5 * time.Second,
}

var feedTypes = []string{
	"rss+xml",
	"atom+xml",
	"feed+json",
	"text/xml",
	"application/xml",
}

// FindFeedURL resolves a page URL to its feed URL: either the URL itself when
// it already serves a feed content type, or the first feed link advertised in
// the page's HTML. Returns an empty string when no feed is found.
func FindFeedURL(url string) string {
	resp, err := client.Get(url)
	if err != nil || resp.StatusCode >= 300 {
		return ""
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	for _, typ := range feedTypes {
		if strings.Contains(ct, typ) {
			return url
		}
	}

	if strings.Contains(ct, "text/html") {
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return ""
		}

		for _, typ := range feedTypes {
			href, _ := doc.Find(fmt.Sprintf("link[type*='%s']", typ)).Attr("href")
			if href == "" {
				continue
			}
			if !strings.HasPrefix(href, "http") && !strings.HasPrefix(href, "https") {
				href, _ = helpers.UrlJoin(url, href)
			}
			return href
		}
	}

	return ""
}
