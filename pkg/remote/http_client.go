package remote

import (
	"io"
	"net/http"
	"time"
)

// Client is the concrete HTTPClient backed by net/http.
type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Get(url string, completion func(HTTPResult)) {
	go func() {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			completion(HTTPResultFailure(err))
			return
		}
		req.Header.Set("User-Agent", "feedcache")

		resp, err := c.client.Do(req)
		if err != nil {
			completion(HTTPResultFailure(err))
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			completion(HTTPResultFailure(err))
			return
		}

		completion(HTTPResultSuccess(body, resp))
	}()
}
