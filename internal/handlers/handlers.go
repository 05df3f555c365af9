package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/planetary-social/feedcache/pkg/cache"
	"github.com/planetary-social/feedcache/pkg/feed"
)

// LocalLoader is the slice of the cache loader the handlers consume.
type LocalLoader interface {
	Load(completion func([]feed.Image, error)) *cache.Task
	Save(images []feed.Image, completion func(error)) *cache.Task
}

// RemoteLoader fetches the feed from the remote service.
type RemoteLoader interface {
	Load(completion func([]feed.Image, error))
}

type imageResponse struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	URL         string    `json:"url"`
}

type feedResponse struct {
	Items []imageResponse `json:"items"`
}

// HandleGetFeed serves the locally cached feed. A stale or absent cache shows
// up as an empty items list, exactly like the loader reports it.
func HandleGetFeed(w http.ResponseWriter, r *http.Request, loader LocalLoader) {
	images, err := awaitLoad(loader)
	if err != nil {
		log.Printf("[ERROR] failure to load the cached feed: %v", err)
		http.Error(w, "could not load the feed", http.StatusInternalServerError)
		return
	}

	writeFeed(w, images)
}

// HandleRefreshFeed fetches the remote feed and replaces the cached snapshot
// with it, then serves the fresh items.
func HandleRefreshFeed(w http.ResponseWriter, r *http.Request, remoteLoader RemoteLoader, localLoader LocalLoader) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type result struct {
		images []feed.Image
		err    error
	}
	ch := make(chan result, 1)
	remoteLoader.Load(func(images []feed.Image, err error) {
		ch <- result{images: images, err: err}
	})
	res := <-ch
	if res.err != nil {
		log.Printf("[ERROR] failure to fetch the remote feed: %v", res.err)
		http.Error(w, "could not fetch the feed", http.StatusBadGateway)
		return
	}

	saveErr := make(chan error, 1)
	localLoader.Save(res.images, func(err error) {
		saveErr <- err
	})
	if err := <-saveErr; err != nil {
		log.Printf("[ERROR] failure to save the fetched feed: %v", err)
		http.Error(w, "could not save the feed", http.StatusInternalServerError)
		return
	}

	writeFeed(w, res.images)
}

func awaitLoad(loader LocalLoader) ([]feed.Image, error) {
	type result struct {
		images []feed.Image
		err    error
	}
	ch := make(chan result, 1)
	loader.Load(func(images []feed.Image, err error) {
		ch <- result{images: images, err: err}
	})
	res := <-ch
	return res.images, res.err
}

func writeFeed(w http.ResponseWriter, images []feed.Image) {
	response := feedResponse{Items: make([]imageResponse, 0, len(images))}
	for _, image := range images {
		response.Items = append(response.Items, imageResponse{
			ID:          image.ID(),
			Description: image.Description(),
			Location:    image.Location(),
			URL:         image.URL(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("[ERROR] failure to encode the feed response: %v", err)
	}
}
