package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/planetary-social/feedcache/pkg/feed"
)

// StoredImage mirrors feed.Image in the persisted schema. It exists so that
// the on-disk shape can evolve without touching the domain model.
type StoredImage struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	URL         string    `json:"url"`
}

func NewStoredImage(image feed.Image) StoredImage {
	return StoredImage{
		ID:          image.ID(),
		Description: image.Description(),
		Location:    image.Location(),
		URL:         image.URL(),
	}
}

func NewStoredImages(images []feed.Image) []StoredImage {
	stored := make([]StoredImage, 0, len(images))
	for _, image := range images {
		stored = append(stored, NewStoredImage(image))
	}
	return stored
}

func (i StoredImage) ToDomain() (feed.Image, error) {
	return feed.NewImage(i.ID, i.Description, i.Location, i.URL)
}

// CachedFeed is the single persisted unit: the stored images in their original
// order together with the moment they were saved. A store holds at most one.
type CachedFeed struct {
	Images    []StoredImage `json:"items"`
	Timestamp time.Time     `json:"timestamp"`
}
