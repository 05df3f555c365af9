package feed

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/helpers"
)

// Image is a single entry of the feed. Description and location are optional,
// the id and the resource URL are not.
type Image struct {
	id          uuid.UUID
	description *string
	location    *string
	url         string
}

func NewImage(id uuid.UUID, description, location *string, url string) (Image, error) {
	if id == uuid.Nil {
		return Image{}, errors.New("image id can't be empty")
	}

	if !helpers.IsValidHttpUrl(url) {
		return Image{}, errors.Errorf("invalid image url %q (must be in absolute format and with http or https scheme)", url)
	}

	return Image{id: id, description: description, location: location, url: url}, nil
}

func (i Image) ID() uuid.UUID {
	return i.id
}

func (i Image) Description() *string {
	return i.description
}

func (i Image) Location() *string {
	return i.location
}

func (i Image) URL() string {
	return i.url
}
