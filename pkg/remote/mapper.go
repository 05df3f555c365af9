package remote

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/planetary-social/feedcache/pkg/feed"
)

type remoteImage struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	URL         string    `json:"image"`
}

type remoteFeed struct {
	Items *[]remoteImage `json:"items"`
}

// mapImages accepts nothing but a 200 with a decodable items list. Document
// order is preserved.
func mapImages(body []byte, response *http.Response) ([]feed.Image, error) {
	if response.StatusCode != http.StatusOK {
		return nil, ErrInvalidData
	}

	var decoded remoteFeed
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Items == nil {
		return nil, ErrInvalidData
	}

	images := make([]feed.Image, 0, len(*decoded.Items))
	for _, item := range *decoded.Items {
		image, err := feed.NewImage(item.ID, item.Description, item.Location, item.URL)
		if err != nil {
			return nil, ErrInvalidData
		}
		images = append(images, image)
	}

	return images, nil
}
