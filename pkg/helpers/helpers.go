package helpers

import (
	"net/url"
	"strings"
)

func UrlJoin(baseUrl string, elem ...string) (string, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return "", err
	}

	if len(elem) > 0 {
		elem = append([]string{u.Path}, elem...)
		u.Path = strings.Join(elem, "/")
	}

	return u.String(), nil
}

func IsValidHttpUrl(rawUrl string) bool {
	u, err := url.ParseRequestURI(rawUrl)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
