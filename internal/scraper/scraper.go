package scraper

import (
	"context"

	"github.com/williampepple1/partsearch/internal/config"
)

// Fetcher retrieves the HTML of a search page
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewFetcher creates a fetcher based on the configuration
func NewFetcher(config *config.AppConfig) (Fetcher, error) {
	if config.Browser.Enabled {
		return NewBrowserFetcher(config), nil
	}
	return NewHTTPFetcher(config)
}
