package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/pkg/models"
)

// SiteScraper searches a single vendor site
type SiteScraper interface {
	Scrape(ctx context.Context, site, partName, partNumber string) ([]models.SearchResult, error)
}

// ValidationError reports a search request the caller has to fix
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingTerms = &ValidationError{Message: "Part name or part number is required"}
	ErrNoWebsites   = &ValidationError{Message: "At least one website is required"}
)

// Dispatcher fans a search out to every requested site and merges the answers
type Dispatcher struct {
	Scraper SiteScraper
	// MaxConcurrent caps simultaneous site scrapes. Zero means unlimited.
	MaxConcurrent int
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(config *config.AppConfig, scraper SiteScraper) *Dispatcher {
	return &Dispatcher{
		Scraper:       scraper,
		MaxConcurrent: config.Scraper.MaxConcurrentSites,
	}
}

// Validate checks that a request names a part and at least one website
func Validate(req models.SearchRequest) error {
	if req.PartName == "" && req.PartNumber == "" {
		return ErrMissingTerms
	}
	if len(req.Websites) == 0 {
		return ErrNoWebsites
	}
	return nil
}

// Search scrapes every website concurrently, waits for all of them and
// returns the flattened results with duplicate URLs removed. A failing site
// contributes nothing; only validation errors are returned.
func (d *Dispatcher) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()

	// One slot per website keeps the merge in request order.
	perSite := make([][]models.SearchResult, len(req.Websites))

	var g errgroup.Group
	if d.MaxConcurrent > 0 {
		g.SetLimit(d.MaxConcurrent)
	}

	for i, site := range req.Websites {
		g.Go(func() error {
			perSite[i] = d.scrapeSite(ctx, site, req)
			return nil
		})
	}

	_ = g.Wait()

	var all []models.SearchResult
	for _, results := range perSite {
		all = append(all, results...)
	}
	results := Dedupe(all)

	zap.L().Info("search: complete",
		zap.String("query", req.Query()),
		zap.Int("sites", len(req.Websites)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	return &models.SearchResponse{
		Results: results,
		Count:   len(results),
	}, nil
}

func (d *Dispatcher) scrapeSite(ctx context.Context, site string, req models.SearchRequest) (results []models.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("search: site scrape panicked",
				zap.String("site", site),
				zap.Any("panic", r),
			)
			results = nil
		}
	}()

	results, err := d.Scraper.Scrape(ctx, site, req.PartName, req.PartNumber)
	if err != nil {
		zap.L().Warn("search: site skipped",
			zap.String("site", site),
			zap.Error(err),
		)
		return nil
	}
	return results
}

// Dedupe drops repeated URLs. The last occurrence's value wins and stays at
// the position where the URL was first seen.
func Dedupe(results []models.SearchResult) []models.SearchResult {
	index := make(map[string]int, len(results))
	out := make([]models.SearchResult, 0, len(results))

	for _, r := range results {
		if i, ok := index[r.URL]; ok {
			out[i] = r
			continue
		}
		index[r.URL] = len(out)
		out = append(out, r)
	}

	return out
}
