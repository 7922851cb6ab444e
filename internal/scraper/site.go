package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/extraction"
	"github.com/williampepple1/partsearch/pkg/models"
)

const tracerName = "partsearch/scraper"

// SiteScraper searches a single vendor site for a part
type SiteScraper struct {
	Config    *config.AppConfig
	Fetcher   Fetcher
	Extractor *extraction.Extractor
	Tracer    trace.Tracer
}

// New creates a site scraper with the fetcher chosen by the configuration
func New(config *config.AppConfig) (*SiteScraper, error) {
	fetcher, err := NewFetcher(config)
	if err != nil {
		return nil, err
	}
	return NewSiteScraper(config, fetcher), nil
}

// NewSiteScraper creates a site scraper around an existing fetcher
func NewSiteScraper(config *config.AppConfig, fetcher Fetcher) *SiteScraper {
	return &SiteScraper{
		Config:    config,
		Fetcher:   fetcher,
		Extractor: extraction.NewExtractor(&config.Extraction, config.Scraper.MaxResults),
		Tracer:    otel.Tracer(tracerName),
	}
}

// Scrape tries the site's candidate search URLs in order and returns the
// results of the first page the extractor accepts anything from. When no
// page yields a match, a single fallback result linking to the site's first
// search URL is returned. Fetch and parse failures are never returned; the
// only error is an unusable site URL, in which case there is no fallback.
func (s *SiteScraper) Scrape(ctx context.Context, site, partName, partNumber string) ([]models.SearchResult, error) {
	ctx, span := s.Tracer.Start(ctx, "SiteScraper.Scrape", trace.WithAttributes(attribute.String("site", site)))
	defer span.End()

	base, err := ParseSite(site)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid site url")
		return nil, err
	}

	query := models.JoinTerms(partName, partNumber)
	candidates := SearchURLs(site, query, s.Config.Scraper.SearchPaths)
	terms := extraction.Terms{PartName: partName, PartNumber: partNumber}

	for _, candidate := range candidates {
		results, err := s.scrapePage(ctx, candidate, base, terms)
		if err != nil {
			span.AddEvent("candidate failed", trace.WithAttributes(attribute.String("url", candidate)))
			zap.L().Debug("scraper: candidate failed, trying next",
				zap.String("site", site),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}
		if len(results) > 0 {
			span.SetAttributes(attribute.Int("results", len(results)))
			zap.L().Debug("scraper: extracted results",
				zap.String("site", site),
				zap.String("url", candidate),
				zap.Int("count", len(results)),
			)
			return results, nil
		}
	}

	span.SetAttributes(attribute.Bool("fallback", true))
	zap.L().Debug("scraper: no matches, returning search link",
		zap.String("site", site),
		zap.String("query", query),
	)
	return []models.SearchResult{Fallback(base, candidates[0], query)}, nil
}

func (s *SiteScraper) scrapePage(ctx context.Context, pageURL string, base *url.URL, terms extraction.Terms) ([]models.SearchResult, error) {
	ctx, span := s.Tracer.Start(ctx, "SiteScraper.scrapePage", trace.WithAttributes(attribute.String("url", pageURL)))
	defer span.End()

	body, err := s.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, eris.Wrapf(err, "scraper: parse %s", pageURL)
	}

	results := s.Extractor.Extract(doc, base, terms)
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// ParseSite validates a vendor base URL. It must be absolute and carry a host.
func ParseSite(site string) (*url.URL, error) {
	base, err := url.Parse(site)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: parse site %q", site)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, eris.Errorf("scraper: site %q is not an absolute URL", site)
	}
	return base, nil
}

// SearchURLs builds the candidate search URLs for a site, one per search path
func SearchURLs(site, query string, paths []string) []string {
	if len(paths) == 0 {
		paths = config.DefaultSearchPaths
	}

	site = strings.TrimSuffix(site, "/")
	encoded := EncodeQuery(query)

	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, site+p+encoded)
	}
	return urls
}

// EncodeQuery percent-encodes a query component, spaces as %20
func EncodeQuery(query string) string {
	return strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}

// Fallback is the result offered when a site yields no matches: a link the
// user can follow to run the search by hand
func Fallback(base *url.URL, searchURL, query string) models.SearchResult {
	host := base.Hostname()
	return models.SearchResult{
		Title:       extraction.Truncate(fmt.Sprintf(`Search "%s" on %s`, query, host), extraction.MaxTitleLen),
		URL:         searchURL,
		Description: extraction.Truncate(fmt.Sprintf(`Click to search for "%s" on %s`, query, host), extraction.MaxDescriptionLen),
		Source:      host,
	}
}
