package scraper

import (
	"context"
	"math/rand"
	"net/http"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/proxy"
)

// HTTPFetcher fetches search pages with a plain HTTP client
type HTTPFetcher struct {
	Config *config.AppConfig
	client *resty.Client
}

// NewHTTPFetcher creates a new HTTP fetcher. The client follows at most
// Scraper.MaxRedirects redirects and gives up after Scraper.Timeout.
func NewHTTPFetcher(config *config.AppConfig) (*HTTPFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if err := proxy.NewManager(&config.Proxies).ApplyToTransport(transport); err != nil {
		return nil, err
	}

	var rt http.RoundTripper = transport
	if config.Scraper.CloudflareBypass {
		rt = cloudflarebp.AddCloudFlareByPass(rt)
	}

	client := resty.New()
	client.SetTransport(rt)
	client.SetTimeout(config.Scraper.Timeout)
	client.SetRedirectPolicy(maxRedirectsPolicy(config.Scraper.MaxRedirects))
	client.SetHeader("Accept", config.Scraper.Accept)
	client.SetHeader("Accept-Language", config.Scraper.AcceptLanguage)

	return &HTTPFetcher{
		Config: config,
		client: client,
	}, nil
}

// Fetch issues a single GET. Transport errors and non-2xx statuses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req := f.client.R().SetContext(ctx)

	if agents := f.Config.Scraper.UserAgents; len(agents) > 0 {
		req.SetHeader("User-Agent", agents[rand.Intn(len(agents))])
	}

	res, err := req.Get(url)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: fetch %s", url)
	}

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, eris.Errorf("scraper: fetch %s: status %d", url, res.StatusCode())
	}

	return res.Body(), nil
}

// maxRedirectsPolicy follows up to max redirects and fails on the next one
func maxRedirectsPolicy(max int) resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(_ *http.Request, via []*http.Request) error {
		if len(via) > max {
			return eris.Errorf("scraper: stopped after %d redirects", max)
		}
		return nil
	})
}
