package scraper

import (
	"context"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/proxy"
)

// BrowserFetcher renders search pages in a headless browser, for vendor
// sites that build their result lists with JavaScript
type BrowserFetcher struct {
	Config *config.AppConfig
	Proxy  *proxy.Manager
}

// NewBrowserFetcher creates a new browser fetcher
func NewBrowserFetcher(config *config.AppConfig) *BrowserFetcher {
	return &BrowserFetcher{
		Config: config,
		Proxy:  proxy.NewManager(&config.Proxies),
	}
}

// Fetch navigates to url, waits for scripts to settle and returns the rendered HTML
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Config.Scraper.Timeout+f.Config.Browser.WaitTime)
	defer cancel()

	// Configure browser options
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Config.Browser.Headless),
		chromedp.UserAgent(f.Config.Browser.UserAgent),
	)

	proxyURL, err := f.Proxy.GetProxyURL()
	if err != nil {
		return nil, err
	}
	if proxyURL != nil {
		opts = append(opts, chromedp.ProxyServer(proxyURL.String()))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.Sleep(f.Config.Browser.WaitTime),
		chromedp.OuterHTML("html", &html),
	}

	if err := chromedp.Run(browserCtx, tasks...); err != nil {
		return nil, eris.Wrapf(err, "scraper: render %s", url)
	}

	return []byte(html), nil
}
