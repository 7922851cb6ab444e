package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/partsearch/internal/config"
)

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Scraper.Timeout = 2 * time.Second
	return cfg
}

func TestHTTPFetcher_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig())
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")

	assert.Equal(t, config.DefaultUserAgents[0], got.Get("User-Agent"))
	assert.Equal(t, config.DefaultAccept, got.Get("Accept"))
	assert.Equal(t, config.DefaultAcceptLanguage, got.Get("Accept-Language"))
}

func TestHTTPFetcher_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig())
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func redirectChain() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/r/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if n == 0 {
			_, _ = w.Write([]byte("<html>landed</html>"))
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/r/%d", n-1), http.StatusFound)
	})
}

func TestHTTPFetcher_FollowsUpToMaxRedirects(t *testing.T) {
	srv := httptest.NewServer(redirectChain())
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig())
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), srv.URL+"/r/5")
	require.NoError(t, err)
	assert.Contains(t, string(body), "landed")
}

func TestHTTPFetcher_TooManyRedirects(t *testing.T) {
	srv := httptest.NewServer(redirectChain())
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig())
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/r/6")
	assert.Error(t, err)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Scraper.Timeout = 100 * time.Millisecond
	f, err := NewHTTPFetcher(cfg)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_InvalidProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Proxies.Enabled = true
	cfg.Proxies.List = []string{"::not-a-proxy"}

	_, err := NewHTTPFetcher(cfg)
	assert.Error(t, err)
}

func TestNewFetcher_PicksImplementation(t *testing.T) {
	cfg := testConfig()

	f, err := NewFetcher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	cfg.Browser.Enabled = true
	f, err = NewFetcher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &BrowserFetcher{}, f)
}
