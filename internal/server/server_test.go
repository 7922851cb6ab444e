package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/scraper"
	"github.com/williampepple1/partsearch/internal/search"
	"github.com/williampepple1/partsearch/pkg/models"
)

type searcherFunc func(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)

func (f searcherFunc) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	return f(ctx, req)
}

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Scraper.Timeout = 2 * time.Second
	return cfg
}

func newRealRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	s, err := scraper.New(cfg)
	require.NoError(t, err)
	return NewServer(cfg, search.NewDispatcher(cfg, s)).SetupRouter()
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	router := NewServer(testConfig(), searcherFunc(nil)).SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSearch_MissingTerms(t *testing.T) {
	w := post(newRealRouter(t), `{"partName":"","partNumber":"","websites":["https://a.com"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Part name or part number is required", decodeError(t, w))
}

func TestSearch_NoWebsites(t *testing.T) {
	router := newRealRouter(t)

	for _, body := range []string{
		`{"partName":"Arduino","websites":[]}`,
		`{"partName":"Arduino"}`,
	} {
		w := post(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "At least one website is required", decodeError(t, w), body)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	router := newRealRouter(t)

	for _, body := range []string{`{"partName":`, ``, `{"websites":"https://a.com"}`, `null`, " null\n"} {
		w := post(router, body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.Equal(t, "Internal server error", decodeError(t, w), body)
	}
}

func TestSearch_EndToEnd(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<div class="product"><h3>Arduino Uno R3</h3><a href="/p/1">link</a></div>`))
	}))
	defer vendor.Close()

	w := post(newRealRouter(t), `{"partName":"Arduino Uno","partNumber":"","websites":["`+vendor.URL+`"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []models.SearchResult{{
		Title:       "Arduino Uno R3",
		URL:         vendor.URL + "/p/1",
		Description: "No description available",
		Source:      "127.0.0.1",
	}}, resp.Results)
}

func TestSearch_SharedLinksAreDeduplicated(t *testing.T) {
	page := `<div class="product"><h3>Arduino Uno R3</h3><a href="https://shared.example.com/uno">x</a></div>
<div class="product"><h3>Arduino Mega</h3><a href="/mega">x</a></div>`
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	a := httptest.NewServer(handler)
	defer a.Close()
	b := httptest.NewServer(handler)
	defer b.Close()

	w := post(newRealRouter(t), `{"partName":"Arduino","websites":["`+a.URL+`","`+b.URL+`"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Equal(t, 3, resp.Count)
	seen := map[string]bool{}
	for _, r := range resp.Results {
		assert.False(t, seen[r.URL], "duplicate %s", r.URL)
		seen[r.URL] = true
		assert.LessOrEqual(t, utf8.RuneCountInString(r.Title), 150)
		assert.LessOrEqual(t, utf8.RuneCountInString(r.Description), 250)
	}
	assert.Equal(t, []string{"https://shared.example.com/uno", a.URL + "/mega", b.URL + "/mega"},
		[]string{resp.Results[0].URL, resp.Results[1].URL, resp.Results[2].URL})
}

func TestSearch_UnexpectedError(t *testing.T) {
	router := NewServer(testConfig(), searcherFunc(func(context.Context, models.SearchRequest) (*models.SearchResponse, error) {
		return nil, errors.New("boom")
	})).SetupRouter()

	w := post(router, `{"partName":"Arduino","websites":["https://a.com"]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w))
}

func TestSearch_PanicIsRecovered(t *testing.T) {
	router := NewServer(testConfig(), searcherFunc(func(context.Context, models.SearchRequest) (*models.SearchResponse, error) {
		panic("searcher exploded")
	})).SetupRouter()

	w := post(router, `{"partName":"Arduino","websites":["https://a.com"]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w))
}

func TestRequestID(t *testing.T) {
	router := NewServer(testConfig(), searcherFunc(nil)).SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
