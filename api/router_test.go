package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/engine"
	"github.com/promowatch/promowatch/models"
	"github.com/promowatch/promowatch/probe"
)

// staticFetcher serves one canned markup for a single URL and counts calls.
type staticFetcher struct {
	url    string
	markup string
	calls  int
}

func (f *staticFetcher) Fetch(_ context.Context, req *engine.FetchRequest) (string, error) {
	f.calls++
	if req.URL == f.url {
		return f.markup, nil
	}
	return "", errors.New("HTTP 404")
}

func testConfig(token string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Probe: config.ProbeConfig{
			FetchTimeout:      time.Second,
			RenderBaseTimeout: time.Second,
			MaxAttempts:       1,
			RetryBackoff:      time.Millisecond,
			MaxCount:          5000,
			KeywordGap:        40,
			TailSliceLen:      2000,
		},
		Auth:      config.AuthConfig{Token: token},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func testRouter(t *testing.T, token string) (http.Handler, *staticFetcher) {
	t.Helper()
	cfg := testConfig(token)
	site := config.SiteConfig{
		Country:     "de",
		RootURL:     "https://example.test",
		ListingPath: "/angebote/",
		Locale:      "de-DE",
		Keywords:    []string{"Aktionsartikel"},
	}
	fetcher := &staticFetcher{
		url:    "https://example.test/angebote/",
		markup: `<h1>Angebote</h1><p>Es wurden 37 Aktionsartikel gefunden</p>`,
	}
	p := probe.New(cfg.Probe, []config.SiteConfig{site}, fetcher, nil, nil)
	return NewRouter(p, cfg, nil, time.Now()), fetcher
}

func TestCheck_RejectsMissingToken(t *testing.T) {
	router, fetcher := testRouter(t, "s3cret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/check", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, fetcher.calls, "no network activity may happen before auth")

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrCodeUnauthorized, resp.Error.Code)
}

func TestCheck_RejectsWrongToken(t *testing.T) {
	router, _ := testRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/check", nil)
	req.Header.Set("X-Probe-Token", "wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheck_AcceptsValidToken(t *testing.T) {
	router, _ := testRouter(t, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/check", nil)
	req.Header.Set("X-Probe-Token", "s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report models.BatchReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	summary := report.Countries["de"]
	require.Len(t, summary.Pages, 1)
	assert.Equal(t, models.KnownCount(37), summary.Pages[0].Count)
}

func TestCheck_OpenAccessWithoutConfiguredSecret(t *testing.T) {
	router, _ := testRouter(t, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/check", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheck_TextFormatViaQuery(t *testing.T) {
	router, _ := testRouter(t, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/check?format=text", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "DE\n")
	assert.Contains(t, body, "Date pages found: 0")
	assert.Contains(t, body, "https://example.test/angebote/ - Product found 37")
}

func TestCheck_TextFormatViaAcceptHeader(t *testing.T) {
	router, _ := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/check", nil)
	req.Header.Set("Accept", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product found 37")
}

func TestHealth_NoAuthRequired(t *testing.T) {
	router, _ := testRouter(t, "s3cret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"rendering_available":false`)
}
