package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Probe     ProbeConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Sites     []SiteConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance used for rendering.
type BrowserConfig struct {
	// Enabled toggles the rendering capability. When false (or when the
	// browser fails to launch) the service degrades to HTTP-only probing.
	Enabled bool // default: true

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ViewportWidth/ViewportHeight define the fixed render viewport.
	ViewportWidth  int // default: 1366
	ViewportHeight int // default: 768
}

// ProbeConfig controls the page-acquisition and extraction pipeline.
type ProbeConfig struct {
	// FetchTimeout is the deadline for one lightweight HTTP fetch.
	FetchTimeout time.Duration // default: 20s

	// RenderBaseTimeout is the navigation deadline for the first render
	// attempt; attempt N gets N times this value.
	RenderBaseTimeout time.Duration // default: 60s

	// KeywordWaitTimeout bounds the wait for a keyword to appear in the
	// rendered DOM after navigation settles.
	KeywordWaitTimeout time.Duration // default: 8s

	// MaxAttempts is the retry budget for rendering and discovery.
	MaxAttempts int // default: 3

	// RetryBackoff is the base of the linear backoff between attempts
	// (attempt N sleeps N times this value).
	RetryBackoff time.Duration // default: 2s

	// MaxCount is the plausibility ceiling: extracted values above it are
	// rejected as accidental captures (page IDs, years).
	MaxCount int // default: 5000

	// KeywordGap is the maximum character distance between a number and a
	// keyword for the pair to count as associated.
	KeywordGap int // default: 40

	// TailSliceLen bounds the leading slice of raw markup scanned as the
	// extraction ladder's last resort.
	TailSliceLen int // default: 2000
}

// AuthConfig controls shared-secret gating of the check endpoint.
type AuthConfig struct {
	// Token is the shared secret expected in the X-Probe-Token header.
	// Empty disables gating entirely (open access).
	Token string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// SiteConfig describes one country's promotion listing.
type SiteConfig struct {
	// Country is the unique key, a lowercase ISO code like "de".
	Country string `yaml:"country"`

	// RootURL is the site root, e.g. "https://www.example.de".
	RootURL string `yaml:"root_url"`

	// ListingPath is the path of the promotion listing page, e.g. "/angebote/".
	ListingPath string `yaml:"listing_path"`

	// Locale is the BCP 47 tag used for Accept-Language, e.g. "de-DE".
	Locale string `yaml:"locale"`

	// Keywords are the localized phrases a count is expected next to,
	// ordered by priority.
	Keywords []string `yaml:"keywords"`

	// ForceRender marks JS-heavy sites where lightweight retrieval is
	// known to return an empty shell.
	ForceRender bool `yaml:"force_render"`
}

// ListingURL returns the absolute URL of the site's listing page.
func (s SiteConfig) ListingURL() string {
	return strings.TrimRight(s.RootURL, "/") + s.ListingPath
}

// Validate checks that a site entry is usable.
func (s SiteConfig) Validate() error {
	if s.Country == "" {
		return fmt.Errorf("site missing country code")
	}
	if !strings.HasPrefix(s.RootURL, "http://") && !strings.HasPrefix(s.RootURL, "https://") {
		return fmt.Errorf("site %s: root_url must be absolute, got %q", s.Country, s.RootURL)
	}
	if s.ListingPath == "" || !strings.HasPrefix(s.ListingPath, "/") {
		return fmt.Errorf("site %s: listing_path must start with /", s.Country)
	}
	if len(s.Keywords) == 0 {
		return fmt.Errorf("site %s: at least one keyword required", s.Country)
	}
	return nil
}

// Load reads configuration from environment variables with sane defaults.
// When PROMOWATCH_SITES_FILE is set, the site list is loaded from that YAML
// file instead of the built-in defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("PROMOWATCH_HOST", "0.0.0.0"),
			Port: envIntOr("PROMOWATCH_PORT", 8080),
			Mode: envOr("PROMOWATCH_MODE", "release"),
		},
		Browser: BrowserConfig{
			Enabled:        envBoolOr("PROMOWATCH_BROWSER_ENABLED", true),
			Headless:       envBoolOr("PROMOWATCH_HEADLESS", true),
			NoSandbox:      envBoolOr("PROMOWATCH_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("PROMOWATCH_BROWSER_BIN"),
			ViewportWidth:  envIntOr("PROMOWATCH_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("PROMOWATCH_VIEWPORT_HEIGHT", 768),
		},
		Probe: ProbeConfig{
			FetchTimeout:       envDurationOr("PROBE_FETCH_TIMEOUT", 20*time.Second),
			RenderBaseTimeout:  envDurationOr("PROBE_RENDER_TIMEOUT", 60*time.Second),
			KeywordWaitTimeout: envDurationOr("PROBE_KEYWORD_WAIT", 8*time.Second),
			MaxAttempts:        envIntOr("PROBE_MAX_ATTEMPTS", 3),
			RetryBackoff:       envDurationOr("PROBE_RETRY_BACKOFF", 2*time.Second),
			MaxCount:           envIntOr("PROBE_MAX_COUNT", 5000),
			KeywordGap:         envIntOr("PROBE_KEYWORD_GAP", 40),
			TailSliceLen:       envIntOr("PROBE_TAIL_SLICE", 2000),
		},
		Auth: AuthConfig{
			Token: os.Getenv("PROMOWATCH_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PROMOWATCH_RATE_RPS", 1.0),
			Burst:             envIntOr("PROMOWATCH_RATE_BURST", 3),
		},
		Log: LogConfig{
			Level:  envOr("PROMOWATCH_LOG_LEVEL", "info"),
			Format: envOr("PROMOWATCH_LOG_FORMAT", "json"),
		},
	}

	sites, err := loadSites(os.Getenv("PROMOWATCH_SITES_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Sites = sites

	return cfg, nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
