// Package probe composes the acquisition and extraction tiers into the
// per-page, per-country and batch pipelines. Failures are contained at the
// narrowest applicable scope: a page failure never stops its siblings, a
// country failure never stops the batch.
package probe

import (
	"context"
	"net/url"
	"time"

	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/engine"
	"github.com/promowatch/promowatch/extract"
	"github.com/promowatch/promowatch/models"
)

// Prober runs promotion-count checks over the configured sites.
type Prober struct {
	cfg       config.ProbeConfig
	sites     []config.SiteConfig
	fetcher   engine.Fetcher
	renderer  engine.Renderer // nil when the rendering capability is unavailable
	memory    *engine.RenderMemory
	extractor *extract.Extractor

	// tailExtractor adds the greedy last-resort stage, used only on the
	// bounded leading slice after both retrieval tiers came up empty.
	tailExtractor *extract.Extractor

	metrics *Metrics
	retry   engine.RetryPolicy
}

// New creates a Prober. renderer may be nil: the pipeline then degrades to
// lightweight retrieval only and render-dependent pages come back unknown.
// metrics may be nil (all recording becomes a no-op).
func New(cfg config.ProbeConfig, sites []config.SiteConfig, fetcher engine.Fetcher, renderer engine.Renderer, metrics *Metrics) *Prober {
	return &Prober{
		cfg:           cfg,
		sites:         sites,
		fetcher:       fetcher,
		renderer:      renderer,
		memory:        engine.NewRenderMemory(128),
		extractor:     extract.New(cfg.MaxCount, cfg.KeywordGap, false),
		tailExtractor: extract.New(cfg.MaxCount, cfg.KeywordGap, true),
		metrics:       metrics,
		retry: engine.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			BaseTimeout: cfg.RenderBaseTimeout,
			Backoff:     cfg.RetryBackoff,
		},
	}
}

// RenderingAvailable reports whether the browser tier is usable.
func (p *Prober) RenderingAvailable() bool {
	return p.renderer != nil
}

// CountryOrder returns the configured country codes in site-list order,
// used for the deterministic text rendering.
func (p *Prober) CountryOrder() []string {
	order := make([]string, len(p.sites))
	for i, s := range p.sites {
		order[i] = s.Country
	}
	return order
}

// Run executes one full batch check: every configured country, every
// discovered candidate page. One country's failure must not prevent others
// from completing.
func (p *Prober) Run(ctx context.Context) *models.BatchReport {
	p.metrics.IncBatchRun()

	report := &models.BatchReport{
		Timestamp: time.Now().UTC(),
		Countries: make(map[string]models.CountrySummary, len(p.sites)),
	}
	for _, site := range p.sites {
		report.Countries[site.Country] = p.probeCountry(ctx, site)
	}
	return report
}

// hostOf returns the hostname of a URL, or "" when unparseable.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
