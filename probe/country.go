package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/discover"
	"github.com/promowatch/promowatch/engine"
	"github.com/promowatch/promowatch/models"
)

// probeCountry processes one site: discover candidate pages, probe each,
// aggregate. Anything unexpected escaping the per-page loop is recorded as
// a country-level error instead of aborting the batch.
func (p *Prober) probeCountry(ctx context.Context, site config.SiteConfig) (summary models.CountrySummary) {
	summary = models.CountrySummary{Country: site.Country}

	defer func() {
		if r := recover(); r != nil {
			summary.Error = fmt.Sprintf("country pipeline panicked: %v", r)
			p.metrics.IncCountryError(site.Country)
			slog.Error("country probe panicked", "country", site.Country, "panic", r)
		}
	}()

	if err := site.Validate(); err != nil {
		summary.Error = err.Error()
		p.metrics.IncCountryError(site.Country)
		return summary
	}

	listing := site.ListingURL()
	candidates := p.discoverCandidates(ctx, site, listing)

	// The listing root is always probed, so even a total discovery failure
	// yields at least one outcome.
	candidates[listing] = struct{}{}

	// Deterministic order: listing root first, the rest sorted.
	ordered := make([]string, 0, len(candidates))
	for u := range candidates {
		if u != listing {
			ordered = append(ordered, u)
		}
	}
	sort.Strings(ordered)
	ordered = append([]string{listing}, ordered...)

	for _, u := range ordered {
		if discover.IsDatePage(u) {
			summary.DatePagesFound++
		}
	}

	for _, u := range ordered {
		p.metrics.IncPage(site.Country)
		outcome, err := p.probePage(ctx, site, u)
		summary.Pages = append(summary.Pages, outcome)
		if err != nil {
			summary.Failures = append(summary.Failures, models.PageFailure{
				URL:    u,
				Reason: err.Error(),
			})
			slog.Warn("page probe failed", "country", site.Country, "url", u, "error", err)
		}
	}

	slog.Info("country probed",
		"country", site.Country,
		"pages", len(summary.Pages),
		"datePages", summary.DatePagesFound,
		"failures", len(summary.Failures),
	)
	return summary
}

// discoverCandidates fetches the listing page and extracts candidate links,
// retrying with escalating render timeouts while discovery comes up empty.
func (p *Prober) discoverCandidates(ctx context.Context, site config.SiteConfig, listing string) map[string]struct{} {
	found := make(map[string]struct{})

	p.retry.Do(ctx, func(attempt int, timeout time.Duration) bool {
		if attempt > 1 {
			p.metrics.IncRetry()
			slog.Debug("discovery retry", "country", site.Country, "attempt", attempt)
		}

		markup, err := p.fetcher.Fetch(ctx, &engine.FetchRequest{
			URL:     listing,
			Locale:  site.Locale,
			Timeout: p.cfg.FetchTimeout,
		})
		if err != nil {
			p.metrics.IncFetchFailure()
			markup = ""
		}

		// Fall back to the rendered page when plain markup yielded no
		// links; the raw date-page scan still works on visible text.
		if markup == "" || len(discover.Links(markup, site.RootURL, site.ListingPath)) == 0 {
			if p.renderer != nil {
				res, rerr := p.renderer.Render(ctx, &engine.RenderRequest{
					URL:         listing,
					Locale:      site.Locale,
					Timeout:     timeout,
					KeywordWait: p.cfg.KeywordWaitTimeout,
				})
				if rerr != nil {
					p.metrics.IncRenderFailure()
				} else if res.Text != "" {
					markup = res.Text
				}
			}
		}

		for u := range discover.Links(markup, site.RootURL, site.ListingPath) {
			found[u] = struct{}{}
		}
		return len(found) > 0
	})

	return found
}
