package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/engine"
	"github.com/promowatch/promowatch/extract"
	"github.com/promowatch/promowatch/models"
)

// probePage runs the extraction ladder for one candidate page. It never
// propagates an error past the page boundary: internal failures become an
// unknown count, unexpected ones are returned for the failure record.
func (p *Prober) probePage(ctx context.Context, site config.SiteConfig, pageURL string) (outcome models.PageOutcome, err error) {
	outcome = models.PageOutcome{URL: pageURL, Count: models.UnknownCount}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page pipeline panicked: %v", r)
		}
	}()

	host := hostOf(pageURL)
	skipFetch := site.ForceRender || p.memory.NeedsRender(host)

	// Tier 1: lightweight retrieval. lastText keeps whatever was obtained
	// for the last-resort slice.
	var lastText string
	var fetchErr, renderErr error
	fetched := false
	rendered := false
	if !skipFetch {
		markup, ferr := p.fetcher.Fetch(ctx, &engine.FetchRequest{
			URL:     pageURL,
			Locale:  site.Locale,
			Timeout: p.cfg.FetchTimeout,
		})
		if ferr != nil {
			fetchErr = ferr
			p.metrics.IncFetchFailure()
			slog.Debug("lightweight fetch unavailable", "url", pageURL, "error", ferr)
		} else {
			fetched = true
			lastText = markup
			// Heading windows first to avoid numbers in page chrome,
			// then the whole visible text.
			for _, text := range []string{extract.HeadingWindows(markup), extract.VisibleText(markup)} {
				if v, ok := p.extractor.Count(text, site.Keywords); ok {
					p.metrics.IncExtracted("http")
					return p.found(outcome, v, text, "http"), nil
				}
			}
		}
	}

	// Tier 2: browser rendering.
	if p.renderer != nil {
		res, rerr := p.renderer.Render(ctx, &engine.RenderRequest{
			URL:          pageURL,
			Locale:       site.Locale,
			Timeout:      p.cfg.RenderBaseTimeout,
			WaitKeywords: site.Keywords,
			KeywordWait:  p.cfg.KeywordWaitTimeout,
		})
		if rerr != nil {
			renderErr = rerr
			p.metrics.IncRenderFailure()
			slog.Debug("render unavailable", "url", pageURL, "error", rerr)
		} else {
			rendered = true
			if res.Text != "" {
				lastText = res.Text
			}
			for _, text := range []string{res.HeadingText, res.Text} {
				if v, ok := p.extractor.Count(text, site.Keywords); ok {
					if !fetched && !skipFetch {
						// Lightweight retrieval failed where rendering
						// succeeded: remember the host.
						p.memory.MarkNeedsRender(host)
					}
					p.metrics.IncExtracted("render")
					return p.found(outcome, v, text, "render"), nil
				}
			}
		}
	}

	// Tier 3: last resort, a bounded leading slice of whatever text or
	// markup was retrieved.
	if tail := leadingSlice(lastText, p.cfg.TailSliceLen); tail != "" {
		if v, ok := p.tailExtractor.Count(extract.VisibleText(tail), site.Keywords); ok {
			p.metrics.IncExtracted("tail")
			return p.found(outcome, v, tail, "tail"), nil
		}
	}

	// An unknown count is a value when content was acquired; when no tier
	// acquired anything, the classified acquisition error goes into the
	// failure record instead.
	if !fetched && !rendered {
		if perr := classifyAcquisition(fetchErr, renderErr); perr != nil {
			return outcome, perr
		}
	}
	return outcome, nil
}

// classifyAcquisition wraps the pipeline's acquisition errors in a coded
// error for the failure record. Timeouts take priority, then the deepest
// tier that was attempted.
func classifyAcquisition(fetchErr, renderErr error) *models.ProbeError {
	for _, err := range []error{renderErr, fetchErr} {
		if err == nil {
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.NewProbeError(models.ErrCodeTimeout, "page acquisition timed out", err)
		}
	}
	if renderErr != nil {
		return models.NewProbeError(models.ErrCodeRenderFailed, "browser rendering failed", renderErr)
	}
	if fetchErr != nil {
		return models.NewProbeError(models.ErrCodeFetchFailed, "lightweight retrieval failed", fetchErr)
	}
	return nil
}

// found fills in a successful outcome.
func (p *Prober) found(outcome models.PageOutcome, v int, text, source string) models.PageOutcome {
	outcome.Count = models.KnownCount(v)
	outcome.Source = source
	outcome.Snippet = snippet(text)
	return outcome
}

// snippet returns a short single-line diagnostic slice of the source text.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const max = 160
	if len(text) > max {
		text = text[:max]
	}
	return text
}

// leadingSlice bounds text to its first n bytes without splitting a rune.
func leadingSlice(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	cut := text[:n]
	for len(cut) > 0 && !isRuneStart(text[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func isRuneStart(b byte) bool { return b&0xc0 != 0x80 }
