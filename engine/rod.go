package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// DefaultRenderTimeout bounds one render attempt when the request does not
// specify its own.
const DefaultRenderTimeout = 60 * time.Second

// renderSession is one disposable browser tab. Close must be safe to call
// on every exit path; leaking sessions exhausts browser processes across
// retries, which is the primary failure mode the renderer guards against.
type renderSession interface {
	Navigate(ctx context.Context, url string) error
	Settle(ctx context.Context)
	WaitKeyword(ctx context.Context, keywords []string, timeout time.Duration) bool
	VisibleText(ctx context.Context) (string, error)
	HeadingText(ctx context.Context) string
	Close()
}

// RodRenderer drives rendering sessions on a shared rod browser. Each
// Render call owns its session end-to-end; nothing persists between calls.
type RodRenderer struct {
	newSession func(locale string) (renderSession, error)
}

// NewRodRenderer creates a renderer on the given browser with a fixed
// viewport.
func NewRodRenderer(browser *rod.Browser, viewportWidth, viewportHeight int) *RodRenderer {
	return &RodRenderer{
		newSession: func(locale string) (renderSession, error) {
			return newRodSession(browser, viewportWidth, viewportHeight, locale)
		},
	}
}

// Render loads the page in a fresh session, waits for the DOM to settle,
// optionally waits for a keyword to appear, and reads the visible text.
//
// Navigation errors are swallowed: the session still attempts to read
// whatever DOM loaded. The session is torn down on every exit path.
func (r *RodRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	sess, err := r.newSession(req.Locale)
	if err != nil {
		return nil, fmt.Errorf("render: acquire session: %w", err)
	}
	defer sess.Close()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sess.Navigate(navCtx, req.URL); err != nil {
		slog.Debug("render: navigation error, reading partial DOM",
			"url", req.URL, "error", err)
	}
	sess.Settle(navCtx)

	if len(req.WaitKeywords) > 0 {
		wait := req.KeywordWait
		if wait <= 0 {
			wait = 8 * time.Second
		}
		if !sess.WaitKeyword(navCtx, req.WaitKeywords, wait) {
			slog.Debug("render: no keyword appeared before deadline", "url", req.URL)
		}
	}

	text, err := sess.VisibleText(navCtx)
	if err != nil {
		return nil, fmt.Errorf("render: read visible text: %w", err)
	}
	return &RenderResult{
		Text:        text,
		HeadingText: sess.HeadingText(navCtx),
	}, nil
}

// rodSession wraps one rod page as a renderSession.
type rodSession struct {
	page *rod.Page
}

func newRodSession(browser *rod.Browser, width, height int, locale string) (renderSession, error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	s := &rodSession{page: page}

	// Stealth and headers must be installed before navigation to take
	// effect for the target page.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("render: stealth injection failed, proceeding without", "error", err)
	}
	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      chromeUA,
		AcceptLanguage: acceptLanguage(locale),
	})
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	return s, nil
}

func (s *rodSession) Navigate(ctx context.Context, target string) error {
	p := s.page.Context(ctx)

	// A plausible referer reduces bot-wall friction on retail sites.
	if u, err := url.Parse(target); err == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
			},
		}.Call(p)
	}
	return p.Navigate(target)
}

func (s *rodSession) Settle(ctx context.Context) {
	p := s.page.Context(ctx)
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("render: WaitDOMStable did not converge, proceeding with current DOM",
			"error", err)
	}
}

func (s *rodSession) WaitKeyword(ctx context.Context, keywords []string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		text, err := s.VisibleText(ctx)
		if err == nil {
			lower := strings.ToLower(text)
			for _, kw := range keywords {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					return true
				}
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (s *rodSession) VisibleText(ctx context.Context) (string, error) {
	p := s.page.Context(ctx)
	res, err := p.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (s *rodSession) HeadingText(ctx context.Context) string {
	p := s.page.Context(ctx)
	res, err := p.Eval(`() => {
		const parts = [];
		for (const el of document.querySelectorAll('h1, h2, h3')) {
			parts.push(el.innerText);
			if (el.nextElementSibling) parts.push(el.nextElementSibling.innerText);
		}
		return parts.join('\n');
	}`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// Close uses the original page reference (without a request context) so
// teardown succeeds even after the request context has expired.
func (s *rodSession) Close() {
	if err := s.page.Close(); err != nil {
		slog.Warn("render: failed to close page", "error", err)
	}
}
