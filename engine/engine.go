// Package engine contains the two page-acquisition tiers: a lightweight
// HTTP fetcher and a browser-based renderer. Retry policy belongs to the
// callers; engines perform exactly one attempt per call and keep no state
// between calls.
package engine

import (
	"context"
	"time"
)

// Fetcher retrieves raw page markup without JavaScript execution.
type Fetcher interface {
	Fetch(ctx context.Context, req *FetchRequest) (string, error)
}

// Renderer drives a disposable browser session and returns rendered text.
type Renderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
}

// FetchRequest describes one lightweight retrieval.
type FetchRequest struct {
	URL string

	// Locale drives the Accept-Language header, e.g. "de-DE".
	Locale string

	// Timeout bounds the whole request. Zero means DefaultFetchTimeout.
	Timeout time.Duration
}

// RenderRequest describes one browser-rendering retrieval.
type RenderRequest struct {
	URL    string
	Locale string

	// Timeout bounds navigation and settling for this attempt.
	Timeout time.Duration

	// WaitKeywords, when non-empty, makes the session wait up to
	// KeywordWait for any of the phrases to appear in visible text.
	WaitKeywords []string
	KeywordWait  time.Duration
}

// RenderResult is the output of a successful render.
type RenderResult struct {
	// Text is the whole page's visible text.
	Text string

	// HeadingText is the targeted text of heading-like elements and their
	// immediate following sibling, one window per line.
	HeadingText string
}
