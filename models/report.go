package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Count is an extracted item count that may be unknown. It marshals to the
// plain integer when known and to the string "unknown" otherwise, so reports
// stay readable without a separate status field.
type Count struct {
	Value int
	Known bool
}

// KnownCount wraps a successfully extracted value.
func KnownCount(v int) Count { return Count{Value: v, Known: true} }

// UnknownCount is the zero Count, spelled out for readability at call sites.
var UnknownCount = Count{}

func (c Count) String() string {
	if !c.Known {
		return "unknown"
	}
	return fmt.Sprintf("%d", c.Value)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return json.Marshal("unknown")
	}
	return json.Marshal(c.Value)
}

func (c *Count) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*c = Count{Value: v, Known: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != "unknown" {
		return fmt.Errorf("invalid count %q", s)
	}
	*c = Count{}
	return nil
}

// PageOutcome is the result of probing one candidate page. It is created
// once per URL per run and never mutated afterwards.
type PageOutcome struct {
	// URL is the canonical absolute page URL.
	URL string `json:"url"`

	// Count is the extracted item count, or unknown when every extraction
	// stage came up empty.
	Count Count `json:"count"`

	// Snippet is a short slice of the text the count was extracted from,
	// kept for diagnostics.
	Snippet string `json:"snippet,omitempty"`

	// Source names the pipeline stage that produced the count
	// ("http", "render", "tail"). Empty when unknown.
	Source string `json:"source,omitempty"`
}

// PageFailure records an unexpected error during one page's pipeline.
type PageFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// CountrySummary aggregates the outcomes for one configured site.
type CountrySummary struct {
	Country string `json:"country"`

	// DatePagesFound is the number of discovered candidates whose URL
	// matches the date-page pattern.
	DatePagesFound int `json:"date_pages_found"`

	Pages    []PageOutcome `json:"pages"`
	Failures []PageFailure `json:"failures,omitempty"`

	// Error is set when processing the whole country failed outside the
	// per-page loop (e.g. malformed configuration).
	Error string `json:"error,omitempty"`
}

// BatchReport is the terminal artifact of one check invocation.
type BatchReport struct {
	Timestamp time.Time                 `json:"timestamp"`
	Countries map[string]CountrySummary `json:"countries"`
}

// Text renders the flattened report form: one block per country with a
// country-code header, the date-page count, and one line per probed page.
func (r *BatchReport) Text(order []string) string {
	var b strings.Builder
	for i, code := range order {
		summary, ok := r.Countries[code]
		if !ok {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(summary.Country))
		fmt.Fprintf(&b, "Date pages found: %d\n", summary.DatePagesFound)
		if summary.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", summary.Error)
		}
		for _, page := range summary.Pages {
			fmt.Fprintf(&b, "%s - Product found %s\n", page.URL, page.Count)
		}
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "%s - failed: %s\n", f.URL, f.Reason)
		}
	}
	return b.String()
}
