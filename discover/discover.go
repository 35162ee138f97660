// Package discover extracts candidate promotion-page URLs from listing
// markup. Two independent passes feed one result set: a structural anchor
// walk, and a raw pattern scan that still works on machine-generated or
// malformed markup the parser trips over.
package discover

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// datePage matches the URL shape of a day-specific promotion sub-page:
// two-digit day, two-digit month, four-digit year, ".html" suffix.
var datePage = regexp.MustCompile(`[0-9]{2}-[0-9]{2}-[0-9]{4}[^"'\s<>]*\.html`)

// datePageRef matches a full date-page reference (path or absolute URL)
// anywhere in raw markup.
var datePageRef = regexp.MustCompile(`[^"'\s<>]*[0-9]{2}-[0-9]{2}-[0-9]{4}[^"'\s<>]*\.html`)

// IsDatePage reports whether the URL points at a date-stamped promotion
// sub-page.
func IsDatePage(u string) bool {
	return datePage.MatchString(u)
}

// Links discovers candidate promotion pages in markup, resolved against the
// site root and canonicalized (absolute, no query, no fragment). The result
// is a set: iteration order carries no meaning.
func Links(markup, root, listingPath string) map[string]struct{} {
	rootURL, err := url.Parse(root)
	if err != nil || rootURL.Host == "" {
		return nil
	}

	found := make(map[string]struct{})
	add := func(ref string) {
		canonical, ok := canonicalize(ref, rootURL)
		if ok {
			found[canonical] = struct{}{}
		}
	}

	// Pass (a): anchor elements.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup)); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" ||
				strings.HasPrefix(strings.ToLower(href), "javascript:") ||
				strings.HasPrefix(strings.ToLower(href), "mailto:") {
				return
			}
			if !promotionLike(href, listingPath) {
				return
			}
			add(href)
		})
	}

	// Pass (b): raw scan for date-page references the anchor walk missed.
	for _, ref := range datePageRef.FindAllString(markup, -1) {
		add(ref)
	}

	return found
}

// promotionLike keeps only links plausibly hosting a promotion count: a
// recognized listing-path segment or the explicit date-page pattern.
func promotionLike(href, listingPath string) bool {
	if IsDatePage(href) {
		return true
	}
	segment := strings.Trim(listingPath, "/")
	return segment != "" && strings.Contains(href, segment)
}

// canonicalize resolves ref against the site root and strips query and
// fragment. Off-site references are rejected.
func canonicalize(ref string, root *url.URL) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	resolved := root.ResolveReference(u)

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !sameSite(resolved.Host, root.Host) {
		return "", false
	}

	resolved.RawQuery = ""
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), true
}

// sameSite accepts the exact host and its www-variant.
func sameSite(host, rootHost string) bool {
	trim := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return trim(host) == trim(rootHost)
}
