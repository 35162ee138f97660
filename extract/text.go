package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// VisibleText strips tags from markup, returning the text a browser would
// display. Script, style and noscript content is skipped. Each text node
// becomes its own line so line-oriented extraction keeps working.
func VisibleText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var buf strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte('\n')
				}
			}
		}
	}
}

// HeadingWindows returns the text of heading-like elements and their
// immediate following sibling, one per line. Counts usually sit in or right
// after a page heading, so scanning these windows first avoids matching
// unrelated numbers in page chrome.
func HeadingWindows(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	doc.Find("h1, h2, h3, [class*=result], [class*=count]").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			buf.WriteString(text)
			buf.WriteByte('\n')
		}
		if next := strings.TrimSpace(sel.Next().Text()); next != "" {
			buf.WriteString(next)
			buf.WriteByte('\n')
		}
	})
	return buf.String()
}
