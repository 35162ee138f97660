// Package extract finds a localized "items found" count inside page text.
//
// Markup structure and phrasing vary per site and locale, so extraction is a
// graceful-degradation ladder rather than one fixed pattern: keyword/number
// proximity first, then a line-oriented scan, then (optionally) the largest
// plausible numeric token in the whole block.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	// DefaultCeiling is the plausibility ceiling: values above it are
	// assumed to be accidental captures (page IDs, years), not counts.
	DefaultCeiling = 5000

	// DefaultGap is the maximum character distance between a number and a
	// keyword for the pair to count as associated.
	DefaultGap = 40
)

// numToken matches one localized numeric token, including grouped digits
// ("1.234", "1,234", "1 234", NBSP variants). Never crosses a newline.
var numToken = regexp.MustCompile(`[0-9][0-9., \x{00a0}\x{202f}]*`)

// Extractor extracts an item count from a block of text using an ordered
// keyword list. The zero value is not usable; call New.
type Extractor struct {
	// Ceiling is the maximum accepted value (inclusive).
	Ceiling int

	// Gap bounds the number/keyword character distance for stage one.
	Gap int

	// Greedy enables the last-resort stage: the maximum of all plausible
	// numeric tokens (> 1) in the block. Used in multi-country mode where
	// missing a count is worse than an occasional misattribution.
	Greedy bool

	mu       sync.Mutex
	patterns map[string][2]*regexp.Regexp
}

// New creates an Extractor. Non-positive ceiling or gap fall back to the
// defaults.
func New(ceiling, gap int, greedy bool) *Extractor {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if gap <= 0 {
		gap = DefaultGap
	}
	return &Extractor{
		Ceiling:  ceiling,
		Gap:      gap,
		Greedy:   greedy,
		patterns: make(map[string][2]*regexp.Regexp),
	}
}

// Plausible reports whether v is acceptable as a genuine extracted count.
func (e *Extractor) Plausible(v int) bool {
	return v >= 0 && v <= e.Ceiling
}

// Count finds the integer most plausibly associated with one of the
// keywords. Earlier keywords win over later ones; within one keyword the
// "number before keyword" form wins over "keyword before number".
func (e *Extractor) Count(text string, keywords []string) (int, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	// Stage 1: keyword/number proximity.
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		before, after := e.keywordPatterns(kw)
		for _, re := range []*regexp.Regexp{before, after} {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				if v, ok := Number(m[1]); ok && e.Plausible(v) {
					return v, true
				}
			}
		}
	}

	// Stage 2: line-oriented scan around keyword lines.
	if v, ok := e.lineScan(text, keywords); ok {
		return v, true
	}

	// Stage 3: largest plausible token anywhere.
	if e.Greedy {
		return e.maxToken(text)
	}
	return 0, false
}

// keywordPatterns returns the compiled proximity patterns for one keyword,
// caching them since the keyword lists are fixed per site.
func (e *Extractor) keywordPatterns(kw string) (before, after *regexp.Regexp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pair, ok := e.patterns[kw]; ok {
		return pair[0], pair[1]
	}
	quoted := regexp.QuoteMeta(kw)
	gap := `[^0-9\n]{0,` + strconv.Itoa(e.Gap) + `}`
	before = regexp.MustCompile(`(?i)(` + numToken.String() + `)` + gap + quoted)
	after = regexp.MustCompile(`(?i)` + quoted + gap + `(` + numToken.String() + `)`)
	e.patterns[kw] = [2]*regexp.Regexp{before, after}
	return before, after
}

// lineScan looks for a line containing any keyword and takes the first
// number on that line, else on the previous line, else on the next one.
func (e *Extractor) lineScan(text string, keywords []string) (int, bool) {
	lines := strings.Split(text, "\n")
	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}

	for _, kw := range keywords {
		needle := strings.ToLower(kw)
		if needle == "" {
			continue
		}
		for i := range lines {
			if !strings.Contains(lower[i], needle) {
				continue
			}
			for _, j := range []int{i, i - 1, i + 1} {
				if j < 0 || j >= len(lines) {
					continue
				}
				if v, ok := e.firstNumber(lines[j]); ok {
					return v, true
				}
			}
		}
	}
	return 0, false
}

// firstNumber returns the first plausible number on a line.
func (e *Extractor) firstNumber(line string) (int, bool) {
	for _, tok := range numToken.FindAllString(line, -1) {
		if v, ok := Number(tok); ok && e.Plausible(v) {
			return v, true
		}
	}
	return 0, false
}

// maxToken returns the largest plausible numeric token greater than 1.
func (e *Extractor) maxToken(text string) (int, bool) {
	best, found := 0, false
	for _, tok := range numToken.FindAllString(text, -1) {
		v, ok := Number(tok)
		if !ok || !e.Plausible(v) || v <= 1 {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}
