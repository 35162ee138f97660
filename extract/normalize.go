package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// thousandsSep matches a separator character sitting between a digit and a
// group of exactly three digits. The trailing capture keeps the character
// after the group so the rewrite cannot eat into longer digit runs.
var thousandsSep = regexp.MustCompile(`([0-9])[., ]([0-9]{3})($|[^0-9])`)

// nonNumeric strips everything that is not a digit or a leading minus.
var nonNumeric = regexp.MustCompile(`[^0-9-]`)

// Number normalizes a localized numeric token into an integer.
//
// Thousands separators (".", "," or a space between a digit and exactly
// three more digits) are removed; non-breaking and narrow spaces are treated
// as ordinary spaces first. Returns false when nothing digit-like remains.
// Negative values parse successfully; callers decide whether to reject them.
func Number(token string) (int, bool) {
	s := strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ").Replace(token)

	// Collapse grouped digits one separator at a time: "1.234.567" needs
	// two passes because the matches overlap.
	for {
		replaced := thousandsSep.ReplaceAllString(s, "$1$2$3")
		if replaced == s {
			break
		}
		s = replaced
	}

	s = nonNumeric.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
