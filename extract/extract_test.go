package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount_KeywordAfterNumber(t *testing.T) {
	e := New(0, 0, false)

	v, ok := e.Count("Es wurden 37 Aktionsartikel gefunden", []string{"Aktionsartikel"})
	require.True(t, ok)
	assert.Equal(t, 37, v)
}

func TestCount_KeywordBeforeNumber(t *testing.T) {
	e := New(0, 0, false)

	v, ok := e.Count("actieartikelen gevonden: 1.204 stuks", []string{"actieartikelen"})
	require.True(t, ok)
	assert.Equal(t, 1204, v)
}

func TestCount_CeilingRejectsImplausible(t *testing.T) {
	e := New(0, 0, false)

	// 9999 sits right next to the keyword but exceeds the 5000 ceiling, so
	// extraction must report "not found" rather than the bogus value.
	_, ok := e.Count("9999 Aktionsartikel", []string{"Aktionsartikel"})
	assert.False(t, ok)
}

func TestCount_KeywordPriorityOrder(t *testing.T) {
	e := New(0, 0, false)

	text := "12 Produkte insgesamt\n37 Aktionsartikel gefunden"
	v, ok := e.Count(text, []string{"Aktionsartikel", "Produkte"})
	require.True(t, ok)
	assert.Equal(t, 37, v, "earlier keyword must win")
}

func TestCount_GapBoundsAssociation(t *testing.T) {
	e := New(0, 0, false)

	// The first keyword's number sits far beyond the gap, so proximity
	// matching skips it and the second keyword's pairing wins.
	filler := strings.Repeat("x", 120)
	text := "5 " + filler + " Aktionsartikel\n7 Angebote"
	v, ok := e.Count(text, []string{"Aktionsartikel", "Angebote"})
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCount_NoNewlineCrossing(t *testing.T) {
	e := New(0, 0, false)

	// Proximity matching must not pair a number with a keyword on another
	// line; the line scan still finds it via the previous-line rule.
	text := "412\nAktionsartikel diese Woche"
	v, ok := e.Count(text, []string{"Aktionsartikel"})
	require.True(t, ok)
	assert.Equal(t, 412, v)
}

func TestCount_LineScanNextLine(t *testing.T) {
	e := New(0, 0, false)

	text := "Gefundene Aktionsartikel\nInsgesamt 98 Angebote"
	v, ok := e.Count(text, []string{"Aktionsartikel"})
	require.True(t, ok)
	assert.Equal(t, 98, v)
}

func TestCount_GreedyLastResort(t *testing.T) {
	greedy := New(0, 0, true)
	strict := New(0, 0, false)

	text := "weekly deals page\n1 banner\n250 items listed\n17 categories"

	v, ok := greedy.Count(text, []string{"Aktionsartikel"})
	require.True(t, ok)
	assert.Equal(t, 250, v, "greedy mode takes the maximum plausible token")

	_, ok = strict.Count(text, []string{"Aktionsartikel"})
	assert.False(t, ok, "strict mode must not guess")
}

func TestCount_GreedyIgnoresImplausibleTokens(t *testing.T) {
	e := New(0, 0, true)

	// Page IDs are above the ceiling; 0 and 1 are below the usefulness
	// floor.
	text := "id 987654\n0 of 1\npage 10000"
	_, ok := e.Count(text, nil)
	assert.False(t, ok)
}

func TestCount_EmptyText(t *testing.T) {
	e := New(0, 0, true)
	_, ok := e.Count("   \n ", []string{"Aktionsartikel"})
	assert.False(t, ok)
}

func TestVisibleText_SkipsScriptAndStyle(t *testing.T) {
	markup := `<html><head><style>.x{color:red}</style></head>` +
		`<body><script>var n = 99123;</script><h1>Angebote</h1>` +
		`<p>37 Aktionsartikel</p></body></html>`

	text := VisibleText(markup)
	assert.Contains(t, text, "37 Aktionsartikel")
	assert.Contains(t, text, "Angebote")
	assert.NotContains(t, text, "99123")
	assert.NotContains(t, text, "color:red")
}

func TestHeadingWindows_TakesHeadingAndSibling(t *testing.T) {
	markup := `<html><body>` +
		`<nav>9876543 tracking pixel</nav>` +
		`<h1>Angebote dieser Woche</h1><p>Es wurden 37 Aktionsartikel gefunden</p>` +
		`</body></html>`

	text := HeadingWindows(markup)
	assert.Contains(t, text, "Angebote dieser Woche")
	assert.Contains(t, text, "37 Aktionsartikel")
	assert.NotContains(t, text, "9876543")
}

func TestCount_OnHeadingWindowedMarkup(t *testing.T) {
	e := New(0, 0, false)
	markup := `<div id="p-573829"><h2>Acties</h2><span>250 actieartikelen</span></div>`

	v, ok := e.Count(HeadingWindows(markup), []string{"actieartikelen"})
	require.True(t, ok)
	assert.Equal(t, 250, v)
}
