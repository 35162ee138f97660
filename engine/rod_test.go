package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession implements renderSession and counts teardown calls.
type fakeSession struct {
	text       string
	heading    string
	navErr     error
	textErr    error
	closeCount *int
}

func (s *fakeSession) Navigate(context.Context, string) error { return s.navErr }
func (s *fakeSession) Settle(context.Context)                 {}
func (s *fakeSession) WaitKeyword(_ context.Context, _ []string, _ time.Duration) bool {
	return true
}
func (s *fakeSession) VisibleText(context.Context) (string, error) { return s.text, s.textErr }
func (s *fakeSession) HeadingText(context.Context) string          { return s.heading }
func (s *fakeSession) Close()                                      { *s.closeCount++ }

func fakeRenderer(sessions []*fakeSession) *RodRenderer {
	i := 0
	return &RodRenderer{
		newSession: func(string) (renderSession, error) {
			s := sessions[i]
			i++
			return s, nil
		},
	}
}

func TestRender_ReturnsVisibleText(t *testing.T) {
	closes := 0
	r := fakeRenderer([]*fakeSession{{
		text:       "Es wurden 37 Aktionsartikel gefunden",
		heading:    "Angebote\n37 Aktionsartikel",
		closeCount: &closes,
	}})

	res, err := r.Render(context.Background(), &RenderRequest{URL: "https://example.test/"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "37 Aktionsartikel")
	assert.Contains(t, res.HeadingText, "Angebote")
	assert.Equal(t, 1, closes)
}

func TestRender_NavigationErrorIsSwallowed(t *testing.T) {
	closes := 0
	r := fakeRenderer([]*fakeSession{{
		text:       "partial DOM content",
		navErr:     errors.New("net::ERR_TIMED_OUT"),
		closeCount: &closes,
	}})

	res, err := r.Render(context.Background(), &RenderRequest{URL: "https://example.test/"})
	require.NoError(t, err, "navigation failure must not be fatal")
	assert.Equal(t, "partial DOM content", res.Text)
	assert.Equal(t, 1, closes)
}

func TestRender_TeardownOnEveryPath(t *testing.T) {
	// N invocations, mixed success and failure, must produce exactly N
	// session teardowns.
	closes := 0
	sessions := []*fakeSession{
		{text: "ok", closeCount: &closes},
		{textErr: errors.New("page crashed"), closeCount: &closes},
		{text: "ok", navErr: errors.New("nav failed"), closeCount: &closes},
		{textErr: errors.New("page crashed"), navErr: errors.New("nav failed"), closeCount: &closes},
	}
	r := fakeRenderer(sessions)

	for range sessions {
		_, _ = r.Render(context.Background(), &RenderRequest{URL: "https://example.test/"})
	}
	assert.Equal(t, len(sessions), closes)
}

func TestRender_SessionAcquisitionFailure(t *testing.T) {
	r := &RodRenderer{
		newSession: func(string) (renderSession, error) {
			return nil, errors.New("browser gone")
		},
	}

	_, err := r.Render(context.Background(), &RenderRequest{URL: "https://example.test/"})
	assert.Error(t, err)
}
