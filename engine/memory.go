package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// RenderMemory remembers hosts where lightweight retrieval came back empty
// but rendering produced usable text. Later pages on such hosts skip the
// HTTP tier and go straight to the renderer. Bounded by an LRU so a large
// site list cannot grow it without limit. Safe for concurrent use.
type RenderMemory struct {
	cache *lru.Cache[string, struct{}]
}

// NewRenderMemory creates a RenderMemory holding up to size hosts.
func NewRenderMemory(size int) *RenderMemory {
	if size <= 0 {
		size = 128
	}
	// lru.New only errors on non-positive size, which is guarded above.
	cache, _ := lru.New[string, struct{}](size)
	return &RenderMemory{cache: cache}
}

// NeedsRender reports whether the host was previously seen to require
// rendering.
func (m *RenderMemory) NeedsRender(host string) bool {
	if m == nil {
		return false
	}
	_, ok := m.cache.Get(host)
	return ok
}

// MarkNeedsRender records that lightweight retrieval is not sufficient for
// the host.
func (m *RenderMemory) MarkNeedsRender(host string) {
	if m == nil {
		return
	}
	m.cache.Add(host, struct{}{})
}
