// Package cache memoizes pure per-token-type computations. Decomposition
// and classification depend only on the raw string and the fixed vocabulary,
// so caching by raw string is safe; the effective vocabulary is small (low
// thousands of types) relative to total token count.
package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Memo caches decompositions and classifications keyed by raw token string.
type Memo struct {
	store *gocache.Cache
}

// NewMemo creates an unbounded, non-expiring memo store.
func NewMemo() *Memo {
	return &Memo{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Decomposition returns the cached decomposition for raw, if present.
func (m *Memo) Decomposition(raw string) (model.Decomposition, bool) {
	if v, ok := m.store.Get("d:" + raw); ok {
		return v.(model.Decomposition), true
	}
	return model.Decomposition{}, false
}

// SetDecomposition caches the decomposition for raw.
func (m *Memo) SetDecomposition(raw string, d model.Decomposition) {
	m.store.Set("d:"+raw, d, gocache.NoExpiration)
}

// Classification returns the cached classification for raw, if present.
func (m *Memo) Classification(raw string) (model.Classification, bool) {
	if v, ok := m.store.Get("c:" + raw); ok {
		return v.(model.Classification), true
	}
	return model.Classification{}, false
}

// SetClassification caches the classification for raw.
func (m *Memo) SetClassification(raw string, c model.Classification) {
	m.store.Set("c:"+raw, c, gocache.NoExpiration)
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	return m.store.ItemCount()
}

// Clear drops all cached entries. Needed when a new vocabulary version is
// loaded mid-process.
func (m *Memo) Clear() {
	m.store.Flush()
}
