package cache

import (
	"time"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

// CacheEntry is a cached product page.
type CacheEntry struct {
	Page catalog.Page `json:"page"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the page was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry wraps page with a lifetime of ttl.
func NewEntry(page catalog.Page, ttl time.Duration) *CacheEntry {
	now := time.Now()
	return &CacheEntry{
		Page:     page,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
