// Package cache stores fetched product pages in Redis.
//
// Pages are keyed by the filter, cursor, and limit that produced them, so a
// repeated request for the same slice of the listing is served without
// calling the catalog API.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.PageKey{
//		Filter: catalog.Filter{CategoryID: "1"},
//		Cursor: 2,
//		Limit:  20,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the catalog API, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(page, cache.TTLFromHeaders(resp.Header)))
//	}
//
// After a product is created every cached page may be stale;
// InvalidateAll drops them.
//
// # Metrics
//
//   - storefront_cache_hits_total - Cache hits
//   - storefront_cache_misses_total - Cache misses
//   - storefront_cache_invalidations_total - Keys dropped by InvalidateAll
//   - storefront_cache_errors_total{operation} - Cache operation errors
package cache
