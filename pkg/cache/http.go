package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the fallback TTL when the response carries no caching headers.
	DefaultTTL = 1 * time.Minute
)

// TTLFromHeaders derives a cache lifetime from a catalog API response.
// Cache-Control max-age wins over Expires; no-store yields 0.
func TTLFromHeaders(headers http.Header) time.Duration {
	if cc := headers.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			directive = strings.TrimSpace(strings.ToLower(directive))
			switch {
			case directive == "no-store" || directive == "no-cache":
				return 0
			case strings.HasPrefix(directive, "max-age="):
				seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
				if err == nil && seconds >= 0 {
					return time.Duration(seconds) * time.Second
				}
			}
		}
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return DefaultTTL
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return DefaultTTL
	}

	ttl := time.Until(expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
