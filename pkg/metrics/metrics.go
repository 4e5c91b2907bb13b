// Package metrics exposes the Prometheus registry the storefront metrics are
// registered with. The collectors themselves live next to the code that
// updates them (client, cache, operation, pagination, cart, storefront).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is where promauto registers every storefront collector.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the read side of Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics
//
// Catalog client (pkg/client):
//   - storefront_catalog_requests_total{endpoint, status} (Counter)
//   - storefront_catalog_request_duration_seconds{endpoint} (Histogram)
//   - storefront_catalog_errors_total{class} (Counter): client, server, network, decode
//
// Page cache (pkg/cache):
//   - storefront_cache_hits_total (Counter)
//   - storefront_cache_misses_total (Counter)
//   - storefront_cache_invalidations_total (Counter): keys removed after a product was created
//   - storefront_cache_errors_total{operation} (Counter)
//
// Operations (pkg/operation):
//   - storefront_operations_total{operation, status} (Counter): settled runs
//   - storefront_operation_duration_seconds{operation} (Histogram)
//   - storefront_operations_in_flight{operation} (Gauge)
//
// Pagination (pkg/pagination):
//   - storefront_pages_loaded_total{kind} (Counter): initial or next
//   - storefront_next_page_skipped_total{reason} (Counter): in_progress or no_more_pages
//
// Cart and actions:
//   - storefront_cart_items_added_total (Counter)
//   - storefront_gated_actions_total{action, outcome} (Counter)
//
// Example queries:
//
//	# page cache hit rate
//	sum(rate(storefront_cache_hits_total[5m])) /
//	(sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//	# share of gated actions sent to login
//	sum(rate(storefront_gated_actions_total{outcome="redirected_to_login"}[5m])) /
//	sum(rate(storefront_gated_actions_total[5m]))
//
//	# p95 catalog latency
//	histogram_quantile(0.95, rate(storefront_catalog_request_duration_seconds_bucket[5m]))
