package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/logging"
	"github.com/Sternrassler/storefront/pkg/operation"
)

var (
	// ErrNoMorePages is returned by LoadNext when nothing is loaded yet or
	// the last page has no next page. No fetch is made.
	ErrNoMorePages = errors.New("no more pages")

	// ErrFetchInProgress is returned by LoadNext while another LoadNext is
	// outstanding. No fetch is made.
	ErrFetchInProgress = errors.New("next page fetch already in progress")

	// ErrSuperseded is returned when a newer LoadInitial replaced the listing
	// while this load was in flight, or when a LoadInitial issued later has
	// already been applied. The fetched page is discarded.
	ErrSuperseded = errors.New("listing replaced by a newer initial load")
)

// Prometheus metrics for page accumulation.
var (
	pagesLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_pages_loaded_total",
		Help: "Pages folded into a listing by kind (initial, next)",
	}, []string{"kind"})

	nextPageSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_next_page_skipped_total",
		Help: "LoadNext calls that made no fetch, by reason",
	}, []string{"reason"})
)

// Config holds accumulator configuration.
type Config struct {
	// DefaultLimit is the page size used when a caller passes limit <= 0.
	DefaultLimit int
}

// DefaultConfig returns the default accumulator configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 20,
	}
}

// Accumulator folds successive pages of one listing into a Result.
type Accumulator struct {
	runner *operation.LoadProductsRunner
	config Config
	logger zerolog.Logger

	// next admits one LoadNext at a time.
	next     *semaphore.Weighted
	fetching atomic.Bool

	mu     sync.RWMutex
	result Result
	filter catalog.Filter
	limit  int

	// requests numbers LoadInitial calls in issue order; applied is the
	// number of the one whose page is the current listing.
	requests uint64
	applied  uint64

	// generation changes only when a LoadInitial result replaces the
	// listing. A LoadNext appends only if it is unchanged.
	generation uint64
}

// NewAccumulator creates an accumulator that loads pages through runner.
func NewAccumulator(runner *operation.LoadProductsRunner, config Config) *Accumulator {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}

	return &Accumulator{
		runner: runner,
		config: config,
		logger: logging.NewLogger(logging.ComponentPagination),
		next:   semaphore.NewWeighted(1),
	}
}

// LoadInitial fetches the first page for filter and, on success, replaces
// the whole listing with it. On failure the previous listing is kept.
func (a *Accumulator) LoadInitial(ctx context.Context, filter catalog.Filter, limit int) (*catalog.Page, error) {
	if limit <= 0 {
		limit = a.config.DefaultLimit
	}

	a.mu.Lock()
	a.requests++
	seq := a.requests
	a.mu.Unlock()

	state := a.runner.Run(ctx, operation.LoadProductsInput{
		Filter:    filter,
		Limit:     limit,
		IsInitial: true,
	})
	if err := state.Err(); err != nil {
		a.logger.Warn().
			Str("reason", state.Message).
			Str("category_id", filter.CategoryID).
			Msg("Initial page load failed")
		return nil, fmt.Errorf("load initial page: %w", err)
	}
	page := state.Payload.Page

	a.mu.Lock()
	if seq < a.applied {
		a.mu.Unlock()
		a.logger.Debug().Uint64("request", seq).Msg("Discarding initial page older than the current listing")
		return nil, ErrSuperseded
	}
	a.applied = seq
	a.generation++
	a.result = singlePage(page)
	a.filter = filter
	a.limit = limit
	a.mu.Unlock()

	pagesLoadedTotal.WithLabelValues("initial").Inc()
	a.logger.Debug().
		Str("category_id", filter.CategoryID).
		Int("products", len(page.Products)).
		Int("total_count", page.TotalCount).
		Bool("has_next_page", page.HasNextPage).
		Msg("Initial page loaded")

	return &page, nil
}

// LoadNext fetches the page after the last loaded one and appends it.
//
// It returns ErrNoMorePages when the last page has no next page and
// ErrFetchInProgress while another LoadNext is outstanding; neither makes a
// fetch. A failed fetch leaves the listing unchanged and can be retried.
func (a *Accumulator) LoadNext(ctx context.Context) (*catalog.Page, error) {
	if !a.next.TryAcquire(1) {
		nextPageSkippedTotal.WithLabelValues("in_progress").Inc()
		return nil, ErrFetchInProgress
	}
	defer a.next.Release(1)

	a.mu.RLock()
	last, ok := a.result.LastPage()
	gen := a.generation
	filter, limit := a.filter, a.limit
	a.mu.RUnlock()

	if !ok || !last.HasNextPage {
		nextPageSkippedTotal.WithLabelValues("no_more_pages").Inc()
		return nil, ErrNoMorePages
	}
	cursor := last.NextPage

	a.fetching.Store(true)
	defer a.fetching.Store(false)

	state := a.runner.Run(ctx, operation.LoadProductsInput{
		Filter:      filter,
		LastVisible: cursor,
		Limit:       limit,
	})
	if err := state.Err(); err != nil {
		a.logger.Warn().
			Str("reason", state.Message).
			Int("cursor", int(cursor)).
			Msg("Next page load failed")
		return nil, fmt.Errorf("load page %d: %w", cursor, err)
	}
	page := state.Payload.Page

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		a.logger.Debug().Int("cursor", int(cursor)).Msg("Discarding page from replaced listing")
		return nil, ErrSuperseded
	}
	a.result = a.result.appendPage(cursor, page)
	pages := len(a.result.Pages)
	a.mu.Unlock()

	pagesLoadedTotal.WithLabelValues("next").Inc()
	a.logger.Debug().
		Int("cursor", int(cursor)).
		Int("pages", pages).
		Int("products", len(page.Products)).
		Bool("has_next_page", page.HasNextPage).
		Msg("Next page appended")

	return &page, nil
}

// Products returns the accumulated product list in fetch order.
func (a *Accumulator) Products() []catalog.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result.Products()
}

// HasMore reports whether the last loaded page has a next page.
func (a *Accumulator) HasMore() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result.HasMore()
}

// ShowLoadMore reports whether a "load more" control should be rendered at
// all. An empty listing without a next page hides it rather than disabling it.
func (a *Accumulator) ShowLoadMore() bool {
	return a.HasMore()
}

// IsFetchingNext reports whether a LoadNext is outstanding.
func (a *Accumulator) IsFetchingNext() bool {
	return a.fetching.Load()
}

// Result returns a copy of the accumulated result.
func (a *Accumulator) Result() Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result.clone()
}

// Filter returns the filter of the current listing.
func (a *Accumulator) Filter() catalog.Filter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filter
}
