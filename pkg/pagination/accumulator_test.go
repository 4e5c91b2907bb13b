package pagination

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/operation"
)

// fakeSource serves pages by cursor. When gate is set, each fetch signals
// entered and waits for gate before returning. A channel in gates holds back
// fetches of that cursor only.
type fakeSource struct {
	mu      sync.Mutex
	pages   map[catalog.Cursor]catalog.Page
	errs    map[catalog.Cursor]error
	calls   []catalog.Cursor
	limits  []int
	entered chan catalog.Cursor
	gate    chan struct{}
	gates   map[catalog.Cursor]chan struct{}
}

func newFakeSource(pages map[catalog.Cursor]catalog.Page) *fakeSource {
	return &fakeSource{
		pages: pages,
		errs:  make(map[catalog.Cursor]error),
	}
}

func (s *fakeSource) FetchProducts(ctx context.Context, filter catalog.Filter, cursor catalog.Cursor, limit int) (*catalog.Page, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cursor)
	s.limits = append(s.limits, limit)
	entered, gate := s.entered, s.gate
	if g, ok := s.gates[cursor]; ok {
		gate = g
	}
	s.mu.Unlock()

	if entered != nil {
		entered <- cursor
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[cursor]; err != nil {
		return nil, err
	}
	page, ok := s.pages[cursor]
	if !ok {
		return nil, errors.New("page not found")
	}
	return &page, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func product(id string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Title:    "Product " + id,
		Price:    1000,
		Category: catalog.Category{ID: "1", Name: "category1"},
		Image:    "image_url_" + id,
	}
}

func twoPageSource() *fakeSource {
	return newFakeSource(map[catalog.Cursor]catalog.Page{
		catalog.InitialCursor: {
			Products:    []catalog.Product{product("1"), product("2")},
			HasNextPage: true,
			TotalCount:  4,
			NextPage:    2,
		},
		2: {
			Products:    []catalog.Product{product("3"), product("4")},
			HasNextPage: false,
			TotalCount:  4,
		},
	})
}

func newTestAccumulator(source catalog.PageSource) *Accumulator {
	return NewAccumulator(operation.NewLoadProductsRunner(source), DefaultConfig())
}

func productIDs(products []catalog.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAccumulator_TwoPages(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	if !acc.HasMore() {
		t.Error("HasMore() after page 1 = false, want true")
	}
	if !acc.ShowLoadMore() {
		t.Error("ShowLoadMore() after page 1 = false, want true")
	}

	page, err := acc.LoadNext(ctx)
	if err != nil {
		t.Fatalf("LoadNext() error = %v", err)
	}
	if len(page.Products) != 2 {
		t.Errorf("LoadNext() returned %d products, want 2", len(page.Products))
	}

	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2", "3", "4") {
		t.Errorf("Products() = %v, want [1 2 3 4]", ids)
	}
	if acc.HasMore() {
		t.Error("HasMore() after last page = true, want false")
	}

	result := acc.Result()
	if err := result.Validate(); err != nil {
		t.Errorf("Result().Validate() error = %v", err)
	}
	if len(result.PageParams) != 2 || result.PageParams[0] != catalog.InitialCursor || result.PageParams[1] != 2 {
		t.Errorf("PageParams = %v, want [0 2]", result.PageParams)
	}
	if result.TotalCount() != 4 {
		t.Errorf("TotalCount() = %d, want 4", result.TotalCount())
	}

	if _, err := acc.LoadNext(ctx); !errors.Is(err, ErrNoMorePages) {
		t.Errorf("LoadNext() past last page error = %v, want ErrNoMorePages", err)
	}
	if got := source.callCount(); got != 2 {
		t.Errorf("source calls = %d, want 2", got)
	}
}

func TestAccumulator_EmptyFirstPage(t *testing.T) {
	source := newFakeSource(map[catalog.Cursor]catalog.Page{
		catalog.InitialCursor: {Products: []catalog.Product{}, HasNextPage: false},
	})
	acc := newTestAccumulator(source)

	if _, err := acc.LoadInitial(context.Background(), catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	if acc.HasMore() {
		t.Error("HasMore() = true, want false")
	}
	if acc.ShowLoadMore() {
		t.Error("ShowLoadMore() = true, want false for empty listing")
	}
	if len(acc.Products()) != 0 {
		t.Errorf("Products() = %v, want empty", acc.Products())
	}
}

func TestAccumulator_NothingLoaded(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)

	if acc.HasMore() {
		t.Error("HasMore() before any load = true, want false")
	}
	if _, err := acc.LoadNext(context.Background()); !errors.Is(err, ErrNoMorePages) {
		t.Errorf("LoadNext() error = %v, want ErrNoMorePages", err)
	}
	if source.callCount() != 0 {
		t.Errorf("source calls = %d, want 0", source.callCount())
	}
}

func TestAccumulator_DefaultLimit(t *testing.T) {
	source := twoPageSource()
	acc := NewAccumulator(operation.NewLoadProductsRunner(source), Config{DefaultLimit: 8})
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 0); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	if _, err := acc.LoadNext(ctx); err != nil {
		t.Fatalf("LoadNext() error = %v", err)
	}

	if len(source.limits) != 2 || source.limits[0] != 8 || source.limits[1] != 8 {
		t.Errorf("limits = %v, want [8 8]", source.limits)
	}
}

func TestAccumulator_LoadInitialReplaces(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	if _, err := acc.LoadNext(ctx); err != nil {
		t.Fatalf("LoadNext() error = %v", err)
	}

	filter := catalog.Filter{CategoryID: "2"}
	if _, err := acc.LoadInitial(ctx, filter, 2); err != nil {
		t.Fatalf("second LoadInitial() error = %v", err)
	}

	result := acc.Result()
	if len(result.Pages) != 1 {
		t.Errorf("pages after LoadInitial = %d, want 1", len(result.Pages))
	}
	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2") {
		t.Errorf("Products() = %v, want [1 2]", ids)
	}
	if acc.Filter() != filter {
		t.Errorf("Filter() = %+v, want %+v", acc.Filter(), filter)
	}
}

func TestAccumulator_SingleFlight(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	source.mu.Lock()
	source.entered = make(chan catalog.Cursor, 1)
	source.gate = make(chan struct{})
	source.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := acc.LoadNext(ctx)
		done <- err
	}()

	select {
	case <-source.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first LoadNext never reached the source")
	}

	if !acc.IsFetchingNext() {
		t.Error("IsFetchingNext() = false while a fetch is outstanding")
	}

	for i := 0; i < 3; i++ {
		if _, err := acc.LoadNext(ctx); !errors.Is(err, ErrFetchInProgress) {
			t.Errorf("concurrent LoadNext() error = %v, want ErrFetchInProgress", err)
		}
	}

	close(source.gate)
	if err := <-done; err != nil {
		t.Fatalf("first LoadNext() error = %v", err)
	}

	if got := source.callCount(); got != 2 {
		t.Errorf("source calls = %d, want 2 (initial + one next)", got)
	}
	if acc.IsFetchingNext() {
		t.Error("IsFetchingNext() = true after completion")
	}
	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2", "3", "4") {
		t.Errorf("Products() = %v, want [1 2 3 4]", ids)
	}
}

func TestAccumulator_FailedNextKeepsState(t *testing.T) {
	source := twoPageSource()
	source.errs[2] = errors.New("network error")
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	before := acc.Result()

	_, err := acc.LoadNext(ctx)
	if err == nil {
		t.Fatal("LoadNext() error = nil, want failure")
	}
	var rejection *operation.Rejection
	if !errors.As(err, &rejection) || rejection.Message != "network error" {
		t.Errorf("LoadNext() error = %v, want rejection with message %q", err, "network error")
	}

	after := acc.Result()
	if len(after.Pages) != len(before.Pages) || !acc.HasMore() {
		t.Errorf("state changed after failed LoadNext: pages %d -> %d, hasMore %v",
			len(before.Pages), len(after.Pages), acc.HasMore())
	}

	// Single-flight is released, so a retry goes through.
	delete(source.errs, 2)
	if _, err := acc.LoadNext(ctx); err != nil {
		t.Fatalf("retry LoadNext() error = %v", err)
	}
	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2", "3", "4") {
		t.Errorf("Products() after retry = %v, want [1 2 3 4]", ids)
	}
}

func TestAccumulator_FailedInitialKeepsState(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	source.errs[catalog.InitialCursor] = errors.New("network error")
	_, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "9"}, 2)
	if err == nil || err.Error() != "load initial page: network error" {
		t.Errorf("LoadInitial() error = %v, want wrapped network error", err)
	}

	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2") {
		t.Errorf("Products() = %v, want [1 2]", ids)
	}
	if acc.Filter() != (catalog.Filter{}) {
		t.Errorf("Filter() = %+v, want previous filter", acc.Filter())
	}
}

func TestAccumulator_StaleNextDiscarded(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	releaseInitial, releaseNext := holdCursors(source)

	nextDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadNext(ctx)
		nextDone <- err
	}()
	<-source.entered

	initialDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "2"}, 2)
		initialDone <- err
	}()
	<-source.entered

	close(releaseInitial)
	if err := <-initialDone; err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	close(releaseNext)
	if err := <-nextDone; !errors.Is(err, ErrSuperseded) {
		t.Errorf("stale LoadNext() error = %v, want ErrSuperseded", err)
	}

	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2") {
		t.Errorf("Products() = %v, want [1 2]", ids)
	}
	if err := acc.Result().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// holdCursors makes fetches of the first and second page block until the
// returned channels are closed.
func holdCursors(source *fakeSource) (releaseInitial, releaseNext chan struct{}) {
	releaseInitial = make(chan struct{})
	releaseNext = make(chan struct{})

	source.mu.Lock()
	source.entered = make(chan catalog.Cursor, 4)
	source.gates = map[catalog.Cursor]chan struct{}{
		catalog.InitialCursor: releaseInitial,
		2:                     releaseNext,
	}
	source.mu.Unlock()

	return releaseInitial, releaseNext
}

func TestAccumulator_FailedInitialKeepsPendingNext(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	releaseInitial, releaseNext := holdCursors(source)
	source.mu.Lock()
	source.errs[catalog.InitialCursor] = errors.New("network error")
	source.mu.Unlock()

	nextDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadNext(ctx)
		nextDone <- err
	}()
	<-source.entered

	initialDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "2"}, 2)
		initialDone <- err
	}()
	<-source.entered

	close(releaseInitial)
	if err := <-initialDone; err == nil {
		t.Fatal("LoadInitial() error = nil, want network error")
	}

	close(releaseNext)
	if err := <-nextDone; err != nil {
		t.Fatalf("LoadNext() error = %v, want the page appended", err)
	}

	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2", "3", "4") {
		t.Errorf("Products() = %v, want [1 2 3 4]", ids)
	}
	if acc.HasMore() {
		t.Error("HasMore() = true after the last page")
	}
	if err := acc.Result().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestAccumulator_NextCompletingBeforeInitialIsKept(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{}, 2); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	releaseInitial, releaseNext := holdCursors(source)

	nextDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadNext(ctx)
		nextDone <- err
	}()
	<-source.entered

	initialDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "2"}, 2)
		initialDone <- err
	}()
	<-source.entered

	close(releaseNext)
	if err := <-nextDone; err != nil {
		t.Fatalf("LoadNext() error = %v", err)
	}
	close(releaseInitial)
	if err := <-initialDone; err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	if ids := productIDs(acc.Products()); !equalIDs(ids, "1", "2") {
		t.Errorf("Products() = %v, want the new listing [1 2]", ids)
	}
	if acc.Filter().CategoryID != "2" {
		t.Errorf("Filter() = %+v, want category 2", acc.Filter())
	}
}

func TestAccumulator_OlderInitialDiscarded(t *testing.T) {
	source := twoPageSource()
	acc := newTestAccumulator(source)
	ctx := context.Background()

	hold := make(chan struct{})
	source.mu.Lock()
	source.entered = make(chan catalog.Cursor, 1)
	source.gate = hold
	source.mu.Unlock()

	olderDone := make(chan error, 1)
	go func() {
		_, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "1"}, 2)
		olderDone <- err
	}()
	<-source.entered

	// Later fetches are not held back.
	source.mu.Lock()
	source.entered = nil
	source.gate = nil
	source.mu.Unlock()

	if _, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "2"}, 2); err != nil {
		t.Fatalf("newer LoadInitial() error = %v", err)
	}

	close(hold)
	if err := <-olderDone; !errors.Is(err, ErrSuperseded) {
		t.Errorf("older LoadInitial() error = %v, want ErrSuperseded", err)
	}
	if acc.Filter().CategoryID != "2" {
		t.Errorf("Filter() = %+v, want the newer category 2", acc.Filter())
	}
}
