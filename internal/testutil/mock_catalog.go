// Package testutil provides testing utilities for the storefront.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is a configurable mock catalog API for testing.
//
// By default it serves its product list in pages: GET /products honours
// categoryId, page, and limit, and POST /products appends a product.
type MockCatalog struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	products []catalog.Product
	nextID   int

	// Tracking
	RequestCount    int
	LastRequestPath string
	LastQuery       map[string]string
	LastUserAgent   string
}

// NewMockCatalog creates a mock catalog serving products.
func NewMockCatalog(products []catalog.Product) *MockCatalog {
	mock := &MockCatalog{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		products: append([]catalog.Product(nil), products...),
		nextID:   len(products) + 1,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestPath = r.URL.Path
		mock.LastUserAgent = r.Header.Get("User-Agent")
		mock.LastQuery = make(map[string]string)
		for key := range r.URL.Query() {
			mock.LastQuery[key] = r.URL.Query().Get(key)
		}
		key := r.Method + " " + r.URL.Path
		handler, exists := mock.handlers[key]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestPath = ""
	m.LastQuery = nil
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a method and path, e.g. "GET /products".
func (m *MockCatalog) SetHandler(methodPath string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[methodPath] = handler
}

// ClearHandler restores the default behaviour for a method and path.
func (m *MockCatalog) ClearHandler(methodPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, methodPath)
}

// SetResponse configures a canned response for a method and path.
func (m *MockCatalog) SetResponse(methodPath string, resp MockResponse) {
	m.SetHandler(methodPath, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCatalog) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the query parameters of the last request.
func (m *MockCatalog) GetLastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// Products returns the products the mock currently serves.
func (m *MockCatalog) Products() []catalog.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]catalog.Product(nil), m.products...)
}

func (m *MockCatalog) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.URL.Path != "/products" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "not found"}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		m.servePage(w, r)
	case http.MethodPost:
		m.createProduct(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"message": "method not allowed"}`))
	}
}

func (m *MockCatalog) servePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := 20
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	categoryID := query.Get("categoryId")

	m.mu.RLock()
	filtered := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		if categoryID == "" || p.Category.ID == categoryID {
			filtered = append(filtered, p)
		}
	}
	m.mu.RUnlock()

	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	result := catalog.Page{
		Products:    filtered[start:end],
		HasNextPage: end < len(filtered),
		TotalCount:  len(filtered),
	}
	if result.HasNextPage {
		result.NextPage = catalog.Cursor(page + 1)
	}

	w.Header().Set("Cache-Control", "max-age=60")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (m *MockCatalog) createProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "invalid product payload"}`))
		return
	}

	m.mu.Lock()
	product := catalog.Product{
		ID:          strconv.Itoa(m.nextID),
		Title:       input.Title,
		Price:       input.Price,
		Category:    catalog.Category{ID: input.CategoryID},
		Image:       input.Image,
		Description: input.Description,
	}
	m.nextID++
	m.products = append(m.products, product)
	m.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

// NewErrorResponse creates a JSON error response with message.
func NewErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       fmt.Sprintf(`{"message": %q}`, message),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// SampleProducts returns n products spread over two categories.
func SampleProducts(n int) []catalog.Product {
	products := make([]catalog.Product, n)
	for i := range products {
		id := strconv.Itoa(i + 1)
		category := strconv.Itoa(i%2 + 1)
		products[i] = catalog.Product{
			ID:       id,
			Title:    "Product " + id,
			Price:    (i + 1) * 1000,
			Category: catalog.Category{ID: category, Name: "category" + category},
			Image:    "https://images.example.com/" + id + ".png",
		}
	}
	return products
}
