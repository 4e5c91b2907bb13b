package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/gate"
	"github.com/Sternrassler/storefront/pkg/metrics"
)

// LoggedInHeader carries the visitor's auth state on action requests.
const LoggedInHeader = "X-Logged-In"

const requestTimeout = 30 * time.Second

type initialRequest struct {
	Filter catalog.Filter `json:"filter"`
	Limit  int            `json:"limit"`
}

type actionRequest struct {
	Product catalog.Product `json:"product"`
}

type cartResponse struct {
	Items      []catalog.Product `json:"items"`
	Total      int               `json:"total"`
	TotalLabel string            `json:"totalLabel"`
}

type errorResponse struct {
	Error string `json:"error"`

	// Redirect is where the visitor is sent when the route does not exist.
	Redirect gate.Destination `json:"redirect,omitempty"`
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/products", a.listHandler)
	mux.HandleFunc("POST /api/products/initial", a.initialHandler)
	mux.HandleFunc("POST /api/products/next", a.nextHandler)
	mux.HandleFunc("POST /api/products", a.createHandler)
	mux.HandleFunc("POST /api/actions/{kind}", a.actionHandler)
	mux.HandleFunc("GET /api/cart", a.cartHandler)
	mux.HandleFunc("GET /api/toasts", a.toastsHandler)
	mux.HandleFunc("DELETE /api/toasts/{id}", a.dismissToastHandler)
	mux.HandleFunc("/", a.notFoundHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (a *app) listHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.storefront.View())
}

func (a *app) initialHandler(w http.ResponseWriter, r *http.Request) {
	var req initialRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := a.storefront.FetchInitial(ctx, req.Filter, req.Limit); err != nil {
		a.writeError(w, http.StatusBadGateway, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.storefront.View())
}

func (a *app) nextHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := a.storefront.FetchNext(ctx); err != nil {
		a.writeError(w, http.StatusBadGateway, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.storefront.View())
}

func (a *app) createHandler(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := a.storefront.CreateProduct(ctx, input)
	if errors.Is(err, catalog.ErrInvalidProduct) {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		a.writeError(w, http.StatusBadGateway, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, product)
}

func (a *app) actionHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := gate.ParseActionKind(r.PathValue("kind"))
	if !ok {
		a.writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", r.PathValue("kind")))
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Product.ID == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("product id is required"))
		return
	}

	// A missing or malformed header means logged out.
	loggedIn, _ := strconv.ParseBool(r.Header.Get(LoggedInHeader))

	outcome := a.storefront.DecideAndAct(gate.AuthState{IsLoggedIn: loggedIn}, kind, req.Product)
	a.writeJSON(w, http.StatusOK, outcome)
}

func (a *app) cartHandler(w http.ResponseWriter, r *http.Request) {
	state := a.cart.State()
	a.writeJSON(w, http.StatusOK, cartResponse{
		Items:      state.Items,
		Total:      state.Total(),
		TotalLabel: catalog.FormatPrice(state.Total()),
	})
}

func (a *app) toastsHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.toasts.Toasts())
}

func (a *app) dismissToastHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid toast id: %w", err))
		return
	}
	a.toasts.Dismiss(id)
	w.WriteHeader(http.StatusNoContent)
}

// notFoundHandler answers unknown routes and sends the visitor home.
func (a *app) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Route not found")
	a.writeJSON(w, http.StatusNotFound, errorResponse{
		Error:    fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
		Redirect: gate.DestinationHome,
	})
}

func (a *app) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func (a *app) writeError(w http.ResponseWriter, status int, err error) {
	a.logger.Warn().Err(err).Int("status_code", status).Msg("Request failed")
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}
