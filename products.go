package checkout

import (
	"context"
	"net/http"
)

// ProductProvider lists the catalog the chat bridge renders to buyers.
type ProductProvider interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// ProductsHandler serves the GET /products listing.
type ProductsHandler struct {
	provider ProductProvider
	mux      *http.ServeMux
}

// NewProductsHandler wires the product listing route to the provided [ProductProvider].
func NewProductsHandler(provider ProductProvider, middleware ...Middleware) *ProductsHandler {
	if provider == nil {
		panic("checkout: product provider is required")
	}
	h := &ProductsHandler{
		provider: provider,
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /products", applyMiddleware(h.handleList, middleware...))
	return h
}

// ServeHTTP satisfies http.Handler.
func (h *ProductsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ProductsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.provider.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	writeJSON(w, http.StatusOK, struct {
		Products []Product `json:"products"`
	}{Products: products})
}
