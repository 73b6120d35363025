// Package handler exposes the order core over thin HTTP JSON endpoints.
// Handlers decode input, delegate to the domain, and map errors to
// user-facing responses; no business logic lives here.
package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/order"
	"github.com/freshplate/storefront/internal/domain/product"
	"github.com/freshplate/storefront/internal/domain/promo"
)

// OrderService is the slice of the order orchestrator the handlers use.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
	CreatePOSSale(ctx context.Context, req order.POSSaleRequest) (*order.POSSaleResult, error)
}

// OrderReader looks up persisted orders for receipt display.
type OrderReader interface {
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
}

// PromoValidator is the pre-flight promo check exposed to the storefront UI.
type PromoValidator interface {
	ValidateByCode(ctx context.Context, code string, subtotal decimal.Decimal) (*promo.Result, error)
}

// Handler holds the domain dependencies behind the HTTP surface.
type Handler struct {
	orders      OrderService
	orderReader OrderReader
	products    product.Repository
	promos      PromoValidator
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders OrderService,
	orderReader OrderReader,
	products product.Repository,
	promos PromoValidator,
) *Handler {
	return &Handler{
		orders:      orders,
		orderReader: orderReader,
		products:    products,
		promos:      promos,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{number}", h.GetOrder)
	mux.HandleFunc("POST /api/pos/sales", h.POSSale)
	mux.HandleFunc("POST /api/promos/validate", h.ValidatePromo)
}
