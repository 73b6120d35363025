package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshplate/storefront/internal/domain/order"
	"github.com/freshplate/storefront/internal/domain/product"
	"github.com/freshplate/storefront/internal/domain/promo"
	"github.com/freshplate/storefront/internal/domain/settings"
	"github.com/freshplate/storefront/internal/domain/user"
	"github.com/freshplate/storefront/internal/postgres"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

// mapError translates a domain error into an HTTP status and a message safe
// to show the caller. Unknown errors collapse to a generic 500; the detail is
// logged, never leaked.
func mapError(err error) (int, string) {
	var (
		badValue     *settings.BadValueError
		badQuantity  *order.InvalidQuantityError
		noDelivery   *order.DeliveryNotAvailableError
		unavailable  *order.ProductUnavailableError
		noStock      *order.InsufficientStockError
		staleprice   *order.PriceMismatchError
		invalidPromo *promo.InvalidError
	)

	switch {
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrInvalidDeliveryType),
		errors.Is(err, order.ErrInvalidTotal),
		errors.Is(err, order.ErrDeliveryDateRequired),
		errors.Is(err, order.ErrDeliveryDateInPast),
		errors.As(err, &badQuantity):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, user.ErrNotFound):
		return http.StatusBadRequest, "user not found"
	case errors.Is(err, user.ErrAddressNotFound):
		return http.StatusBadRequest, "address not found"

	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, postgres.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, promo.ErrNotFound):
		return http.StatusNotFound, "promo code not found"

	case errors.As(err, &noDelivery),
		errors.As(err, &unavailable),
		errors.As(err, &noStock),
		errors.As(err, &staleprice),
		errors.As(err, &invalidPromo):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.As(err, &badValue),
		errors.Is(err, order.ErrPickupNotConfigured),
		errors.Is(err, order.ErrWalkInNotConfigured):
		return http.StatusInternalServerError, "store is misconfigured"

	case errors.Is(err, order.ErrOrderNumberExhausted):
		return http.StatusServiceUnavailable, "failed to process order, please retry"

	default:
		return http.StatusInternalServerError, "failed to process request"
	}
}
