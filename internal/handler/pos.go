package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshplate/storefront/internal/domain/order"
)

type posCustomerRequest struct {
	UserID string `json:"userId"`
	Phone  string `json:"phone"`
	Name   string `json:"name"`
}

type posSaleRequest struct {
	Items         []orderItemRequest `json:"items"`
	Customer      posCustomerRequest `json:"customer"`
	PaymentMethod string             `json:"paymentMethod"`
	PromoCodeID   string             `json:"promoCodeId"`
}

// posSaleResponse always carries Success so the terminal can branch on a
// single field; on failure Error holds the user-facing message.
type posSaleResponse struct {
	Success       bool             `json:"success"`
	OrderID       string           `json:"orderId,omitempty"`
	OrderNumber   string           `json:"orderNumber,omitempty"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Timestamp     *time.Time       `json:"timestamp,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// POSSale handles POST /api/pos/sales.
func (h *Handler) POSSale(w http.ResponseWriter, r *http.Request) {
	var req posSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, posSaleResponse{Success: false, Error: "invalid request body"})
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}

	res, err := h.orders.CreatePOSSale(r.Context(), order.POSSaleRequest{
		Items: items,
		Customer: order.POSCustomer{
			UserID: req.Customer.UserID,
			Phone:  req.Customer.Phone,
			Name:   req.Customer.Name,
		},
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		PromoCodeID:   req.PromoCodeID,
	})
	if err != nil {
		status, msg := mapError(err)
		if status >= http.StatusInternalServerError {
			zctx.From(r.Context()).Error("POS sale failed", zap.Error(err))
		}
		respondJSON(w, status, posSaleResponse{Success: false, Error: msg})
		return
	}

	respondJSON(w, http.StatusCreated, posSaleResponse{
		Success:       true,
		OrderID:       res.OrderID,
		OrderNumber:   res.OrderNumber,
		Total:         &res.Total,
		PaymentMethod: string(res.PaymentMethod),
		Timestamp:     &res.Timestamp,
	})
}
