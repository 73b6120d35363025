package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/order"
)

const dateLayout = "2006-01-02"

type orderItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	UserID        string             `json:"userId"`
	AddressID     string             `json:"addressId"`
	Items         []orderItemRequest `json:"items"`
	PromoCodeID   string             `json:"promoCodeId"`
	DeliveryType  string             `json:"deliveryType"`
	DeliveryDate  string             `json:"deliveryDate"`
	PaymentMethod string             `json:"paymentMethod"`
}

type orderItemView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type orderView struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	Items             []orderItemView `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	ConvenienceCharge decimal.Decimal `json:"convenienceCharge"`
	DeliveryCharge    decimal.Decimal `json:"deliveryCharge"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	DeliveryType      string          `json:"deliveryType"`
	PaymentMethod     string          `json:"paymentMethod"`
	DeliveryDate      string          `json:"deliveryDate,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// PlaceOrder handles POST /api/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		d, err := time.ParseInLocation(dateLayout, req.DeliveryDate, time.Local)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid delivery date, expected YYYY-MM-DD"})
			return
		}
		deliveryDate = &d
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		UserID:        req.UserID,
		AddressID:     req.AddressID,
		Items:         items,
		PromoCodeID:   req.PromoCodeID,
		DeliveryDate:  deliveryDate,
		DeliveryType:  delivery.Type(req.DeliveryType),
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.viewOrder(r.Context(), o))
}

// GetOrder handles GET /api/orders/{number}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderReader.GetByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewOrder(r.Context(), o))
}

// productNames batch-loads display names for the order's line items. The
// order itself is already committed, so a catalog failure degrades the view
// to bare product ids instead of failing the request.
func (h *Handler) productNames(ctx context.Context, items []order.Item) map[string]string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := h.products.GetByIDs(ctx, ids)
	if err != nil {
		zctx.From(ctx).Warn("Load product names", zap.Error(err))
		return nil
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

func (h *Handler) viewOrder(ctx context.Context, o *order.Order) orderView {
	names := h.productNames(ctx, o.Items)
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ProductID: it.ProductID,
			Name:      names[it.ProductID],
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	v := orderView{
		ID:                o.ID,
		Number:            o.Number,
		Items:             items,
		Subtotal:          o.Subtotal,
		Tax:               o.Tax,
		ConvenienceCharge: o.ConvenienceCharge,
		DeliveryCharge:    o.DeliveryCharge,
		Discount:          o.Discount,
		Total:             o.Total,
		Status:            string(o.Status),
		DeliveryType:      string(o.DeliveryType),
		PaymentMethod:     string(o.PaymentMethod),
		CreatedAt:         o.CreatedAt,
	}
	if o.DeliveryDate != nil {
		v.DeliveryDate = o.DeliveryDate.Format(dateLayout)
	}
	return v
}
