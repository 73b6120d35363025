package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/order"
	"github.com/freshplate/storefront/internal/domain/product"
	"github.com/freshplate/storefront/internal/domain/promo"
	"github.com/freshplate/storefront/internal/postgres"
)

// --- Mocks ---

type mockOrderService struct {
	order   *order.Order
	posRes  *order.POSSaleResult
	err     error
	lastReq order.CreateOrderRequest
}

func (m *mockOrderService) CreateOrder(_ context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	m.lastReq = req
	return m.order, m.err
}

func (m *mockOrderService) CreatePOSSale(_ context.Context, _ order.POSSaleRequest) (*order.POSSaleResult, error) {
	return m.posRes, m.err
}

type mockOrderReader struct {
	order *order.Order
	err   error
}

func (m *mockOrderReader) GetByNumber(_ context.Context, _ string) (*order.Order, error) {
	return m.order, m.err
}

type mockProductRepo struct {
	products []product.Product
	err      error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, m.err
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) GetByIDs(_ context.Context, _ []string) ([]product.Product, error) {
	return m.products, m.err
}

type mockPromoValidator struct {
	result *promo.Result
	err    error
}

func (m *mockPromoValidator) ValidateByCode(_ context.Context, _ string, _ decimal.Decimal) (*promo.Result, error) {
	return m.result, m.err
}

// --- Helpers ---

func newTestHandler(orders *mockOrderService, reader *mockOrderReader, products *mockProductRepo, promos *mockPromoValidator) http.Handler {
	if orders == nil {
		orders = &mockOrderService{}
	}
	if reader == nil {
		reader = &mockOrderReader{}
	}
	if products == nil {
		products = &mockProductRepo{}
	}
	if promos == nil {
		promos = &mockPromoValidator{}
	}
	mux := http.NewServeMux()
	NewHandler(orders, reader, products, promos).Register(mux)
	return mux
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func testOrder() *order.Order {
	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	return &order.Order{
		ID:            "o-1",
		Number:        "A1B2C",
		UserID:        "u-1",
		Items:         []order.Item{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("12.99")}},
		Subtotal:      decimal.RequireFromString("25.98"),
		Tax:           decimal.RequireFromString("3.3774"),
		Total:         decimal.RequireFromString("29.36"),
		Status:        order.StatusPending,
		DeliveryType:  delivery.TypeDelivery,
		PaymentMethod: order.PaymentOnline,
		DeliveryDate:  &date,
		CreatedAt:     time.Now(),
	}
}

// --- Orders ---

func TestPlaceOrder(t *testing.T) {
	svc := &mockOrderService{order: testOrder()}
	h := newTestHandler(svc, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/orders", `{
		"userId": "u-1",
		"addressId": "addr-1",
		"items": [{"productId": "p1", "quantity": 2, "price": "12.99"}],
		"deliveryType": "DELIVERY",
		"deliveryDate": "2026-09-04",
		"paymentMethod": "ONLINE"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[orderView](t, rec)
	assert.Equal(t, "A1B2C", body.Number)
	assert.Equal(t, "2026-09-04", body.DeliveryDate)
	assert.Len(t, body.Items, 1)

	assert.Equal(t, "u-1", svc.lastReq.UserID)
	assert.Equal(t, delivery.TypeDelivery, svc.lastReq.DeliveryType)
	require.NotNil(t, svc.lastReq.DeliveryDate)
	assert.Equal(t, 2026, svc.lastReq.DeliveryDate.Year())
}

func TestPlaceOrder_MalformedJSON(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/orders", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_BadDate(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/orders", `{"deliveryDate": "next friday"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[errorResponse](t, rec)
	assert.Contains(t, body.Error, "YYYY-MM-DD")
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "no items", err: order.ErrNoItems, wantStatus: http.StatusBadRequest},
		{name: "bad quantity", err: &order.InvalidQuantityError{ProductID: "p1"}, wantStatus: http.StatusBadRequest},
		{name: "date in past", err: order.ErrDeliveryDateInPast, wantStatus: http.StatusBadRequest},
		{
			name:       "insufficient stock",
			err:        &order.InsufficientStockError{ProductID: "p1", Name: "Dosa Batter", Requested: 2, Available: 1},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "price mismatch",
			err:        &order.PriceMismatchError{ProductID: "p1", Quoted: decimal.NewFromInt(10), Live: decimal.NewFromInt(12)},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "delivery not available",
			err:        &order.DeliveryNotAvailableError{City: "Shelbyville", Date: time.Now()},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid promo",
			err:        &promo.InvalidError{Code: "DEAD", Reason: promo.ReasonExpired},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{name: "number exhausted", err: order.ErrOrderNumberExhausted, wantStatus: http.StatusServiceUnavailable},
		{name: "pickup not configured", err: order.ErrPickupNotConfigured, wantStatus: http.StatusInternalServerError},
		{name: "unknown error", err: errors.New("pg: connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockOrderService{err: tt.err}, nil, nil, nil)

			rec := doRequest(t, h, http.MethodPost, "/api/orders",
				`{"items": [{"productId": "p1", "quantity": 1, "price": "1.00"}]}`)

			require.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody[errorResponse](t, rec)
			if tt.wantStatus >= http.StatusInternalServerError {
				// Internal detail must never leak.
				assert.NotContains(t, body.Error, "pg:")
			} else {
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestGetOrder(t *testing.T) {
	h := newTestHandler(nil, &mockOrderReader{order: testOrder()}, nil, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/orders/A1B2C", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[orderView](t, rec)
	assert.Equal(t, "A1B2C", body.Number)
}

func TestGetOrder_ItemNames(t *testing.T) {
	repo := &mockProductRepo{products: []product.Product{
		{ID: "p1", Name: "Dosa Batter", Price: decimal.RequireFromString("12.99"), Stock: 10, Active: true},
	}}
	h := newTestHandler(nil, &mockOrderReader{order: testOrder()}, repo, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/orders/A1B2C", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[orderView](t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Dosa Batter", body.Items[0].Name)
}

func TestGetOrder_NameLookupFailureDegrades(t *testing.T) {
	repo := &mockProductRepo{err: errors.New("catalog down")}
	h := newTestHandler(nil, &mockOrderReader{order: testOrder()}, repo, nil)

	// The order exists; a catalog hiccup must not hide the receipt.
	rec := doRequest(t, h, http.MethodGet, "/api/orders/A1B2C", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[orderView](t, rec)
	require.Len(t, body.Items, 1)
	assert.Empty(t, body.Items[0].Name)
	assert.Equal(t, "p1", body.Items[0].ProductID)
}

func TestGetOrder_NotFound(t *testing.T) {
	h := newTestHandler(nil, &mockOrderReader{err: postgres.ErrOrderNotFound}, nil, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/orders/ZZZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- POS ---

func TestPOSSale(t *testing.T) {
	now := time.Now()
	svc := &mockOrderService{posRes: &order.POSSaleResult{
		OrderID:       "o-1",
		OrderNumber:   "A1B2C",
		Total:         decimal.RequireFromString("29.36"),
		PaymentMethod: order.PaymentCash,
		Timestamp:     now,
	}}
	h := newTestHandler(svc, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/pos/sales", `{
		"items": [{"productId": "p1", "quantity": 2, "price": "12.99"}],
		"paymentMethod": "CASH"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[posSaleResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "A1B2C", body.OrderNumber)
	assert.Equal(t, "CASH", body.PaymentMethod)
	require.NotNil(t, body.Total)
	assert.True(t, decimal.RequireFromString("29.36").Equal(*body.Total))
	assert.Empty(t, body.Error)
}

func TestPOSSale_FailureOmitsReceiptFields(t *testing.T) {
	svc := &mockOrderService{err: order.ErrInvalidPaymentMethod}
	h := newTestHandler(svc, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/pos/sales",
		`{"items": [{"productId": "p1", "quantity": 1, "price": "1.00"}], "paymentMethod": "ONLINE"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The failure envelope is {success, error} only: no zero-valued receipt
	// fields for the terminal to misrender.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "success")
	assert.Contains(t, raw, "error")
	assert.NotContains(t, raw, "total")
	assert.NotContains(t, raw, "paymentMethod")
	assert.NotContains(t, raw, "timestamp")
}

func TestPOSSale_FailureShape(t *testing.T) {
	svc := &mockOrderService{err: &order.InsufficientStockError{
		ProductID: "p1", Name: "Dosa Batter", Requested: 2, Available: 0,
	}}
	h := newTestHandler(svc, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/pos/sales",
		`{"items": [{"productId": "p1", "quantity": 2, "price": "12.99"}], "paymentMethod": "CASH"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody[posSaleResponse](t, rec)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "Dosa Batter")
}

func TestPOSSale_UnknownErrorFailureShape(t *testing.T) {
	svc := &mockOrderService{err: errors.New("pg: broken pipe")}
	h := newTestHandler(svc, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/pos/sales",
		`{"items": [{"productId": "p1", "quantity": 1, "price": "1.00"}], "paymentMethod": "CASH"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Even 5xx keeps the {success, error} contract for the terminal.
	body := decodeBody[posSaleResponse](t, rec)
	assert.False(t, body.Success)
	assert.NotContains(t, body.Error, "pg:")
}

// --- Promos ---

func TestValidatePromo(t *testing.T) {
	v := &mockPromoValidator{result: &promo.Result{
		Promo:    &promo.PromoCode{ID: "pc-1", Code: "SAVE10"},
		Discount: decimal.NewFromInt(10),
	}}
	h := newTestHandler(nil, nil, nil, v)

	rec := doRequest(t, h, http.MethodPost, "/api/promos/validate",
		`{"code": "SAVE10", "subtotal": "100"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[validatePromoResponse](t, rec)
	assert.True(t, body.Valid)
	assert.Equal(t, "SAVE10", body.Code)
}

func TestValidatePromo_Invalid(t *testing.T) {
	v := &mockPromoValidator{err: &promo.InvalidError{Code: "DEAD", Reason: promo.ReasonExpired}}
	h := newTestHandler(nil, nil, nil, v)

	rec := doRequest(t, h, http.MethodPost, "/api/promos/validate",
		`{"code": "DEAD", "subtotal": "100"}`)

	// Invalid is a normal answer for the cart UI, not an HTTP error.
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[validatePromoResponse](t, rec)
	assert.False(t, body.Valid)
	assert.Equal(t, string(promo.ReasonExpired), body.Reason)
}

func TestValidatePromo_MissingCode(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/promos/validate", `{"subtotal": "100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Products ---

func TestListProducts(t *testing.T) {
	repo := &mockProductRepo{products: []product.Product{
		{ID: "p1", Name: "Dosa Batter", Price: decimal.RequireFromString("12.99"), Stock: 10, Active: true},
		{ID: "p2", Name: "Idli Mix", Price: decimal.RequireFromString("8.50"), Stock: 5, Active: true},
	}}
	h := newTestHandler(nil, nil, repo, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[[]productView](t, rec)
	require.Len(t, body, 2)
	assert.Equal(t, "Dosa Batter", body[0].Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newTestHandler(nil, nil, &mockProductRepo{}, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/products/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
