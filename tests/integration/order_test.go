//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

// nextFriday returns the next Friday (possibly today) formatted for the API.
// The seeded free-delivery schedule serves Springfield on Fridays.
func nextFriday() string {
	d := time.Now()
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func priceOf(t *testing.T, products []productResponse, id string) string {
	t.Helper()
	for _, p := range products {
		if p.ID == id {
			return p.Price
		}
	}
	t.Fatalf("product %s not in catalog", id)
	return ""
}

func parseMoney(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parse money %q: %v", s, err)
	}
	return v
}

func TestPlaceDeliveryOrder(t *testing.T) {
	products := listProducts(t)
	p := products[0]

	resp := doPost(t, "/api/orders", orderRequest{
		UserID:    "demo-user",
		AddressID: "demo-addr",
		Items: []orderItemRequest{
			{ProductID: p.ID, Quantity: 1, Price: priceOf(t, products, p.ID)},
		},
		DeliveryType:  "DELIVERY",
		DeliveryDate:  nextFriday(),
		PaymentMethod: "ONLINE",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body := decodeJSON[errorResponse](t, resp)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body.Error)
	}

	o := decodeJSON[orderResponse](t, resp)
	if len(o.Number) != 5 {
		t.Errorf("expected 5-character order number, got %q", o.Number)
	}
	if o.Status != "PENDING" {
		t.Errorf("expected PENDING status, got %q", o.Status)
	}
	if parseMoney(t, o.Total) <= parseMoney(t, o.Subtotal) {
		t.Errorf("expected total (%s) to exceed subtotal (%s) via tax", o.Total, o.Subtotal)
	}

	// The order must be retrievable by its number.
	getResp := doGet(t, "/api/orders/"+o.Number)
	defer getResp.Body.Close()

	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get by number: expected 200, got %d", getResp.StatusCode)
	}
	fetched := decodeJSON[orderResponse](t, getResp)
	if fetched.ID != o.ID {
		t.Errorf("fetched order %s, want %s", fetched.ID, o.ID)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	resp := doPost(t, "/api/orders", orderRequest{
		UserID:        "demo-user",
		DeliveryType:  "PICKUP",
		PaymentMethod: "CASH",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_StalePriceRejected(t *testing.T) {
	products := listProducts(t)
	p := products[0]

	resp := doPost(t, "/api/orders", orderRequest{
		UserID: "demo-user",
		Items: []orderItemRequest{
			{ProductID: p.ID, Quantity: 1, Price: "0.01"},
		},
		DeliveryType:  "PICKUP",
		PaymentMethod: "CASH",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Error == "" {
		t.Fatal("expected a price mismatch message")
	}
}

func TestPlaceOrder_ExcessiveQuantityRejected(t *testing.T) {
	products := listProducts(t)
	p := products[0]

	resp := doPost(t, "/api/orders", orderRequest{
		UserID: "demo-user",
		Items: []orderItemRequest{
			{ProductID: p.ID, Quantity: 1_000_000, Price: priceOf(t, products, p.ID)},
		},
		DeliveryType:  "PICKUP",
		PaymentMethod: "CASH",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_DeliveryOffScheduleRejected(t *testing.T) {
	products := listProducts(t)
	p := products[0]

	// Monday is not in the seeded schedule.
	d := time.Now()
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}

	resp := doPost(t, "/api/orders", orderRequest{
		UserID:    "demo-user",
		AddressID: "demo-addr",
		Items: []orderItemRequest{
			{ProductID: p.ID, Quantity: 1, Price: priceOf(t, products, p.ID)},
		},
		DeliveryType:  "DELIVERY",
		DeliveryDate:  d.Format("2006-01-02"),
		PaymentMethod: "ONLINE",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestValidatePromo(t *testing.T) {
	resp := doPost(t, "/api/promos/validate", promoValidateRequest{
		Code:     "WELCOME10",
		Subtotal: "100",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[promoValidateResponse](t, resp)
	if !body.Valid {
		t.Fatalf("expected WELCOME10 to be valid, got reason %q", body.Reason)
	}
	if parseMoney(t, body.Discount) != 10 {
		t.Errorf("expected 10%% of 100 = 10, got %s", body.Discount)
	}
}

func TestValidatePromo_Unknown(t *testing.T) {
	resp := doPost(t, "/api/promos/validate", promoValidateRequest{
		Code:     "NOSUCHCODE",
		Subtotal: "100",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[promoValidateResponse](t, resp)
	if body.Valid {
		t.Fatal("expected unknown code to be invalid")
	}
	if body.Reason != "not_found" {
		t.Errorf("expected not_found reason, got %q", body.Reason)
	}
}
