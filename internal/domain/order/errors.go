package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation and configuration failures.
var (
	ErrNoItems                 = errors.New("order has no items")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidDeliveryType     = errors.New("invalid delivery type")
	ErrInvalidTotal            = errors.New("order total must be positive")
	ErrDeliveryDateRequired    = errors.New("delivery date is required for delivery orders")
	ErrDeliveryDateInPast      = errors.New("delivery date must be today or later")
	ErrOrderNumberExhausted    = errors.New("unable to allocate order number")
	ErrWalkInNotConfigured     = errors.New("walk-in customer is not configured")
	ErrPickupNotConfigured     = errors.New("pickup location is not configured")
	// ErrStockConflict is the storage layer's signal that the guarded stock
	// decrement rejected the update. The orchestrator maps it to an
	// InsufficientStockError with product detail.
	ErrStockConflict = errors.New("stock decrement rejected")
)

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// DeliveryNotAvailableError indicates the date/city pair is not serviced.
type DeliveryNotAvailableError struct {
	City string
	Date time.Time
}

func (e *DeliveryNotAvailableError) Error() string {
	return fmt.Sprintf("delivery is not available in %s on %s", e.City, e.Date.Format("2006-01-02"))
}

// ProductUnavailableError indicates a line item's product is missing,
// inactive, or deleted.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

// InsufficientStockError indicates a line item requests more units than the
// product has in stock at re-validation time.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

// PriceMismatchError indicates the product's live price no longer matches
// the price the order was quoted at; the client must re-quote.
type PriceMismatchError struct {
	ProductID string
	Quoted    decimal.Decimal
	Live      decimal.Decimal
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price changed for product %s: quoted %s, now %s",
		e.ProductID, e.Quoted.StringFixed(2), e.Live.StringFixed(2))
}
