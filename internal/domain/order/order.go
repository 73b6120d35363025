// Package order implements the transactional order-creation core: input
// validation, pricing, promo application, race-safe stock re-validation,
// unique number allocation, and atomic persistence.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/product"
)

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// Item is an immutable line-item snapshot: the unit price is copied at order
// time and never recomputed from the product's live price, so historical
// orders stay accurate.
type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is the purchase record produced by the creation orchestrator.
type Order struct {
	ID                string
	Number            string
	UserID            string
	AddressID         string
	Items             []Item
	Subtotal          decimal.Decimal
	TaxRate           decimal.Decimal
	Tax               decimal.Decimal
	ConvenienceCharge decimal.Decimal
	DeliveryCharge    decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	Status            Status
	DeliveryType      delivery.Type
	PaymentMethod     PaymentMethod
	DeliveryDate      *time.Time
	PromoCodeID       string
	Deleted           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Tx is the transaction-scoped handle the orchestrator drives. Every method
// runs against the same database transaction; nothing is visible to other
// readers until the enclosing WithinTx commits.
type Tx interface {
	// ProductForUpdate reads a product with a row lock so stock and price
	// checks stay valid until commit. Returns product.ErrNotFound when the
	// product does not exist.
	ProductForUpdate(ctx context.Context, id string) (*product.Product, error)
	// DecrementStock applies stock = stock - qty as a single guarded
	// statement. Returns ErrStockConflict when the guard rejects the update.
	DecrementStock(ctx context.Context, id string, qty int) error
	// NumberExists checks an order number against all orders, deleted or not.
	NumberExists(ctx context.Context, number string) (bool, error)
	// Insert persists the order header and its line items.
	Insert(ctx context.Context, o *Order) error
	// IncrementPromoUses applies uses = uses + 1 guarded by the usage limit.
	// Returns promo.ErrUsageExhausted when the limit was reached concurrently.
	IncrementPromoUses(ctx context.Context, promoID string) error
}

// Store opens the atomic unit the orchestrator runs in: fn either fully
// applies or fully reverts.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
