// Package promo validates promotional codes and computes their discounts.
package promo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage discounts a percentage of the subtotal.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountValue discounts a flat amount, never exceeding the subtotal.
	DiscountValue DiscountType = "VALUE"
)

var (
	// ErrNotFound is returned when no promo code matches the lookup.
	ErrNotFound = errors.New("promo code not found")
	// ErrUsageExhausted is returned by the guarded usage increment when the
	// code's usage limit has been reached concurrently.
	ErrUsageExhausted = errors.New("promo code usage limit reached")
)

// PromoCode is a promotional discount rule.
type PromoCode struct {
	ID           string
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MaxDiscount  decimal.Decimal // zero means no cap
	MinSubtotal  decimal.Decimal // zero means no minimum
	Active       bool
	Deleted      bool
	ExpiresAt    *time.Time
	Uses         int
	MaxUses      int // zero means unlimited
}

// Reason classifies why a promo code failed validation.
type Reason string

const (
	ReasonNotFound    Reason = "not_found"
	ReasonInactive    Reason = "inactive"
	ReasonExpired     Reason = "expired"
	ReasonUsageLimit  Reason = "usage_limit_reached"
	ReasonMinSubtotal Reason = "minimum_subtotal_not_met"
)

// InvalidError reports the first validation check a promo code failed.
type InvalidError struct {
	Code   string
	Reason Reason
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("promo code %q is not valid: %s", e.Code, e.Reason)
}

// Repository provides promo code lookup. Mutation of the usage counter
// happens inside the order transaction, not here.
type Repository interface {
	GetByID(ctx context.Context, id string) (*PromoCode, error)
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
}
