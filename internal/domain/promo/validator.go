package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Result is the outcome of a successful validation: the matched promo code
// and the discount it yields for the checked subtotal.
type Result struct {
	Promo    *PromoCode
	Discount decimal.Decimal
}

// Validator performs the read-and-decide promo checks. It never mutates
// state, so it is safe to call outside a transaction for pre-flight UI
// validation; the usage counter is enforced again inside the order
// transaction by the guarded increment.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// ValidateByID checks a promo code by its identifier against the current
// subtotal. Checks run in order: exists and not deleted, active, not
// expired, usage under limit, minimum subtotal met. The first failing check
// determines the InvalidError reason.
func (v *Validator) ValidateByID(ctx context.Context, id string, subtotal decimal.Decimal) (*Result, error) {
	p, err := v.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &InvalidError{Code: id, Reason: ReasonNotFound}
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}
	return v.validate(p, subtotal)
}

// ValidateByCode checks a promo code by its human-facing code string.
func (v *Validator) ValidateByCode(ctx context.Context, code string, subtotal decimal.Decimal) (*Result, error) {
	p, err := v.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &InvalidError{Code: code, Reason: ReasonNotFound}
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}
	return v.validate(p, subtotal)
}

func (v *Validator) validate(p *PromoCode, subtotal decimal.Decimal) (*Result, error) {
	if p.Deleted {
		return nil, &InvalidError{Code: p.Code, Reason: ReasonNotFound}
	}
	if !p.Active {
		return nil, &InvalidError{Code: p.Code, Reason: ReasonInactive}
	}
	if p.ExpiresAt != nil && v.now().After(*p.ExpiresAt) {
		return nil, &InvalidError{Code: p.Code, Reason: ReasonExpired}
	}
	if p.MaxUses > 0 && p.Uses >= p.MaxUses {
		return nil, &InvalidError{Code: p.Code, Reason: ReasonUsageLimit}
	}
	if p.MinSubtotal.IsPositive() && subtotal.LessThan(p.MinSubtotal) {
		return nil, &InvalidError{Code: p.Code, Reason: ReasonMinSubtotal}
	}

	return &Result{
		Promo:    p,
		Discount: DiscountAmount(subtotal, p.DiscountType, p.Value, p.MaxDiscount),
	}, nil
}
