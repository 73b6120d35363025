package promo

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountAmount computes the discount a rule yields for the given subtotal.
//
// Percentage discounts take value% of the subtotal, capped by maxDiscount
// when set. Flat discounts are clamped to the subtotal so they can never
// produce a negative post-discount amount on their own, and are also capped
// by maxDiscount when set. The result is floored at zero and rounded to
// 2 decimal places.
func DiscountAmount(subtotal decimal.Decimal, typ DiscountType, value, maxDiscount decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal

	switch typ {
	case DiscountPercentage:
		amount = subtotal.Mul(value).Div(hundred)
	case DiscountValue:
		amount = decimal.Min(value, subtotal)
	default:
		return decimal.Zero
	}

	if maxDiscount.IsPositive() {
		amount = decimal.Min(amount, maxDiscount)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}
