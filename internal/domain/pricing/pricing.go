// Package pricing computes order charges and totals. All functions are pure:
// the charge policy and eligibility results are threaded in explicitly so the
// same inputs always price the same way.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/settings"
)

// Channel identifies where an order was placed.
type Channel string

const (
	// ChannelOnline is the customer-facing storefront.
	ChannelOnline Channel = "online"
	// ChannelPOS is an in-store point-of-sale terminal.
	ChannelPOS Channel = "pos"
)

var hundred = decimal.NewFromInt(100)

// Charges holds each computed charge alongside its pre-waive value, so a
// receipt can show "$X — WAIVED" instead of a silent zero.
type Charges struct {
	Tax         decimal.Decimal
	OriginalTax decimal.Decimal
	TaxWaived   bool

	ConvenienceCharge         decimal.Decimal
	OriginalConvenienceCharge decimal.Decimal
	ConvenienceWaived         bool

	DeliveryCharge         decimal.Decimal
	OriginalDeliveryCharge decimal.Decimal
	DeliveryWaived         bool
}

// CalculateCharges derives tax, convenience charge, and delivery charge from
// the subtotal and charge policy.
//
// Pickup and POS orders carry no convenience charge regardless of the waive
// flag; the fee only applies to remote transactions. Delivery charge is zero
// for pickup orders, free-delivery-eligible orders, or when waived.
func CalculateCharges(
	subtotal decimal.Decimal,
	cfg settings.ChargeConfig,
	freeDelivery bool,
	typ delivery.Type,
	ch Channel,
) Charges {
	c := Charges{
		OriginalTax:               subtotal.Mul(cfg.TaxPercent.Percent).Div(hundred),
		OriginalConvenienceCharge: cfg.ConvenienceCharge.Amount,
		OriginalDeliveryCharge:    cfg.DeliveryCharge.Amount,
	}

	c.TaxWaived = cfg.TaxPercent.Waived
	if !c.TaxWaived {
		c.Tax = c.OriginalTax
	}

	c.ConvenienceWaived = cfg.ConvenienceCharge.Waived || typ == delivery.TypePickup || ch == ChannelPOS
	if !c.ConvenienceWaived {
		c.ConvenienceCharge = c.OriginalConvenienceCharge
	}

	c.DeliveryWaived = cfg.DeliveryCharge.Waived || typ == delivery.TypePickup || freeDelivery
	if !c.DeliveryWaived {
		c.DeliveryCharge = c.OriginalDeliveryCharge
	}

	return c
}

// Totals is the flat pricing summary persisted with the order and rendered
// on receipts.
type Totals struct {
	Subtotal          decimal.Decimal
	TaxRate           decimal.Decimal
	Tax               decimal.Decimal
	ConvenienceCharge decimal.Decimal
	DeliveryCharge    decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
}

// CalculateTotals sums subtotal + charges - discount. The final total is
// floored at zero (a discount can never drive it negative) and rounded to
// 2 decimal places for display and persistence; individual charges are kept
// unrounded for audit display.
func CalculateTotals(
	subtotal decimal.Decimal,
	charges Charges,
	discount decimal.Decimal,
	taxRate decimal.Decimal,
) Totals {
	total := subtotal.
		Add(charges.Tax).
		Add(charges.ConvenienceCharge).
		Add(charges.DeliveryCharge).
		Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:          subtotal,
		TaxRate:           taxRate,
		Tax:               charges.Tax,
		ConvenienceCharge: charges.ConvenienceCharge,
		DeliveryCharge:    charges.DeliveryCharge,
		Discount:          discount.Round(2),
		Total:             total.Round(2),
	}
}
