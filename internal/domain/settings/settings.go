// Package settings turns raw, loosely-typed configuration rows into the
// strongly-typed policies the pricing path depends on. Values are stored as
// JSON payloads and historically carry mixed encodings (numbers as strings,
// bare booleans), so every key gets a strict parser rather than silent
// coercion.
package settings

import (
	"context"
	"fmt"
)

// Row is a single raw configuration record as stored: a key and a JSON
// value payload.
type Row struct {
	Key   string
	Value []byte
}

// Known configuration keys.
const (
	KeyTaxPercent        = "tax_percent"
	KeyTaxWaived         = "tax_waived"
	KeyConvenienceCharge = "convenience_charge"
	KeyConvenienceWaived = "convenience_charge_waived"
	KeyDeliveryCharge    = "delivery_charge"
	KeyDeliveryWaived    = "delivery_charge_waived"
	KeyFreeDelivery      = "free_delivery"
	KeyPickupAddressID   = "pickup_address_id"
)

// Source loads all raw configuration rows. Implemented by the settings
// repository; the pricing path re-reads it per request instead of caching.
type Source interface {
	GetAll(ctx context.Context) ([]Row, error)
}

// BadValueError reports a configuration value whose payload cannot be
// parsed into the type its key requires. Parsing fails fast instead of
// letting a garbage value flow into pricing.
type BadValueError struct {
	Key   string
	Value string
	Want  string
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("config %q: cannot parse %q as %s", e.Key, e.Value, e.Want)
}

func indexRows(rows []Row) map[string][]byte {
	byKey := make(map[string][]byte, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}
	return byKey
}
