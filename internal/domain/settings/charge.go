package settings

import (
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// ChargeRate is a percentage-based charge with its waive flag.
type ChargeRate struct {
	Percent decimal.Decimal
	Waived  bool
}

// ChargeAmount is a flat charge with its waive flag.
type ChargeAmount struct {
	Amount decimal.Decimal
	Waived bool
}

// ChargeConfig is the per-request charge policy snapshot. Missing charges
// default to zero and missing waive flags to false.
type ChargeConfig struct {
	TaxPercent        ChargeRate
	ConvenienceCharge ChargeAmount
	DeliveryCharge    ChargeAmount
}

// ParseChargeConfig builds a ChargeConfig from raw configuration rows.
// It is a pure transformation: same rows in, same config out.
func ParseChargeConfig(rows []Row) (ChargeConfig, error) {
	byKey := indexRows(rows)

	var cfg ChargeConfig
	var err error

	if cfg.TaxPercent.Percent, err = parseAmount(byKey, KeyTaxPercent); err != nil {
		return ChargeConfig{}, err
	}
	if cfg.TaxPercent.Waived, err = parseFlag(byKey, KeyTaxWaived); err != nil {
		return ChargeConfig{}, err
	}
	if cfg.ConvenienceCharge.Amount, err = parseAmount(byKey, KeyConvenienceCharge); err != nil {
		return ChargeConfig{}, err
	}
	if cfg.ConvenienceCharge.Waived, err = parseFlag(byKey, KeyConvenienceWaived); err != nil {
		return ChargeConfig{}, err
	}
	if cfg.DeliveryCharge.Amount, err = parseAmount(byKey, KeyDeliveryCharge); err != nil {
		return ChargeConfig{}, err
	}
	if cfg.DeliveryCharge.Waived, err = parseFlag(byKey, KeyDeliveryWaived); err != nil {
		return ChargeConfig{}, err
	}

	return cfg, nil
}

// PickupAddressID extracts the configured pickup location address, if any.
func PickupAddressID(rows []Row) (string, error) {
	raw, ok := indexRows(rows)[KeyPickupAddressID]
	if !ok {
		return "", nil
	}
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.String {
		return "", &BadValueError{Key: KeyPickupAddressID, Value: string(raw), Want: "string"}
	}
	id, err := d.Str()
	if err != nil {
		return "", &BadValueError{Key: KeyPickupAddressID, Value: string(raw), Want: "string"}
	}
	return id, nil
}

// parseAmount decodes a monetary or percent value. The payload may be a
// JSON number or a numeric string; anything else is a BadValueError.
// A missing key defaults to zero.
func parseAmount(byKey map[string][]byte, key string) (decimal.Decimal, error) {
	raw, ok := byKey[key]
	if !ok {
		return decimal.Zero, nil
	}

	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Number:
		num, err := d.Num()
		if err != nil {
			return decimal.Zero, &BadValueError{Key: key, Value: string(raw), Want: "number"}
		}
		v, err := decimal.NewFromString(num.String())
		if err != nil {
			return decimal.Zero, &BadValueError{Key: key, Value: string(raw), Want: "number"}
		}
		return v, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, &BadValueError{Key: key, Value: string(raw), Want: "number"}
		}
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, &BadValueError{Key: key, Value: string(raw), Want: "number"}
		}
		return v, nil
	default:
		return decimal.Zero, &BadValueError{Key: key, Value: string(raw), Want: "number"}
	}
}

// parseFlag decodes a waive flag. Only JSON booleans are accepted; a missing
// key defaults to false.
func parseFlag(byKey map[string][]byte, key string) (bool, error) {
	raw, ok := byKey[key]
	if !ok {
		return false, nil
	}

	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Bool {
		return false, &BadValueError{Key: key, Value: string(raw), Want: "boolean"}
	}
	v, err := d.Bool()
	if err != nil {
		return false, &BadValueError{Key: key, Value: string(raw), Want: "boolean"}
	}
	return v, nil
}
