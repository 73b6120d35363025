package settings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(kv map[string]string) []Row {
	out := make([]Row, 0, len(kv))
	for k, v := range kv {
		out = append(out, Row{Key: k, Value: []byte(v)})
	}
	return out
}

func TestParseChargeConfig_NumbersAndStrings(t *testing.T) {
	// Historic rows store amounts as quoted strings, newer ones as numbers.
	// Both must parse identically.
	cfg, err := ParseChargeConfig(rows(map[string]string{
		KeyTaxPercent:        `"13"`,
		KeyConvenienceCharge: `1.5`,
		KeyDeliveryCharge:    `" 5.00 "`,
	}))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(13).Equal(cfg.TaxPercent.Percent))
	assert.True(t, decimal.RequireFromString("1.5").Equal(cfg.ConvenienceCharge.Amount))
	assert.True(t, decimal.RequireFromString("5.00").Equal(cfg.DeliveryCharge.Amount))
	assert.False(t, cfg.TaxPercent.Waived)
	assert.False(t, cfg.ConvenienceCharge.Waived)
	assert.False(t, cfg.DeliveryCharge.Waived)
}

func TestParseChargeConfig_WaiveFlags(t *testing.T) {
	cfg, err := ParseChargeConfig(rows(map[string]string{
		KeyTaxPercent:        `13`,
		KeyTaxWaived:         `true`,
		KeyConvenienceWaived: `false`,
		KeyDeliveryWaived:    `true`,
	}))
	require.NoError(t, err)

	assert.True(t, cfg.TaxPercent.Waived)
	assert.False(t, cfg.ConvenienceCharge.Waived)
	assert.True(t, cfg.DeliveryCharge.Waived)
}

func TestParseChargeConfig_MissingKeysDefaultToZero(t *testing.T) {
	cfg, err := ParseChargeConfig(nil)
	require.NoError(t, err)

	assert.True(t, cfg.TaxPercent.Percent.IsZero())
	assert.True(t, cfg.ConvenienceCharge.Amount.IsZero())
	assert.True(t, cfg.DeliveryCharge.Amount.IsZero())
	assert.False(t, cfg.TaxPercent.Waived)
}

func TestParseChargeConfig_BadValues(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		wantKey string
	}{
		{
			name:    "non-numeric string amount",
			rows:    rows(map[string]string{KeyTaxPercent: `"free"`}),
			wantKey: KeyTaxPercent,
		},
		{
			name:    "boolean amount",
			rows:    rows(map[string]string{KeyDeliveryCharge: `true`}),
			wantKey: KeyDeliveryCharge,
		},
		{
			name:    "string waive flag",
			rows:    rows(map[string]string{KeyTaxWaived: `"yes"`}),
			wantKey: KeyTaxWaived,
		},
		{
			name:    "numeric waive flag",
			rows:    rows(map[string]string{KeyConvenienceWaived: `1`}),
			wantKey: KeyConvenienceWaived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChargeConfig(tt.rows)

			var bad *BadValueError
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, tt.wantKey, bad.Key)
		})
	}
}

func TestPickupAddressID(t *testing.T) {
	id, err := PickupAddressID(rows(map[string]string{KeyPickupAddressID: `"addr-1"`}))
	require.NoError(t, err)
	assert.Equal(t, "addr-1", id)
}

func TestPickupAddressID_Missing(t *testing.T) {
	id, err := PickupAddressID(nil)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestPickupAddressID_NotAString(t *testing.T) {
	_, err := PickupAddressID(rows(map[string]string{KeyPickupAddressID: `42`}))

	var bad *BadValueError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, KeyPickupAddressID, bad.Key)
}
