package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func TestItemAreaExplicitWins(t *testing.T) {
	area, qty := ItemArea(decPtr("2.5"), intPtr(9000), intPtr(9000), nil)
	require.True(t, area.Equal(dec("2.5")))
	require.Equal(t, 1, qty)

	area, qty = ItemArea(decPtr("2.5"), nil, nil, intPtr(4))
	require.True(t, area.Equal(dec("2.5")))
	require.Equal(t, 4, qty)
}

func TestItemAreaFromDimensions(t *testing.T) {
	// 500mm x 2000mm x 2 pieces = 2 sqm
	area, qty := ItemArea(nil, intPtr(500), intPtr(2000), intPtr(2))
	require.True(t, area.Equal(dec("2")))
	require.Equal(t, 2, qty)
}

func TestItemAreaMissingDimensionsIsZero(t *testing.T) {
	area, qty := ItemArea(nil, nil, intPtr(2000), intPtr(2))
	require.True(t, area.IsZero())
	require.Equal(t, 2, qty)

	area, _ = ItemArea(nil, intPtr(-500), intPtr(2000), intPtr(2))
	require.True(t, area.IsZero())

	area, _ = ItemArea(decPtr("-1"), nil, nil, nil)
	require.True(t, area.IsZero())
}

func TestItemTotal(t *testing.T) {
	require.True(t, ItemTotal(dec("2.5"), dec("100")).Equal(dec("250")))
	require.True(t, ItemTotal(dec("2"), dec("150")).Equal(dec("300")))
}

func TestGrandTotal(t *testing.T) {
	vat := dec("0.20")

	tests := []struct {
		name         string
		subtotal     string
		discount     *decimal.Decimal
		vatInclusive bool
		want         string
	}{
		{"vat exclusive adds vat", "250", nil, false, "300.00"},
		{"vat inclusive keeps subtotal", "250", nil, true, "250.00"},
		{"discount then vat", "250", decPtr("10"), false, "270.00"},
		{"discount on inclusive", "250", decPtr("10"), true, "225.00"},
		{"rounds half up", "100.005", nil, true, "100.01"},
		{"zero subtotal", "0", decPtr("50"), false, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrandTotal(dec(tt.subtotal), tt.discount, tt.vatInclusive, vat)
			require.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestGrandTotalIdempotent(t *testing.T) {
	vat := dec("0.20")
	first := GrandTotal(dec("1234.56"), decPtr("7.5"), false, vat)
	second := GrandTotal(dec("1234.56"), decPtr("7.5"), false, vat)
	require.True(t, first.Equal(second))
}
