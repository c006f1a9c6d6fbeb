package orders

import "github.com/shopspring/decimal"

var (
	mmPerMeter = decimal.NewFromInt(1000)
	hundred    = decimal.NewFromInt(100)
)

// ItemArea resolves the billable area of an item in square meters together
// with the effective quantity. An explicit area wins over dimensions and
// defaults the quantity to 1; otherwise the area is
// (width/1000) * (height/1000) * quantity with millimeter dimensions.
// Missing or negative dimensions resolve to zero area rather than an error,
// matching what existing clients rely on.
func ItemArea(areaSqm *decimal.Decimal, width, height, quantity *int) (decimal.Decimal, int) {
	if areaSqm != nil {
		qty := 1
		if quantity != nil {
			qty = *quantity
		}
		if areaSqm.IsNegative() {
			return decimal.Zero, qty
		}
		return *areaSqm, qty
	}

	qty := 0
	if quantity != nil {
		qty = *quantity
	}
	var w, h int64
	if width != nil {
		w = int64(*width)
	}
	if height != nil {
		h = int64(*height)
	}
	area := decimal.NewFromInt(w).Div(mmPerMeter).
		Mul(decimal.NewFromInt(h).Div(mmPerMeter)).
		Mul(decimal.NewFromInt(int64(qty)))
	if area.IsNegative() {
		return decimal.Zero, qty
	}
	return area, qty
}

// ItemTotal prices an item: area in square meters times unit price.
func ItemTotal(area, unitPrice decimal.Decimal) decimal.Decimal {
	return area.Mul(unitPrice)
}

// GrandTotal applies the order-level discount and VAT flags to the item
// subtotal. VAT-inclusive prices already contain VAT, so only the discount
// applies; otherwise VAT is added on the discounted net. The result is
// rounded half-up to 2 decimals.
func GrandTotal(subtotal decimal.Decimal, discountPercent *decimal.Decimal, vatInclusive bool, vatRate decimal.Decimal) decimal.Decimal {
	discount := decimal.Zero
	if discountPercent != nil {
		discount = subtotal.Mul(*discountPercent).Div(hundred)
	}
	if vatInclusive {
		return subtotal.Sub(discount).Round(2)
	}
	net := subtotal.Sub(discount)
	return net.Add(net.Mul(vatRate)).Round(2)
}
