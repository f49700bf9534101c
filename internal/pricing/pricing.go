package pricing

import "github.com/shopspring/decimal"

// Settings holds the store-wide pricing knobs. Amounts are minor currency
// units; TaxRate is a decimal fraction such as "0.16".
type Settings struct {
	FreeShippingThreshold int64
	StandardShippingRate  int64
	TaxRate               string
}

// DefaultSettings are used when the store_settings fetch fails at startup.
func DefaultSettings() Settings {
	return Settings{
		FreeShippingThreshold: 5000,
		StandardShippingRate:  300,
		TaxRate:               "0.16",
	}
}

// LineItem is the slice of a cart line the engine needs.
type LineItem struct {
	UnitPrice int64
	Quantity  int
}

// Breakdown is the priced cart: Total = Subtotal + Shipping + Tax.
type Breakdown struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Quote prices a cart against the given settings. Shipping is free for an
// empty cart or once the subtotal reaches the threshold; tax is
// round(subtotal × rate) to whole minor units, half away from zero.
func Quote(items []LineItem, s Settings) Breakdown {
	var subtotal int64
	for _, it := range items {
		subtotal += it.UnitPrice * int64(it.Quantity)
	}

	var shipping int64
	if len(items) > 0 && subtotal < s.FreeShippingThreshold {
		shipping = s.StandardShippingRate
	}

	rate, err := decimal.NewFromString(s.TaxRate)
	if err != nil {
		rate = decimal.Zero
	}
	tax := decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
