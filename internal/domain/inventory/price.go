package inventory

import "github.com/shopspring/decimal"

// PriceScale decimales que admite un precio de venta (NUMERIC(12,2)).
const PriceScale = 2

// ValidPrice indica si el precio es positivo y no tiene más de PriceScale decimales.
// "10.50" y "10.500" son válidos; "10.005" no.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.Equal(p.Round(PriceScale))
}
