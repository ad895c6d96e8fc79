package sales

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minDiscount = decimal.Zero
	maxDiscount = decimal.NewFromInt(100)
)

// ParseDiscount interpreta el porcentaje ingresado por el operador.
// Texto no numérico equivale a 0; el resultado se redondea a dos decimales y se acota a [0, 100].
func ParseDiscount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return ClampDiscount(d)
}

// DiscountScale decimales que se conservan del porcentaje (NUMERIC(5,2)).
const DiscountScale = 2

// ClampDiscount redondea d a DiscountScale decimales y lo acota a [0, 100].
func ClampDiscount(d decimal.Decimal) decimal.Decimal {
	d = d.Round(DiscountScale)
	if d.LessThan(minDiscount) {
		return minDiscount
	}
	if d.GreaterThan(maxDiscount) {
		return maxDiscount
	}
	return d
}
