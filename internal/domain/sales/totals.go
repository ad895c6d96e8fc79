package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line cantidad y precio unitario capturado de una línea de venta.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal precio × cantidad.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals totales de una venta, redondeados a 2 decimales.
type Totals struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
}

// ComputeTotals bruto = Σ precio × cantidad; neto = bruto × (1 − descuento/100).
// El descuento se acota antes de aplicarse y el redondeo (half-up) se hace al final.
func ComputeTotals(lines []Line, discount decimal.Decimal) Totals {
	gross := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.Subtotal())
	}
	factor := decimal.NewFromInt(1).Sub(ClampDiscount(discount).Div(hundred))
	return Totals{
		Gross: gross.Round(2),
		Net:   gross.Mul(factor).Round(2),
	}
}
