package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de la venta con el precio capturado al momento de vender.
type InvoiceDetail struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
