package entity

import "time"

// DeliveryNote es el remito asociado a una venta con comprador identificado.
type DeliveryNote struct {
	ID         string
	InvoiceID  string
	CustomerID string
	TaxID      string
	VATStatus  string
	StartDate  time.Time
	DueDate    *time.Time
	Lines      []DeliveryNoteLine
	CreatedAt  time.Time
}

// DeliveryNoteLine línea del remito (producto y cantidad, sin precios).
type DeliveryNoteLine struct {
	ID             string
	DeliveryNoteID string
	ProductID      string
	Quantity       int
}
