package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento emitidos al confirmar una venta.
const (
	DocumentTypeInvoice      = "FACTURA"
	DocumentTypeDeliveryNote = "REMITO"
)

// Invoice representa la cabecera de una venta. Se escribe una sola vez dentro de la transacción de venta.
type Invoice struct {
	ID           string
	Number       int64 // consecutivo asignado por la base
	DocumentType string
	CustomerID   string // vacío si no hay comprador identificado
	IssuedAt     time.Time
	GrossTotal   decimal.Decimal
	NetTotal     decimal.Decimal
	Discount     decimal.Decimal // porcentaje 0..100
	CreatedBy    string
	CreatedAt    time.Time
}
