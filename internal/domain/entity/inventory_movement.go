package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // reabastecimiento
	MovementTypeOUT        = "OUT"        // venta
	MovementTypeADJUSTMENT = "ADJUSTMENT" // corrección manual de lote
	MovementTypeARCHIVE    = "ARCHIVE"    // lotes puestos en 0 al archivar el producto
)

// StockMovement registra cada cambio sobre la disponibilidad de un lote (auditoría).
type StockMovement struct {
	ID            string
	TransactionID string // factura o reabastecimiento que originó el movimiento
	ProductID     string
	LotID         string
	Type          string
	Quantity      int // positivo entrada, negativo salida
	Notes         string
	CreatedAt     time.Time
	CreatedBy     string
}
