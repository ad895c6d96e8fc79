package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto de la farmacia.
// Stock es un valor derivado: siempre igual a la suma de Available de sus lotes tras cada operación confirmada.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal // precio de venta unitario
	Stock         int
	Status        string // active, archived
	ArchiveReason string // se conserva al restaurar como auditoría
	ArchivedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive indica si el producto puede venderse y reabastecerse.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}
