package entity

import "time"

// Lot representa un lote de un producto con fecha de vencimiento.
// Clave natural: (ProductID, Label, IntakeDate). Los lotes nunca se eliminan, aunque queden en 0.
type Lot struct {
	ID         string
	ProductID  string
	Label      string
	IntakeDate time.Time
	ExpiryDate time.Time
	Received   int
	Available  int // 0 <= Available <= Received
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WithinBounds verifica 0 <= Available <= Received.
func (l *Lot) WithinBounds() bool {
	return l.Available >= 0 && l.Available <= l.Received
}
