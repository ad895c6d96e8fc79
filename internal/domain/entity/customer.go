package entity

import "time"

// Condiciones frente al IVA usadas en el remito.
const (
	VATExempt        = "exento"
	VATMonotributo   = "monotributo"
	VATRegistered    = "resp_inscripto"
	VATOccasional    = "eventual"
	VATFinalConsumer = "consumidor_final"
)

// VATStatuses lista las condiciones válidas en el orden en que se imprimen.
var VATStatuses = []string{VATExempt, VATMonotributo, VATRegistered, VATOccasional, VATFinalConsumer}

// Customer representa un cliente de la farmacia.
type Customer struct {
	ID            string
	FirstName     string
	LastName      string
	TaxID         string // CUIT/CUIL
	Phone         string
	Email         string
	Address       string
	VATStatus     string
	Status        string
	ArchiveReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName devuelve "Nombre Apellido".
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// IsValidVATStatus indica si s es una condición de IVA conocida.
func IsValidVATStatus(s string) bool {
	for _, v := range VATStatuses {
		if v == s {
			return true
		}
	}
	return false
}
