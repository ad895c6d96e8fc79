package entity

// VademecumEntry entrada del catálogo de referencia de medicamentos (solo lectura).
type VademecumEntry struct {
	ID                    string
	TradeName             string
	Presentation          string
	PharmacologicalAction string
	ActiveIngredient      string
	Laboratory            string
}
