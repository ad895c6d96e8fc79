package inventory

// Niveles de stock mostrados en el resumen de inventario.
const (
	StockStatusCritical   = "Crítico"
	StockStatusConcerning = "Preocupante"
	StockStatusReasonable = "Razonable"
)

// Umbrales de stock (exclusivos).
const (
	CriticalBelow   = 10
	ConcerningBelow = 30
)

// StockStatus clasifica el stock agregado de un producto.
func StockStatus(stock int) string {
	switch {
	case stock < CriticalBelow:
		return StockStatusCritical
	case stock < ConcerningBelow:
		return StockStatusConcerning
	default:
		return StockStatusReasonable
	}
}
