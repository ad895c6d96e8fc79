package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockRequest body para POST /api/inventory/restock.
// Las decisiones on_* se envían vacías la primera vez; si hay conflicto la API responde 409
// DECISION_REQUIRED con el detalle y el cliente reintenta con la decisión elegida.
type RestockRequest struct {
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	LotLabel         string          `json:"lot_label"`
	ExpiryDate       string          `json:"expiry_date"`                  // YYYY-MM-DD
	OnPriceConflict  string          `json:"on_price_conflict,omitempty"`  // adopt | keep | abort
	OnArchived       string          `json:"on_archived,omitempty"`        // reactivate | create_new | abort
	OnExpiryConflict string          `json:"on_expiry_conflict,omitempty"` // update | continue | abort
}

// RestockResponse resultado del reabastecimiento.
type RestockResponse struct {
	Product      ProductResponse `json:"product"`
	Lot          LotResponse     `json:"lot"`
	Created      bool            `json:"created"`
	Reactivated  bool            `json:"reactivated"`
	PriceUpdated bool            `json:"price_updated"`
}

// DecisionRequiredResponse cuerpo 409 cuando un conflicto necesita respuesta del operador.
type DecisionRequiredResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Kind     string `json:"kind"` // price | archived | expiry
	Conflict any    `json:"conflict"`
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Label      string    `json:"label"`
	IntakeDate time.Time `json:"intake_date"`
	ExpiryDate time.Time `json:"expiry_date"`
	Received   int       `json:"received"`
	Available  int       `json:"available"`
}

// UpdateLotRequest body para PUT /api/lots/:id (corrección manual).
type UpdateLotRequest struct {
	Received   int    `json:"received"`
	Available  int    `json:"available"`
	ExpiryDate string `json:"expiry_date"` // YYYY-MM-DD
	Notes      string `json:"notes,omitempty"`
}

// InventoryOverviewItem fila del resumen de inventario agrupado por producto.
type InventoryOverviewItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	NearestExpiry *time.Time      `json:"nearest_expiry,omitempty"`
	Status        string          `json:"status"` // Crítico | Preocupante | Razonable
	AvailableLots int             `json:"available_lots"`
}

// StockMovementResponse movimiento de lote en respuestas.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	LotID         string    `json:"lot_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
}

// LotSelectionSettings política de lotes vigente.
type LotSelectionSettings struct {
	ManualLotSelection bool `json:"manual_lot_selection"`
}
