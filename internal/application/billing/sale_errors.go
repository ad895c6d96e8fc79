package billing

import (
	"fmt"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
)

// SaleStage estado de un intento de venta.
type SaleStage string

const (
	StageStart              SaleStage = "START"
	StageStockCheck         SaleStage = "STOCK_CHECK"
	StageLotDeduction       SaleStage = "LOT_DEDUCTION"
	StageAggregateResync    SaleStage = "AGGREGATE_RESYNC"
	StageInvoiceWrite       SaleStage = "INVOICE_WRITE"
	StageDocumentGeneration SaleStage = "DOCUMENT_GENERATION"
	StageCommit             SaleStage = "COMMIT"
	StageCommitted          SaleStage = "COMMITTED"
)

// SaleError venta abortada; Stage indica en qué estado falló. Nada quedó escrito.
type SaleError struct {
	Stage SaleStage
	Err   error
}

func (e *SaleError) Error() string {
	return fmt.Sprintf("venta abortada en %s: %v", e.Stage, e.Err)
}

func (e *SaleError) Unwrap() error { return e.Err }

// InsufficientStockError el stock agregado no cubre la cantidad pedida.
type InsufficientStockError struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return domain.ErrInsufficientStock }
