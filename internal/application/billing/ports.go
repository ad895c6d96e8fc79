package billing

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y facturación.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
	) error) error
}

// DocumentSource repositorios desde los que se arma el documento.
// Durante una venta están atados a la transacción abierta, así el documento ve la factura sin confirmar.
type DocumentSource struct {
	Invoices      repository.InvoiceRepository
	DeliveryNotes repository.DeliveryNoteRepository
	Products      repository.ProductRepository
}

// DocumentRequest qué documento generar.
type DocumentRequest struct {
	InvoiceID string
	Buyer     *entity.Customer // nil = consumidor final
}

// GeneratedDocument documento guardado.
type GeneratedDocument struct {
	Path string
	Size int
}

// RenderedDocument documento en memoria (descarga).
type RenderedDocument struct {
	FileName string
	Content  []byte
}

// DocumentRenderer arma el PDF de una factura o remito.
type DocumentRenderer interface {
	Render(ctx context.Context, src DocumentSource, req DocumentRequest) (*RenderedDocument, error)
}

// DocumentGenerator genera y guarda el documento de una venta.
// Si el operador cancela el guardado retorna un error que envuelve domain.ErrCancelled
// y la venta completa se revierte.
type DocumentGenerator interface {
	DocumentRenderer
	Generate(ctx context.Context, src DocumentSource, req DocumentRequest) (*GeneratedDocument, error)
	// Discard elimina un documento ya guardado cuando la venta no llegó a confirmarse.
	Discard(ctx context.Context, doc *GeneratedDocument) error
}
