package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// PDFUseCase vuelve a generar el PDF de una venta ya confirmada para descargarlo.
type PDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	noteRepo     repository.DeliveryNoteRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	renderer     DocumentRenderer
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	renderer DocumentRenderer,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:  invoiceRepo,
		noteRepo:     noteRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		renderer:     renderer,
	}
}

// Download arma el PDF (factura o remito) de la venta.
//
// Retorna:
//   - el documento renderizado si todo sale bien.
//   - domain.ErrNotFound si la venta no existe.
func (uc *PDFUseCase) Download(ctx context.Context, invoiceID string) (*RenderedDocument, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	req := DocumentRequest{InvoiceID: inv.ID}
	if inv.CustomerID != "" {
		buyer, err := uc.customerRepo.GetByID(ctx, inv.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("pdf: obtener cliente: %w", err)
		}
		req.Buyer = buyer
	}

	doc, err := uc.renderer.Render(ctx, DocumentSource{
		Invoices:      uc.invoiceRepo,
		DeliveryNotes: uc.noteRepo,
		Products:      uc.productRepo,
	}, req)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return doc, nil
}
