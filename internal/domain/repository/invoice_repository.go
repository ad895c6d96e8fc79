package repository

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y detalles.
type InvoiceRepository interface {
	// Create inserta la cabecera y asigna invoice.Number.
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
}

// DeliveryNoteRepository define el puerto de persistencia para remitos.
type DeliveryNoteRepository interface {
	// Create inserta la cabecera y sus líneas.
	Create(ctx context.Context, note *entity.DeliveryNote) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.DeliveryNote, error)
}
