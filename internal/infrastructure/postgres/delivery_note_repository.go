package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// DeliveryNoteRepo remitos (cabecera + líneas).
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

// Create inserta la cabecera y sus líneas. Debe llamarse dentro de la transacción de venta.
func (r *DeliveryNoteRepo) Create(ctx context.Context, note *entity.DeliveryNote) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	query := `
		INSERT INTO delivery_notes (id, invoice_id, customer_id, tax_id, vat_status, start_date, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		note.ID, note.InvoiceID, note.CustomerID, note.TaxID, note.VATStatus, note.StartDate, note.DueDate, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery note: %w", err)
	}
	for i := range note.Lines {
		line := &note.Lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.DeliveryNoteID = note.ID
		_, err := r.q.Exec(ctx,
			`INSERT INTO delivery_note_lines (id, delivery_note_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			line.ID, line.DeliveryNoteID, line.ProductID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert delivery note line: %w", err)
		}
	}
	return nil
}

// GetByInvoiceID obtiene el remito de una venta con sus líneas; nil si la venta fue factura.
func (r *DeliveryNoteRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.DeliveryNote, error) {
	query := `
		SELECT id, invoice_id, customer_id, tax_id, vat_status, start_date, due_date, created_at
		FROM delivery_notes WHERE invoice_id = $1`
	var n entity.DeliveryNote
	err := r.q.QueryRow(ctx, query, invoiceID).Scan(
		&n.ID, &n.InvoiceID, &n.CustomerID, &n.TaxID, &n.VATStatus, &n.StartDate, &n.DueDate, &n.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery note: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT id, delivery_note_id, product_id, quantity FROM delivery_note_lines WHERE delivery_note_id = $1 ORDER BY seq`,
		n.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list delivery note lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DeliveryNoteLine
		if err := rows.Scan(&l.ID, &l.DeliveryNoteID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan delivery note line: %w", err)
		}
		n.Lines = append(n.Lines, l)
	}
	return &n, rows.Err()
}
