package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

type invoiceRepo struct {
	db   *Store
	inTx bool
}

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.db.access(r.inTx, func(st *state) error {
		if _, ok := st.invoices[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		st.lastNumber++
		inv.Number = st.lastNumber
		c := *inv
		st.invoices[inv.ID] = &c
		return nil
	})
}

func (r *invoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	return r.db.access(r.inTx, func(st *state) error {
		if _, ok := st.invoices[d.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		c := *d
		st.details = append(st.details, &c)
		return nil
	})
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.db.access(r.inTx, func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			c := *inv
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *invoiceRepo) GetDetailsByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	var out []*entity.InvoiceDetail
	err := r.db.access(r.inTx, func(st *state) error {
		for _, d := range st.details {
			if d.InvoiceID == invoiceID {
				c := *d
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// List número descendente.
func (r *invoiceRepo) List(_ context.Context, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	err := r.db.access(r.inTx, func(st *state) error {
		for _, inv := range st.invoices {
			c := *inv
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), err
}

type noteRepo struct {
	db   *Store
	inTx bool
}

func (r *noteRepo) Create(_ context.Context, note *entity.DeliveryNote) error {
	return r.db.access(r.inTx, func(st *state) error {
		if _, ok := st.invoices[note.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.notes[note.InvoiceID]; ok {
			return domain.ErrDuplicate
		}
		st.notes[note.InvoiceID] = cloneNote(note)
		return nil
	})
}

func (r *noteRepo) GetByInvoiceID(_ context.Context, invoiceID string) (*entity.DeliveryNote, error) {
	var out *entity.DeliveryNote
	err := r.db.access(r.inTx, func(st *state) error {
		if n, ok := st.notes[invoiceID]; ok {
			out = cloneNote(n)
		}
		return nil
	})
	return out, err
}
