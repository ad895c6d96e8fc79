// Package memory implementa los repositorios sobre un almacén en memoria.
// Se usa con STORAGE=memory (demo local) y en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

type state struct {
	products   map[string]*entity.Product
	lots       map[string]*entity.Lot
	movements  []*entity.StockMovement
	invoices   map[string]*entity.Invoice
	details    []*entity.InvoiceDetail
	notes      map[string]*entity.DeliveryNote // por invoice ID
	customers  map[string]*entity.Customer
	users      map[string]*entity.User
	vademecum  []*entity.VademecumEntry
	lastNumber int64
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		lots:      make(map[string]*entity.Lot),
		invoices:  make(map[string]*entity.Invoice),
		notes:     make(map[string]*entity.DeliveryNote),
		customers: make(map[string]*entity.Customer),
		users:     make(map[string]*entity.User),
	}
}

// clone copia profunda usada como snapshot de la transacción.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range s.lots {
		l := *v
		c.lots[k] = &l
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, v := range s.movements {
		m := *v
		c.movements[i] = &m
	}
	for k, v := range s.invoices {
		inv := *v
		c.invoices[k] = &inv
	}
	c.details = make([]*entity.InvoiceDetail, len(s.details))
	for i, v := range s.details {
		d := *v
		c.details[i] = &d
	}
	for k, v := range s.notes {
		c.notes[k] = cloneNote(v)
	}
	for k, v := range s.customers {
		cu := *v
		c.customers[k] = &cu
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	c.vademecum = make([]*entity.VademecumEntry, len(s.vademecum))
	for i, v := range s.vademecum {
		e := *v
		c.vademecum[i] = &e
	}
	c.lastNumber = s.lastNumber
	return c
}

func cloneProduct(p *entity.Product) *entity.Product {
	out := *p
	if p.ArchivedAt != nil {
		at := *p.ArchivedAt
		out.ArchivedAt = &at
	}
	return &out
}

func cloneNote(n *entity.DeliveryNote) *entity.DeliveryNote {
	out := *n
	if n.DueDate != nil {
		due := *n.DueDate
		out.DueDate = &due
	}
	out.Lines = append([]entity.DeliveryNoteLine(nil), n.Lines...)
	return &out
}

// Store almacén en memoria. Las transacciones se serializan con un único mutex y
// se revierten restaurando un snapshot del estado.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// access ejecuta fn sobre el estado. Fuera de una transacción toma el mutex;
// dentro, el mutex ya lo tiene el runner.
func (s *Store) access(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// Repositorios fuera de transacción (equivalentes a los que reciben el pool en postgres).

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{db: s}
}

func (s *Store) Lots() repository.LotRepository {
	return &lotRepo{db: s}
}

func (s *Store) Movements() repository.StockMovementRepository {
	return &movementRepo{db: s}
}

func (s *Store) Invoices() repository.InvoiceRepository {
	return &invoiceRepo{db: s}
}

func (s *Store) DeliveryNotes() repository.DeliveryNoteRepository {
	return &noteRepo{db: s}
}

func (s *Store) Customers() repository.CustomerRepository {
	return &customerRepo{db: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{db: s}
}

func (s *Store) Vademecum() repository.VademecumRepository {
	return &vademecumRepo{db: s}
}

// TxRunner implementa inventory.TxRunner y billing.BillingTxRunner sobre el Store.
type TxRunner struct {
	db *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(db *Store) *TxRunner {
	return &TxRunner{db: db}
}

// Run ejecuta fn con repos de inventario atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func() error {
		return fn(&productRepo{db: r.db, inTx: true}, &lotRepo{db: r.db, inTx: true}, &movementRepo{db: r.db, inTx: true})
	})
}

// RunBilling ejecuta fn con repos de inventario y facturación atados a la transacción.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
) error) error {
	return r.run(ctx, func() error {
		return fn(
			&productRepo{db: r.db, inTx: true},
			&lotRepo{db: r.db, inTx: true},
			&movementRepo{db: r.db, inTx: true},
			&invoiceRepo{db: r.db, inTx: true},
			&noteRepo{db: r.db, inTx: true},
		)
	})
}

func (r *TxRunner) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: iniciar transacción: %w", err)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	snapshot := r.db.st.clone()
	// Un panic en fn revierte igual que un error; se relanza con el estado ya restaurado.
	defer func() {
		if p := recover(); p != nil {
			r.db.st = snapshot
			panic(p)
		}
	}()
	if err := fn(); err != nil {
		r.db.st = snapshot
		return err
	}
	// Igual que pgx: un commit con el contexto cancelado falla y revierte.
	if err := ctx.Err(); err != nil {
		r.db.st = snapshot
		return fmt.Errorf("memory: commit: %w", err)
	}
	return nil
}
