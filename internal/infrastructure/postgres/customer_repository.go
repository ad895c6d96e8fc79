package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, first_name, last_name, tax_id, phone, email, address, vat_status, status, archive_reason, created_at, updated_at`

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, first_name, last_name, tax_id, phone, email, address, vat_status, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.FirstName, c.LastName, c.TaxID, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address),
		c.VATStatus, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByTaxID obtiene un cliente por CUIT/CUIL.
func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE tax_id = $1`, taxID)
}

// List lista clientes por estado con paginación.
func (r *CustomerRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + ` FROM customers
		WHERE ($1 = '' OR status = $1)
		ORDER BY last_name, first_name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limitArg(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los datos del cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $2, last_name = $3, tax_id = $4, phone = $5, email = $6, address = $7, vat_status = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.FirstName, c.LastName, c.TaxID, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address),
		c.VATStatus, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus baja lógica o restauración. Al restaurar se conserva el último motivo.
func (r *CustomerRepo) UpdateStatus(ctx context.Context, id, status, reason string) error {
	query := `
		UPDATE customers
		SET status = $2, archive_reason = COALESCE($3, archive_reason), updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, nullIfEmpty(reason))
	if err != nil {
		return fmt.Errorf("update customer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgxScanner) (*entity.Customer, error) {
	var c entity.Customer
	var phone, email, address, reason *string
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.TaxID, &phone, &email, &address,
		&c.VATStatus, &c.Status, &reason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = derefString(phone)
	c.Email = derefString(email)
	c.Address = derefString(address)
	c.ArchiveReason = derefString(reason)
	return &c, nil
}
