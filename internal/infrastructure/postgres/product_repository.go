package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, price, stock, status, archive_reason, archived_at, created_at, updated_at`

// Create persiste un nuevo producto. name_key guarda el nombre normalizado para la búsqueda sin mayúsculas.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, name_key, price, stock, status, archive_reason, archived_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, inventory.NameKey(product.Name), product.Price, product.Stock,
		product.Status, nullIfEmpty(product.ArchiveReason), product.ArchivedAt, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetPriceAndStock lectura liviana de precio y stock.
func (r *ProductRepo) GetPriceAndStock(ctx context.Context, id string) (decimal.Decimal, int, error) {
	var price decimal.Decimal
	var stock int
	err := r.q.QueryRow(ctx, `SELECT price, stock FROM products WHERE id = $1`, id).Scan(&price, &stock)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, 0, domain.ErrNotFound
		}
		return decimal.Zero, 0, fmt.Errorf("get price and stock: %w", err)
	}
	return price, stock, nil
}

// FindByName productos con el mismo nombre normalizado; activos primero.
func (r *ProductRepo) FindByName(ctx context.Context, name string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE name_key = $1
		ORDER BY (status = 'active') DESC, created_at, id`
	return r.getMany(ctx, query, inventory.NameKey(name))
}

// List lista productos por estado (vacío = todos) ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR status = $1)
		ORDER BY name_key, id
		LIMIT $2 OFFSET $3`
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return r.getMany(ctx, query, filter.Status, limitArg(filter.Limit), offset)
}

func (r *ProductRepo) Rename(ctx context.Context, id, name string) error {
	return r.execOne(ctx, "rename", `UPDATE products SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
}

// UpdatePrice actualiza el precio de venta.
func (r *ProductRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return r.execOne(ctx, "update price", `UPDATE products SET price = $2, updated_at = NOW() WHERE id = $1`, id, price)
}

// SetStock escribe el stock agregado. Solo lo llama inventory.ResyncStock.
func (r *ProductRepo) SetStock(ctx context.Context, id string, stock int) error {
	return r.execOne(ctx, "set stock", `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`, id, stock)
}

// Archive baja lógica: stock en 0, motivo y fecha.
func (r *ProductRepo) Archive(ctx context.Context, id, reason string, at time.Time) error {
	query := `
		UPDATE products
		SET status = 'archived', archive_reason = $2, archived_at = $3, stock = 0, updated_at = NOW()
		WHERE id = $1`
	return r.execOne(ctx, "archive product", query, id, reason, at)
}

// Restore reactiva el producto; archive_reason queda como auditoría.
func (r *ProductRepo) Restore(ctx context.Context, id string) error {
	query := `UPDATE products SET status = 'active', archived_at = NULL, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "restore product", query, id)
}

func (r *ProductRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) getMany(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgxScanner) (*entity.Product, error) {
	var p entity.Product
	var reason *string
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Status, &reason, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ArchiveReason = derefString(reason)
	return &p, nil
}
