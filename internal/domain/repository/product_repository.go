package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	Status string // vacío = todos
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos Get* retornan (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetPriceAndStock lectura liviana de precio y stock agregado.
	GetPriceAndStock(ctx context.Context, id string) (price decimal.Decimal, stock int, err error)
	// FindByName busca por nombre sin distinguir mayúsculas; los activos primero.
	FindByName(ctx context.Context, name string) ([]*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Rename cambia el nombre visible; la unicidad por NameKey la valida el caso de uso.
	Rename(ctx context.Context, id, name string) error
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	SetStock(ctx context.Context, id string, stock int) error
	Archive(ctx context.Context, id, reason string, at time.Time) error
	Restore(ctx context.Context, id string) error
}
