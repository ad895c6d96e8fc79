package repository

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// UpdateStatus cambia Status y ArchiveReason (baja lógica o restauración).
	UpdateStatus(ctx context.Context, id, status, reason string) error
}
