package repository

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para la auditoría de movimientos de lotes.
type StockMovementRepository interface {
	Create(ctx context.Context, mov *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
