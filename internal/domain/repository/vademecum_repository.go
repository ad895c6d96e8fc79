package repository

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// VademecumRepository acceso al catálogo de referencia de medicamentos.
type VademecumRepository interface {
	FindByTradeName(ctx context.Context, name string) (*entity.VademecumEntry, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.VademecumEntry, error)
	Count(ctx context.Context) (int, error)
	BulkInsert(ctx context.Context, entries []*entity.VademecumEntry) (int, error)
}
