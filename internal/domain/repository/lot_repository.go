package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// LotUpsert datos para insertar un lote o sumar cantidades al existente con la misma clave natural.
type LotUpsert struct {
	ProductID      string
	Label          string
	IntakeDate     time.Time
	ExpiryDate     time.Time
	DeltaReceived  int
	DeltaAvailable int
}

// LotRepository define el puerto de persistencia para los lotes de producto.
type LotRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	GetByNaturalKey(ctx context.Context, productID, label string, intakeDate time.Time) (*entity.Lot, error)
	// ListAvailable lotes con Available > 0, ordenados por vencimiento y luego por ID.
	ListAvailable(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListAvailableForUpdate igual que ListAvailable pero bloqueando las filas.
	ListAvailableForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListByProduct todos los lotes, incluidos los agotados.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	SetAvailable(ctx context.Context, lotID string, qty int) error
	// Upsert inserta o suma deltas; si el lote existe, ExpiryDate reemplaza al guardado.
	Upsert(ctx context.Context, in LotUpsert) (*entity.Lot, error)
	// Update corrige recibido, disponible y vencimiento de un lote.
	Update(ctx context.Context, lot *entity.Lot) error
	ZeroByProduct(ctx context.Context, productID string) error
	SumAvailable(ctx context.Context, productID string) (int, error)
}
