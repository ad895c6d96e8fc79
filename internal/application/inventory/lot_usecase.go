package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

// LotUseCase corrección manual de lotes.
type LotUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(txRunner TxRunner, log *logger.Logger) *LotUseCase {
	return &LotUseCase{txRunner: txRunner, log: log.Named("lots")}
}

// LotCorrection nuevos valores de un lote.
type LotCorrection struct {
	Received   int
	Available  int
	ExpiryDate time.Time
	Notes      string
	UserID     string
}

// UpdateLot corrige recibido, disponible y vencimiento y recalcula el stock del producto
// en la misma transacción.
func (uc *LotUseCase) UpdateLot(ctx context.Context, lotID string, in LotCorrection) (*dto.LotResponse, error) {
	if in.Received < 0 || in.Available < 0 || in.Available > in.Received {
		return nil, fmt.Errorf("%w: se requiere 0 <= disponible <= recibido", domain.ErrInvalidInput)
	}
	if in.ExpiryDate.IsZero() {
		return nil, fmt.Errorf("%w: fecha de vencimiento requerida", domain.ErrInvalidInput)
	}
	now := time.Now()
	var out *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		product, err := productRepo.GetForUpdate(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !product.IsActive() {
			return fmt.Errorf("%w: producto archivado", domain.ErrArchived)
		}
		delta := in.Available - lot.Available
		lot.Received = in.Received
		lot.Available = in.Available
		lot.ExpiryDate = dateOnly(in.ExpiryDate)
		lot.UpdatedAt = now
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		if delta != 0 {
			if err := movRepo.Create(ctx, &entity.StockMovement{
				ID:            uuid.New().String(),
				TransactionID: uuid.New().String(),
				ProductID:     lot.ProductID,
				LotID:         lot.ID,
				Type:          entity.MovementTypeADJUSTMENT,
				Quantity:      delta,
				Notes:         in.Notes,
				CreatedAt:     now,
				CreatedBy:     in.UserID,
			}); err != nil {
				return err
			}
		}
		if _, err := ResyncStock(ctx, productRepo, lotRepo, lot.ProductID); err != nil {
			return err
		}
		out = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", lotID).Int("received", in.Received).Int("available", in.Available).Msg("lote corregido")
	resp := ToLotResponse(out)
	return &resp, nil
}
