package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	domaininv "github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// OutRequest salida de stock de un producto dentro de una transacción abierta.
type OutRequest struct {
	ProductID     string
	Quantity      int
	Policy        LotPolicy
	Picker        LotPicker // obligatorio con LotPolicyManual
	TransactionID string    // normalmente el ID de la factura
	UserID        string
	Now           time.Time
}

// DeductLots bloquea los lotes disponibles del producto (SELECT FOR UPDATE), calcula el plan
// según la política y lo aplica, registrando un movimiento OUT por lote tocado.
// El plan se calcula completo antes de escribir: si no es factible no se modifica nada.
// No recalcula el stock agregado; eso queda a cargo del caller con ResyncStock.
func DeductLots(
	ctx context.Context,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
	req OutRequest,
) ([]domaininv.Deduction, error) {
	if req.ProductID == "" || req.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	lots, err := lotRepo.ListAvailableForUpdate(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	domaininv.SortFEFO(lots)

	var plan []domaininv.Deduction
	switch req.Policy {
	case LotPolicyManual:
		d, err := planManual(ctx, req, lots)
		if err != nil {
			return nil, err
		}
		plan = []domaininv.Deduction{d}
	case LotPolicyAutomatic, "":
		plan, err = domaininv.PlanFEFO(lots, req.Quantity)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", req.ProductID, err)
		}
	default:
		return nil, fmt.Errorf("%w: política de lotes %q", domain.ErrInvalidInput, req.Policy)
	}

	for _, d := range plan {
		if err := lotRepo.SetAvailable(ctx, d.LotID, d.Remaining); err != nil {
			return nil, err
		}
		mov := &entity.StockMovement{
			ID:            uuid.New().String(),
			TransactionID: req.TransactionID,
			ProductID:     req.ProductID,
			LotID:         d.LotID,
			Type:          entity.MovementTypeOUT,
			Quantity:      -d.Amount,
			CreatedAt:     req.Now,
			CreatedBy:     req.UserID,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func planManual(ctx context.Context, req OutRequest, lots []*entity.Lot) (domaininv.Deduction, error) {
	if req.Picker == nil {
		return domaininv.Deduction{}, fmt.Errorf("%w: selección manual sin selector de lotes", domain.ErrInvalidInput)
	}
	if len(lots) == 0 {
		return domaininv.Deduction{}, fmt.Errorf("producto %s: %w", req.ProductID, domain.ErrInsufficientStock)
	}
	idx, ok, err := req.Picker.PickLot(ctx, req.ProductID, lots)
	if err != nil {
		return domaininv.Deduction{}, err
	}
	if !ok {
		return domaininv.Deduction{}, fmt.Errorf("%w: selección de lote para %s", domain.ErrCancelled, req.ProductID)
	}
	if idx < 0 || idx >= len(lots) {
		return domaininv.Deduction{}, fmt.Errorf("%w: índice de lote %d", domain.ErrInvalidInput, idx)
	}
	d, err := domaininv.PlanSingleLot(lots[idx], req.Quantity)
	if err != nil {
		return domaininv.Deduction{}, fmt.Errorf("producto %s: %w", req.ProductID, err)
	}
	return d, nil
}
