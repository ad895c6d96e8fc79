package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	domaininv "github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// RestockInput ingreso de mercadería.
type RestockInput struct {
	Name       string
	Price      decimal.Decimal
	Quantity   int
	LotLabel   string
	ExpiryDate time.Time
	UserID     string
}

// RestockResult resultado de un reabastecimiento confirmado.
type RestockResult struct {
	Product      *entity.Product
	Lot          *entity.Lot
	Created      bool // se creó un producto nuevo
	Reactivated  bool
	PriceUpdated bool
}

// RestockUseCase aplica un ingreso a producto y lote sin romper stock = Σ lotes.
type RestockUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewRestockUseCase construye el caso de uso.
func NewRestockUseCase(txRunner TxRunner, log *logger.Logger) *RestockUseCase {
	return &RestockUseCase{txRunner: txRunner, log: log.Named("restock"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *RestockUseCase) WithClock(now func() time.Time) *RestockUseCase {
	uc.now = now
	return uc
}

// restockPlan decisiones tomadas en RESTOCK_LOOKUP/CONFLICT_RESOLUTION, antes de cualquier escritura.
type restockPlan struct {
	product    *entity.Product
	createNew  bool
	reactivate bool
	adoptPrice bool
	expiry     time.Time
}

// Restock busca el producto por nombre (sin distinguir mayúsculas) y el lote del día; los conflictos
// de precio, producto archivado y vencimiento se resuelven con resolver antes de escribir.
// Todo ocurre en una transacción: un aborto o un error no deja rastro.
func (uc *RestockUseCase) Restock(ctx context.Context, in RestockInput, resolver ConflictResolver) (*RestockResult, error) {
	in.Name = strings.Join(strings.Fields(in.Name), " ")
	in.LotLabel = strings.TrimSpace(in.LotLabel)
	if err := validateRestock(in); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = Decisions{}
	}
	now := uc.now()
	today := dateOnly(now)
	txID := uuid.New().String()

	var result *RestockResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		plan, err := uc.lookup(ctx, productRepo, lotRepo, in, today, resolver)
		if err != nil {
			return err
		}

		// LOT_UPSERT
		product := plan.product
		if plan.createNew {
			product = &entity.Product{
				ID:        uuid.New().String(),
				Name:      in.Name,
				Price:     in.Price,
				Status:    entity.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := productRepo.Create(ctx, product); err != nil {
				return err
			}
		}
		if plan.reactivate {
			if err := productRepo.Restore(ctx, product.ID); err != nil {
				return err
			}
		}
		if plan.adoptPrice {
			if err := productRepo.UpdatePrice(ctx, product.ID, in.Price); err != nil {
				return err
			}
		}
		lot, err := lotRepo.Upsert(ctx, repository.LotUpsert{
			ProductID:      product.ID,
			Label:          in.LotLabel,
			IntakeDate:     today,
			ExpiryDate:     plan.expiry,
			DeltaReceived:  in.Quantity,
			DeltaAvailable: in.Quantity,
		})
		if err != nil {
			return err
		}
		if err := movRepo.Create(ctx, &entity.StockMovement{
			ID:            uuid.New().String(),
			TransactionID: txID,
			ProductID:     product.ID,
			LotID:         lot.ID,
			Type:          entity.MovementTypeIN,
			Quantity:      in.Quantity,
			Notes:         "reabastecimiento",
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}); err != nil {
			return err
		}

		// PRODUCT_UPSERT
		if _, err := ResyncStock(ctx, productRepo, lotRepo, product.ID); err != nil {
			return err
		}
		fresh, err := productRepo.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		result = &RestockResult{
			Product:      fresh,
			Lot:          lot,
			Created:      plan.createNew,
			Reactivated:  plan.reactivate,
			PriceUpdated: plan.adoptPrice,
		}
		return nil
	})
	if err != nil {
		var dre *DecisionRequiredError
		switch {
		case errors.As(err, &dre):
			uc.log.Info().Str("name", in.Name).Str("conflict", string(dre.Kind)).Msg("reabastecimiento requiere decisión")
		case errors.Is(err, ErrRestockAborted):
			uc.log.Info().Str("name", in.Name).Msg("reabastecimiento abortado")
		default:
			uc.log.Error().Err(err).Str("name", in.Name).Msg("reabastecimiento fallido")
		}
		return nil, err
	}
	uc.log.Info().
		Str("product_id", result.Product.ID).
		Str("lot", result.Lot.Label).
		Int("quantity", in.Quantity).
		Int("stock", result.Product.Stock).
		Bool("created", result.Created).
		Msg("reabastecimiento confirmado")
	return result, nil
}

// lookup resuelve producto, lote y conflictos sin escribir nada.
func (uc *RestockUseCase) lookup(
	ctx context.Context,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	in RestockInput,
	today time.Time,
	resolver ConflictResolver,
) (*restockPlan, error) {
	plan := &restockPlan{expiry: dateOnly(in.ExpiryDate)}

	candidates, err := productRepo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		plan.createNew = true
		return plan, nil
	}

	found := candidates[0]
	product, err := productRepo.GetForUpdate(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if product.IsActive() {
		if !product.Price.Equal(in.Price) {
			dec, err := resolver.ResolvePrice(ctx, PriceConflict{
				ProductID:     product.ID,
				Name:          product.Name,
				StoredPrice:   product.Price,
				IncomingPrice: in.Price,
			})
			if err != nil {
				return nil, err
			}
			switch dec {
			case PriceAdopt:
				plan.adoptPrice = true
			case PriceKeep:
			case PriceAbort:
				return nil, ErrRestockAborted
			default:
				return nil, fmt.Errorf("%w: decisión de precio %q", domain.ErrInvalidInput, dec)
			}
		}
	} else {
		dec, err := resolver.ResolveArchived(ctx, ArchivedConflict{
			ProductID:     product.ID,
			Name:          product.Name,
			ArchiveReason: product.ArchiveReason,
		})
		if err != nil {
			return nil, err
		}
		switch dec {
		case ArchivedReactivate:
			plan.reactivate = true
			plan.adoptPrice = !product.Price.Equal(in.Price)
		case ArchivedCreateNew:
			plan.createNew = true
			return plan, nil
		case ArchivedAbort:
			return nil, ErrRestockAborted
		default:
			return nil, fmt.Errorf("%w: decisión de producto archivado %q", domain.ErrInvalidInput, dec)
		}
	}
	plan.product = product

	lot, err := lotRepo.GetByNaturalKey(ctx, product.ID, in.LotLabel, today)
	if err != nil {
		return nil, err
	}
	if lot != nil && !dateOnly(lot.ExpiryDate).Equal(plan.expiry) {
		dec, err := resolver.ResolveExpiry(ctx, ExpiryConflict{
			LotID:          lot.ID,
			Label:          lot.Label,
			StoredExpiry:   lot.ExpiryDate,
			IncomingExpiry: plan.expiry,
		})
		if err != nil {
			return nil, err
		}
		switch dec {
		case ExpiryUpdate:
		case ExpiryContinue:
			plan.expiry = dateOnly(lot.ExpiryDate)
		case ExpiryAbort:
			return nil, ErrRestockAborted
		default:
			return nil, fmt.Errorf("%w: decisión de vencimiento %q", domain.ErrInvalidInput, dec)
		}
	}
	return plan, nil
}

func validateRestock(in RestockInput) error {
	switch {
	case !domaininv.ValidProductName(in.Name):
		return fmt.Errorf("%w: el nombre solo admite letras, números y espacios", domain.ErrInvalidInput)
	case !in.Price.IsPositive():
		return fmt.Errorf("%w: el precio debe ser mayor que 0", domain.ErrInvalidInput)
	case !domaininv.ValidPrice(in.Price):
		return fmt.Errorf("%w: el precio admite hasta %d decimales", domain.ErrInvalidInput, domaininv.PriceScale)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: la cantidad debe ser mayor que 0", domain.ErrInvalidInput)
	case in.LotLabel == "":
		return fmt.Errorf("%w: número de lote requerido", domain.ErrInvalidInput)
	case in.ExpiryDate.IsZero():
		return fmt.Errorf("%w: fecha de vencimiento requerida", domain.ErrInvalidInput)
	}
	return nil
}

// dateOnly trunca a la fecha (UTC) para comparar días de ingreso y vencimiento.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToRestockResponse convierte el resultado a DTO.
func ToRestockResponse(r *RestockResult) dto.RestockResponse {
	return dto.RestockResponse{
		Product:      ToProductResponse(r.Product),
		Lot:          ToLotResponse(r.Lot),
		Created:      r.Created,
		Reactivated:  r.Reactivated,
		PriceUpdated: r.PriceUpdated,
	}
}
