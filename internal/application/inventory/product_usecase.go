package inventory

import (
	"context"
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
)

// ProductUseCase consultas, edición de nombre y precio, y baja lógica.
// El stock solo cambia por reabastecimiento, ventas y ajustes de lote.
type ProductUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	lotRepo       repository.LotRepository
	movRepo       repository.StockMovementRepository
	vademecumRepo repository.VademecumRepository // opcional
	log           *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
	vademecumRepo repository.VademecumRepository,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		lotRepo:       lotRepo,
		movRepo:       movRepo,
		vademecumRepo: vademecumRepo,
		log:           log.Named("products"),
	}
}

// List lista productos filtrando por estado (vacío = todos).
func (uc *ProductUseCase) List(ctx context.Context, status string, limit, offset int) (*dto.ProductListResponse, error) {
	if status != "" && status != entity.StatusActive && status != entity.StatusArchived {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.productRepo.List(ctx, repository.ProductFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Detail devuelve el producto con todos sus lotes y la ficha del vademécum por nombre comercial.
func (uc *ProductUseCase) Detail(ctx context.Context, id string) (*dto.ProductDetailResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductDetailResponse{
		Product: ToProductResponse(p),
		Lots:    make([]dto.LotResponse, 0, len(lots)),
	}
	for _, l := range lots {
		out.Lots = append(out.Lots, ToLotResponse(l))
	}
	if uc.vademecumRepo != nil {
		entry, err := uc.vademecumRepo.FindByTradeName(ctx, p.Name)
		if err != nil {
			uc.log.Warn().Err(err).Str("product_id", id).Msg("consulta de vademécum fallida")
		} else if entry != nil {
			v := ToVademecumResponse(entry)
			out.Vademecum = &v
		}
	}
	return out, nil
}

// AvailableLots lotes con disponibilidad en orden FEFO (lo que se ofrece al elegir lote manualmente).
func (uc *ProductUseCase) AvailableLots(ctx context.Context, productID string) ([]dto.LotResponse, error) {
	lots, err := uc.lotRepo.ListAvailable(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, ToLotResponse(l))
	}
	return out, nil
}

// Movements historial de movimientos de lotes del producto.
func (uc *ProductUseCase) Movements(ctx context.Context, productID string, limit, offset int) ([]dto.StockMovementResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			LotID:         m.LotID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			Notes:         m.Notes,
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
		})
	}
	return out, nil
}

// Update edita nombre y precio de un producto activo. El nombre no puede coincidir (NameKey)
// con otro producto activo; el stock no se toca porque sale de la suma de lotes.
func (uc *ProductUseCase) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	name := strings.Join(strings.Fields(req.Name), " ")
	if !domaininv.ValidProductName(name) {
		return nil, fmt.Errorf("%w: el nombre solo admite letras, números y espacios", domain.ErrInvalidInput)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: el precio debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if !domaininv.ValidPrice(req.Price) {
		return nil, fmt.Errorf("%w: el precio admite hasta %d decimales", domain.ErrInvalidInput, domaininv.PriceScale)
	}
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.LotRepository,
		_ repository.StockMovementRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !p.IsActive() {
			return fmt.Errorf("%w: restaure el producto antes de editarlo", domain.ErrArchived)
		}
		if name != p.Name {
			same, err := productRepo.FindByName(ctx, name)
			if err != nil {
				return err
			}
			for _, other := range same {
				if other.ID != id && other.IsActive() {
					return fmt.Errorf("%w: ya existe un producto activo llamado %q", domain.ErrDuplicate, other.Name)
				}
			}
			if err := productRepo.Rename(ctx, id, name); err != nil {
				return err
			}
		}
		if !req.Price.Equal(p.Price) {
			if err := productRepo.UpdatePrice(ctx, id, req.Price); err != nil {
				return err
			}
		}
		out, err = productRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Str("name", out.Name).Str("price", out.Price.String()).Msg("producto actualizado")
	resp := ToProductResponse(out)
	return &resp, nil
}

// Archive da de baja el producto: lotes a 0 (quedan registrados), stock 0 y motivo obligatorio.
func (uc *ProductUseCase) Archive(ctx context.Context, id, reason, userID string) (*dto.ProductResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: motivo de baja requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	txID := uuid.New().String()
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !p.IsActive() {
			return fmt.Errorf("%w: el producto ya está archivado", domain.ErrConflict)
		}
		lots, err := lotRepo.ListAvailableForUpdate(ctx, id)
		if err != nil {
			return err
		}
		for _, l := range lots {
			if err := movRepo.Create(ctx, &entity.StockMovement{
				ID:            uuid.New().String(),
				TransactionID: txID,
				ProductID:     id,
				LotID:         l.ID,
				Type:          entity.MovementTypeARCHIVE,
				Quantity:      -l.Available,
				Notes:         reason,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}
		}
		if err := lotRepo.ZeroByProduct(ctx, id); err != nil {
			return err
		}
		if err := productRepo.Archive(ctx, id, reason, now); err != nil {
			return err
		}
		if _, err := ResyncStock(ctx, productRepo, lotRepo, id); err != nil {
			return err
		}
		out, err = productRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Str("reason", reason).Msg("producto archivado")
	resp := ToProductResponse(out)
	return &resp, nil
}

// Restore reactiva un producto archivado; el motivo anterior queda como auditoría.
func (uc *ProductUseCase) Restore(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.LotRepository,
		_ repository.StockMovementRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.IsActive() {
			return fmt.Errorf("%w: el producto ya está activo", domain.ErrConflict)
		}
		if err := productRepo.Restore(ctx, id); err != nil {
			return err
		}
		out, err = productRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Msg("producto restaurado")
	resp := ToProductResponse(out)
	return &resp, nil
}

// ToProductResponse convierte la entidad a DTO.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Stock:         p.Stock,
		Status:        p.Status,
		ArchiveReason: p.ArchiveReason,
		ArchivedAt:    p.ArchivedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToLotResponse convierte la entidad a DTO.
func ToLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:         l.ID,
		ProductID:  l.ProductID,
		Label:      l.Label,
		IntakeDate: l.IntakeDate,
		ExpiryDate: l.ExpiryDate,
		Received:   l.Received,
		Available:  l.Available,
	}
}

// ToVademecumResponse convierte la entidad a DTO.
func ToVademecumResponse(v *entity.VademecumEntry) dto.VademecumResponse {
	return dto.VademecumResponse{
		ID:                    v.ID,
		TradeName:             v.TradeName,
		Presentation:          v.Presentation,
		PharmacologicalAction: v.PharmacologicalAction,
		ActiveIngredient:      v.ActiveIngredient,
		Laboratory:            v.Laboratory,
	}
}
