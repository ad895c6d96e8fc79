package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	domaininv "github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// OverviewUseCase resumen de inventario agrupado por producto.
type OverviewUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
}

// NewOverviewUseCase construye el caso de uso.
func NewOverviewUseCase(productRepo repository.ProductRepository, lotRepo repository.LotRepository) *OverviewUseCase {
	return &OverviewUseCase{productRepo: productRepo, lotRepo: lotRepo}
}

// Overview productos activos con lotes disponibles, su vencimiento más próximo y el nivel de stock.
// Ordenado por vencimiento más próximo y luego por nombre.
func (uc *OverviewUseCase) Overview(ctx context.Context) ([]dto.InventoryOverviewItem, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{Status: entity.StatusActive})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryOverviewItem, 0, len(products))
	for _, p := range products {
		lots, err := uc.lotRepo.ListAvailable(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(lots) == 0 {
			continue
		}
		domaininv.SortFEFO(lots)
		nearest := lots[0].ExpiryDate
		items = append(items, dto.InventoryOverviewItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Stock:         p.Stock,
			NearestExpiry: &nearest,
			Status:        domaininv.StockStatus(p.Stock),
			AvailableLots: len(lots),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.NearestExpiry.Equal(*b.NearestExpiry) {
			return a.NearestExpiry.Before(*b.NearestExpiry)
		}
		return a.Name < b.Name
	})
	return items, nil
}
