package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// ResyncStock recalcula el stock agregado del producto como la suma de Available de sus lotes
// y lo persiste. Es la única rutina que escribe products.stock; ventas, reabastecimiento,
// corrección de lotes y archivado la llaman con los repos de su propia transacción.
func ResyncStock(
	ctx context.Context,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	productID string,
) (int, error) {
	total, err := lotRepo.SumAvailable(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("resync stock: %w", err)
	}
	if err := productRepo.SetStock(ctx, productID, total); err != nil {
		return 0, fmt.Errorf("resync stock: %w", err)
	}
	return total, nil
}
