package memory

import (
	"context"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

type movementRepo struct {
	db   *Store
	inTx bool
}

func (r *movementRepo) Create(_ context.Context, mov *entity.StockMovement) error {
	return r.db.access(r.inTx, func(st *state) error {
		c := *mov
		st.movements = append(st.movements, &c)
		return nil
	})
}

// ListByProduct más recientes primero.
func (r *movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.db.access(r.inTx, func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}
