package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type productRepo struct {
	db   *Store
	inTx bool
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.db.access(r.inTx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = cloneProduct(p)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.db.access(r.inTx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate el mutex del Store ya serializa la transacción completa.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetPriceAndStock(ctx context.Context, id string) (decimal.Decimal, int, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if p == nil {
		return decimal.Zero, 0, domain.ErrNotFound
	}
	return p.Price, p.Stock, nil
}

func (r *productRepo) FindByName(_ context.Context, name string) ([]*entity.Product, error) {
	key := inventory.NameKey(name)
	var out []*entity.Product
	err := r.db.access(r.inTx, func(st *state) error {
		for _, p := range st.products {
			if inventory.NameKey(p.Name) == key {
				out = append(out, cloneProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive() != out[j].IsActive() {
			return out[i].IsActive()
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.db.access(r.inTx, func(st *state) error {
		for _, p := range st.products {
			if filter.Status != "" && p.Status != filter.Status {
				continue
			}
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := inventory.NameKey(out[i].Name), inventory.NameKey(out[j].Name)
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *productRepo) Rename(_ context.Context, id, name string) error {
	return r.mutate(id, func(p *entity.Product) {
		p.Name = name
	})
}

func (r *productRepo) UpdatePrice(_ context.Context, id string, price decimal.Decimal) error {
	return r.mutate(id, func(p *entity.Product) {
		p.Price = price
	})
}

func (r *productRepo) SetStock(_ context.Context, id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	return r.mutate(id, func(p *entity.Product) {
		p.Stock = stock
	})
}

func (r *productRepo) Archive(_ context.Context, id, reason string, at time.Time) error {
	return r.mutate(id, func(p *entity.Product) {
		p.Status = entity.StatusArchived
		p.ArchiveReason = reason
		p.ArchivedAt = &at
		p.Stock = 0
	})
}

// Restore conserva ArchiveReason como auditoría.
func (r *productRepo) Restore(_ context.Context, id string) error {
	return r.mutate(id, func(p *entity.Product) {
		p.Status = entity.StatusActive
		p.ArchivedAt = nil
	})
}

func (r *productRepo) mutate(id string, fn func(p *entity.Product)) error {
	return r.db.access(r.inTx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(p)
		p.UpdatedAt = time.Now()
		return nil
	})
}

// page aplica limit/offset; limit 0 = sin límite.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
