package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

type lotRepo struct {
	db   *Store
	inTx bool
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.db.access(r.inTx, func(st *state) error {
		if l, ok := st.lots[id]; ok {
			c := *l
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *lotRepo) GetByNaturalKey(_ context.Context, productID, label string, intakeDate time.Time) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.db.access(r.inTx, func(st *state) error {
		if l := findNatural(st, productID, label, intakeDate); l != nil {
			c := *l
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *lotRepo) ListAvailable(_ context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(productID, true)
}

func (r *lotRepo) ListAvailableForUpdate(_ context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(productID, true)
}

func (r *lotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(productID, false)
}

func (r *lotRepo) SetAvailable(_ context.Context, lotID string, qty int) error {
	return r.db.access(r.inTx, func(st *state) error {
		l, ok := st.lots[lotID]
		if !ok {
			return domain.ErrNotFound
		}
		if qty < 0 || qty > l.Received {
			return fmt.Errorf("%w: disponible %d fuera de [0, %d]", domain.ErrInvalidInput, qty, l.Received)
		}
		l.Available = qty
		l.UpdatedAt = time.Now()
		return nil
	})
}

func (r *lotRepo) Upsert(_ context.Context, in repository.LotUpsert) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.db.access(r.inTx, func(st *state) error {
		now := time.Now()
		l := findNatural(st, in.ProductID, in.Label, in.IntakeDate)
		if l == nil {
			l = &entity.Lot{
				ID:         uuid.New().String(),
				ProductID:  in.ProductID,
				Label:      in.Label,
				IntakeDate: in.IntakeDate,
				CreatedAt:  now,
			}
			st.lots[l.ID] = l
		}
		l.ExpiryDate = in.ExpiryDate
		l.Received += in.DeltaReceived
		l.Available += in.DeltaAvailable
		l.UpdatedAt = now
		if !l.WithinBounds() {
			return fmt.Errorf("%w: lote %s fuera de rango", domain.ErrInvalidInput, l.Label)
		}
		c := *l
		out = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lotRepo) Update(_ context.Context, lot *entity.Lot) error {
	if !lot.WithinBounds() {
		return fmt.Errorf("%w: lote %s fuera de rango", domain.ErrInvalidInput, lot.Label)
	}
	return r.db.access(r.inTx, func(st *state) error {
		l, ok := st.lots[lot.ID]
		if !ok {
			return domain.ErrNotFound
		}
		l.Received = lot.Received
		l.Available = lot.Available
		l.ExpiryDate = lot.ExpiryDate
		l.UpdatedAt = time.Now()
		return nil
	})
}

func (r *lotRepo) ZeroByProduct(_ context.Context, productID string) error {
	return r.db.access(r.inTx, func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID == productID && l.Available != 0 {
				l.Available = 0
				l.UpdatedAt = time.Now()
			}
		}
		return nil
	})
}

func (r *lotRepo) SumAvailable(_ context.Context, productID string) (int, error) {
	total := 0
	err := r.db.access(r.inTx, func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID == productID {
				total += l.Available
			}
		}
		return nil
	})
	return total, err
}

func (r *lotRepo) list(productID string, onlyAvailable bool) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.db.access(r.inTx, func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID != productID || (onlyAvailable && l.Available <= 0) {
				continue
			}
			c := *l
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func findNatural(st *state, productID, label string, intakeDate time.Time) *entity.Lot {
	for _, l := range st.lots {
		if l.ProductID == productID && l.Label == label && l.IntakeDate.Equal(intakeDate) {
			return l
		}
	}
	return nil
}
