package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
)

type vademecumRepo struct {
	db *Store
}

func (r *vademecumRepo) FindByTradeName(_ context.Context, name string) (*entity.VademecumEntry, error) {
	key := inventory.NameKey(name)
	var out *entity.VademecumEntry
	err := r.db.access(false, func(st *state) error {
		for _, e := range st.vademecum {
			if inventory.NameKey(e.TradeName) == key {
				cp := *e
				out = &cp
				break
			}
		}
		return nil
	})
	return out, err
}

// Search coincidencia parcial en nombre comercial o principio activo.
func (r *vademecumRepo) Search(_ context.Context, term string, limit int) ([]*entity.VademecumEntry, error) {
	key := inventory.NameKey(term)
	var out []*entity.VademecumEntry
	err := r.db.access(false, func(st *state) error {
		for _, e := range st.vademecum {
			if strings.Contains(inventory.NameKey(e.TradeName), key) ||
				strings.Contains(inventory.NameKey(e.ActiveIngredient), key) {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TradeName < out[j].TradeName })
	return page(out, limit, 0), err
}

func (r *vademecumRepo) Count(_ context.Context) (int, error) {
	n := 0
	err := r.db.access(false, func(st *state) error {
		n = len(st.vademecum)
		return nil
	})
	return n, err
}

func (r *vademecumRepo) BulkInsert(_ context.Context, entries []*entity.VademecumEntry) (int, error) {
	err := r.db.access(false, func(st *state) error {
		for _, e := range entries {
			cp := *e
			if cp.ID == "" {
				cp.ID = uuid.New().String()
			}
			st.vademecum = append(st.vademecum, &cp)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
