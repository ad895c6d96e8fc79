package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

type customerRepo struct {
	db *Store
}

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.db.access(false, func(st *state) error {
		for _, other := range st.customers {
			if other.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		st.customers[c.ID] = &cp
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.db.access(false, func(st *state) error {
		if c, ok := st.customers[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.db.access(false, func(st *state) error {
		for _, c := range st.customers {
			if c.TaxID == taxID {
				cp := *c
				out = &cp
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.db.access(false, func(st *state) error {
		for _, c := range st.customers {
			if status != "" && c.Status != status {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), err
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.db.access(false, func(st *state) error {
		if _, ok := st.customers[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.customers {
			if other.ID != c.ID && other.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		st.customers[c.ID] = &cp
		return nil
	})
}

func (r *customerRepo) UpdateStatus(_ context.Context, id, status, reason string) error {
	return r.db.access(false, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrNotFound
		}
		c.Status = status
		if reason != "" {
			c.ArchiveReason = reason
		}
		c.UpdatedAt = time.Now()
		return nil
	})
}

type userRepo struct {
	db *Store
}

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.db.access(false, func(st *state) error {
		for _, other := range st.users {
			if other.Username == u.Username {
				return domain.ErrUsernameTaken
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.access(false, func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.db.access(false, func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				cp := *u
				out = &cp
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) List(_ context.Context, status string) ([]*entity.User, error) {
	var out []*entity.User
	err := r.db.access(false, func(st *state) error {
		for _, u := range st.users {
			if status != "" && u.Status != status {
				continue
			}
			cp := *u
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.db.access(false, func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		for _, other := range st.users {
			if other.ID != u.ID && other.Username == u.Username {
				return domain.ErrUsernameTaken
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}
