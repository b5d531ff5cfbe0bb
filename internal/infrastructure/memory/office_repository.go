package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.OfficeRepository = (*OfficeRepo)(nil)

// OfficeRepo oficinas en memoria.
type OfficeRepo struct{ s *Store }

// NewOfficeRepository construye el repositorio.
func NewOfficeRepository(s *Store) *OfficeRepo { return &OfficeRepo{s: s} }

func (r *OfficeRepo) Create(_ context.Context, o *entity.Office) error {
	defer r.s.lock()()
	for _, x := range r.s.d.offices {
		if strings.EqualFold(x.Name, o.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.d.offices[o.ID] = *o
	return nil
}

func (r *OfficeRepo) GetByID(_ context.Context, id string) (*entity.Office, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.d.offices[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *OfficeRepo) GetByName(_ context.Context, name string) (*entity.Office, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.d.offices {
		if strings.EqualFold(o.Name, name) {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (r *OfficeRepo) GetPrincipal(_ context.Context) (*entity.Office, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.d.offices {
		if o.IsPrincipal && o.IsActive {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (r *OfficeRepo) Update(_ context.Context, o *entity.Office) error {
	defer r.s.lock()()
	if _, ok := r.s.d.offices[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.offices[o.ID] = *o
	return nil
}

func (r *OfficeRepo) List(_ context.Context, onlyActive bool) ([]*entity.Office, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Office
	for _, o := range r.s.d.offices {
		if onlyActive && !o.IsActive {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
