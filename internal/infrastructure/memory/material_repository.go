package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo materiales en memoria.
type MaterialRepo struct{ s *Store }

// NewMaterialRepository construye el repositorio.
func NewMaterialRepository(s *Store) *MaterialRepo { return &MaterialRepo{s: s} }

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	defer r.s.lock()()
	if _, ok := r.s.d.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.d.materials[m.ID] = *m
	return nil
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.d.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// GetForUpdate equivale a GetByID: la exclusión la da la transacción serializada.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

// Update guarda los datos descriptivos; Available solo cambia con UpdateStock.
func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	defer r.s.lock()()
	cur, ok := r.s.d.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := *m
	next.Available = cur.Available
	r.s.d.materials[m.ID] = next
	return nil
}

func (r *MaterialRepo) UpdateStock(_ context.Context, id string, available int) error {
	defer r.s.lock()()
	if err := r.s.fault("materials.update_stock"); err != nil {
		return err
	}
	m, ok := r.s.d.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	if available < 0 {
		return domain.ErrInsufficientStock
	}
	m.Available = available
	r.s.d.materials[id] = m
	return nil
}

func (r *MaterialRepo) List(_ context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Material
	search := strings.ToLower(f.Search)
	for _, m := range r.s.d.materials {
		if f.OnlyActive && !m.IsActive {
			continue
		}
		if f.OfficeID != "" && m.OfficeID != f.OfficeID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
