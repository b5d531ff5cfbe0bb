package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.NoveltyRepository = (*NoveltyRepo)(nil)

// NoveltyRepo novedades en memoria.
type NoveltyRepo struct{ s *Store }

// NewNoveltyRepository construye el repositorio.
func NewNoveltyRepository(s *Store) *NoveltyRepo { return &NoveltyRepo{s: s} }

func (r *NoveltyRepo) Create(_ context.Context, n *entity.Novelty) error {
	defer r.s.lock()()
	if err := r.s.fault("novelties.create"); err != nil {
		return err
	}
	r.s.d.novelties[n.ID] = *n
	return nil
}

func (r *NoveltyRepo) GetByID(_ context.Context, id string) (*entity.Novelty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.d.novelties[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *NoveltyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Novelty, error) {
	return r.GetByID(ctx, id)
}

func (r *NoveltyRepo) Update(_ context.Context, n *entity.Novelty) error {
	defer r.s.lock()()
	if _, ok := r.s.d.novelties[n.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.novelties[n.ID] = *n
	return nil
}

func (r *NoveltyRepo) List(_ context.Context, f repository.NoveltyFilter) ([]*entity.Novelty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Novelty
	for _, n := range r.s.d.novelties {
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if f.RequestID != "" && n.RequestID != f.RequestID {
			continue
		}
		if f.OfficeID != "" {
			req, ok := r.s.d.requests[n.RequestID]
			if !ok || req.OfficeID != f.OfficeID {
				continue
			}
		}
		n := n
		out = append(out, &n)
	}
	byCreated(out,
		func(x *entity.Novelty) time.Time { return x.CreatedAt },
		func(x *entity.Novelty) string { return x.ID })
	return out, nil
}

func (r *NoveltyRepo) Stats(_ context.Context) (repository.NoveltyStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var st repository.NoveltyStats
	for _, n := range r.s.d.novelties {
		st.Total++
		switch n.Status {
		case entity.NoveltyPending:
			st.Pending++
		case entity.NoveltyAccepted:
			st.Accepted++
		case entity.NoveltyRejected:
			st.Rejected++
		}
	}
	st.Resolved = st.Accepted + st.Rejected
	return st, nil
}

func (r *NoveltyRepo) Types(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, n := range r.s.d.novelties {
		if n.Type != "" && !seen[n.Type] {
			seen[n.Type] = true
			out = append(out, n.Type)
		}
	}
	sort.Strings(out)
	return out, nil
}
