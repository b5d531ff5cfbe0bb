package memory

import (
	"context"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.LoanRepository = (*LoanRepo)(nil)

// LoanRepo préstamos en memoria.
type LoanRepo struct{ s *Store }

// NewLoanRepository construye el repositorio.
func NewLoanRepository(s *Store) *LoanRepo { return &LoanRepo{s: s} }

func (r *LoanRepo) Create(_ context.Context, l *entity.Loan) error {
	defer r.s.lock()()
	r.s.d.loans[l.ID] = *l
	return nil
}

func (r *LoanRepo) GetByID(_ context.Context, id string) (*entity.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.d.loans[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LoanRepo) GetForUpdate(ctx context.Context, id string) (*entity.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *LoanRepo) Update(_ context.Context, l *entity.Loan) error {
	defer r.s.lock()()
	if err := r.s.fault("loans.update"); err != nil {
		return err
	}
	cur, ok := r.s.d.loans[l.ID]
	if !ok || cur.Version != l.Version {
		return domain.ErrConflict
	}
	l.Version++
	r.s.d.loans[l.ID] = *l
	return nil
}

func (r *LoanRepo) List(_ context.Context, f repository.LoanFilter) ([]*entity.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Loan
	for _, l := range r.s.d.loans {
		if f.OfficeID != "" && l.OfficeID != f.OfficeID {
			continue
		}
		if f.MaterialID != "" && l.MaterialID != f.MaterialID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		l := l
		out = append(out, &l)
	}
	byCreated(out,
		func(x *entity.Loan) time.Time { return x.CreatedAt },
		func(x *entity.Loan) string { return x.ID })
	return out, nil
}
