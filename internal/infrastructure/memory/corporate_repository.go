package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ repository.CorporateProductRepository = (*CorporateProductRepo)(nil)
	_ repository.AssignmentRepository       = (*AssignmentRepo)(nil)
	_ repository.CorporateReturnRepository  = (*CorporateReturnRepo)(nil)
	_ repository.TransferRepository         = (*TransferRepo)(nil)
	_ repository.WriteOffRepository         = (*WriteOffRepo)(nil)
	_ repository.HistoryRepository          = (*HistoryRepo)(nil)
)

// CorporateProductRepo productos corporativos en memoria.
type CorporateProductRepo struct{ s *Store }

// NewCorporateProductRepository construye el repositorio.
func NewCorporateProductRepository(s *Store) *CorporateProductRepo {
	return &CorporateProductRepo{s: s}
}

func (r *CorporateProductRepo) Create(_ context.Context, p *entity.CorporateProduct) error {
	defer r.s.lock()()
	for _, x := range r.s.d.products {
		if x.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.d.products[p.ID] = *p
	return nil
}

func (r *CorporateProductRepo) GetByID(_ context.Context, id string) (*entity.CorporateProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *CorporateProductRepo) GetByCode(_ context.Context, code string) (*entity.CorporateProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.d.products {
		if p.Code == code {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *CorporateProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.CorporateProduct, error) {
	return r.GetByID(ctx, id)
}

func (r *CorporateProductRepo) Update(_ context.Context, p *entity.CorporateProduct) error {
	defer r.s.lock()()
	if err := r.s.fault("products.update"); err != nil {
		return err
	}
	if _, ok := r.s.d.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if p.Available < 0 {
		return domain.ErrInsufficientStock
	}
	r.s.d.products[p.ID] = *p
	return nil
}

func (r *CorporateProductRepo) List(_ context.Context, onlyActive bool) ([]*entity.CorporateProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.CorporateProduct
	for _, p := range r.s.d.products {
		if onlyActive && !p.IsActive {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AssignmentRepo asignaciones en memoria.
type AssignmentRepo struct{ s *Store }

// NewAssignmentRepository construye el repositorio.
func NewAssignmentRepository(s *Store) *AssignmentRepo { return &AssignmentRepo{s: s} }

func (r *AssignmentRepo) Create(_ context.Context, a *entity.Assignment) error {
	defer r.s.lock()()
	if err := r.s.fault("assignments.create"); err != nil {
		return err
	}
	r.s.d.assignments[a.ID] = *a
	return nil
}

func (r *AssignmentRepo) GetByID(_ context.Context, id string) (*entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.d.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AssignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	return r.GetByID(ctx, id)
}

func (r *AssignmentRepo) FindHolding(_ context.Context, productID, officeID string) (*entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *entity.Assignment
	for _, a := range r.s.d.assignments {
		if a.ProductID == productID && a.OfficeID == officeID && a.Holding() {
			if found == nil || a.CreatedAt.Before(found.CreatedAt) {
				a := a
				found = &a
			}
		}
	}
	return found, nil
}

func (r *AssignmentRepo) Update(_ context.Context, a *entity.Assignment) error {
	defer r.s.lock()()
	if err := r.s.fault("assignments.update"); err != nil {
		return err
	}
	if _, ok := r.s.d.assignments[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.assignments[a.ID] = *a
	return nil
}

func (r *AssignmentRepo) List(_ context.Context, f repository.AssignmentFilter) ([]*entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Assignment
	for _, a := range r.s.d.assignments {
		if f.ProductID != "" && a.ProductID != f.ProductID {
			continue
		}
		if f.OfficeID != "" && a.OfficeID != f.OfficeID {
			continue
		}
		if f.State != "" && a.State != f.State {
			continue
		}
		if f.OnlyActive && !a.IsActive {
			continue
		}
		a := a
		out = append(out, &a)
	}
	byCreated(out,
		func(x *entity.Assignment) time.Time { return x.CreatedAt },
		func(x *entity.Assignment) string { return x.ID })
	return out, nil
}

func (r *AssignmentRepo) SumHolding(_ context.Context, productID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, a := range r.s.d.assignments {
		if a.ProductID == productID && a.Holding() {
			total += a.Quantity
		}
	}
	return total, nil
}

// CorporateReturnRepo solicitudes de devolución en memoria.
type CorporateReturnRepo struct{ s *Store }

// NewCorporateReturnRepository construye el repositorio.
func NewCorporateReturnRepository(s *Store) *CorporateReturnRepo {
	return &CorporateReturnRepo{s: s}
}

func (r *CorporateReturnRepo) Create(_ context.Context, x *entity.CorporateReturn) error {
	defer r.s.lock()()
	r.s.d.corpReturns[x.ID] = *x
	return nil
}

func (r *CorporateReturnRepo) GetByID(_ context.Context, id string) (*entity.CorporateReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	x, ok := r.s.d.corpReturns[id]
	if !ok {
		return nil, nil
	}
	return &x, nil
}

func (r *CorporateReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.CorporateReturn, error) {
	return r.GetByID(ctx, id)
}

func (r *CorporateReturnRepo) Update(_ context.Context, x *entity.CorporateReturn) error {
	defer r.s.lock()()
	if _, ok := r.s.d.corpReturns[x.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.corpReturns[x.ID] = *x
	return nil
}

func (r *CorporateReturnRepo) ListByState(_ context.Context, state entity.ResolutionState, officeID string) ([]*entity.CorporateReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.CorporateReturn
	for _, x := range r.s.d.corpReturns {
		if (state == "" || x.State == state) && (officeID == "" || x.OfficeID == officeID) {
			x := x
			out = append(out, &x)
		}
	}
	byCreated(out,
		func(x *entity.CorporateReturn) time.Time { return x.CreatedAt },
		func(x *entity.CorporateReturn) string { return x.ID })
	return out, nil
}

func (r *CorporateReturnRepo) PendingForAssignment(_ context.Context, assignmentID string) (*entity.CorporateReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.d.corpReturns {
		if x.AssignmentID == assignmentID && x.State == entity.ResolutionPending {
			x := x
			return &x, nil
		}
	}
	return nil, nil
}

// TransferRepo traspasos en memoria.
type TransferRepo struct{ s *Store }

// NewTransferRepository construye el repositorio.
func NewTransferRepository(s *Store) *TransferRepo { return &TransferRepo{s: s} }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	defer r.s.lock()()
	r.s.d.transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.d.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(_ context.Context, t *entity.Transfer) error {
	defer r.s.lock()()
	if err := r.s.fault("transfers.update"); err != nil {
		return err
	}
	if _, ok := r.s.d.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) ListByState(_ context.Context, state entity.ResolutionState, officeID string) ([]*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Transfer
	for _, t := range r.s.d.transfers {
		if state != "" && t.State != state {
			continue
		}
		if officeID != "" && t.FromOfficeID != officeID && t.ToOfficeID != officeID {
			continue
		}
		t := t
		out = append(out, &t)
	}
	byCreated(out,
		func(x *entity.Transfer) time.Time { return x.CreatedAt },
		func(x *entity.Transfer) string { return x.ID })
	return out, nil
}

func (r *TransferRepo) PendingForAssignment(_ context.Context, assignmentID string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.d.transfers {
		if t.SourceAssignmentID == assignmentID && t.State == entity.ResolutionPending {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

// WriteOffRepo bajas en memoria.
type WriteOffRepo struct{ s *Store }

// NewWriteOffRepository construye el repositorio.
func NewWriteOffRepository(s *Store) *WriteOffRepo { return &WriteOffRepo{s: s} }

func (r *WriteOffRepo) Create(_ context.Context, w *entity.WriteOff) error {
	defer r.s.lock()()
	r.s.d.writeOffs = append(r.s.d.writeOffs, *w)
	return nil
}

func (r *WriteOffRepo) ListByProduct(_ context.Context, productID string) ([]*entity.WriteOff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.WriteOff
	for _, w := range r.s.d.writeOffs {
		if w.ProductID == productID {
			w := w
			out = append(out, &w)
		}
	}
	return out, nil
}

// HistoryRepo historial corporativo en memoria.
type HistoryRepo struct{ s *Store }

// NewHistoryRepository construye el repositorio.
func NewHistoryRepository(s *Store) *HistoryRepo { return &HistoryRepo{s: s} }

func (r *HistoryRepo) Create(_ context.Context, h *entity.AssignmentHistory) error {
	defer r.s.lock()()
	if err := r.s.fault("history.create"); err != nil {
		return err
	}
	r.s.d.history = append(r.s.d.history, *h)
	return nil
}

func (r *HistoryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.AssignmentHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.AssignmentHistory
	for _, h := range r.s.d.history {
		if h.ProductID == productID {
			h := h
			out = append(out, &h)
		}
	}
	return out, nil
}
