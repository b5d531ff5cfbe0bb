package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ repository.RequestRepository  = (*RequestRepo)(nil)
	_ repository.DeliveryRepository = (*DeliveryRepo)(nil)
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
)

// RequestRepo solicitudes en memoria.
type RequestRepo struct{ s *Store }

// NewRequestRepository construye el repositorio.
func NewRequestRepository(s *Store) *RequestRepo { return &RequestRepo{s: s} }

func (r *RequestRepo) Create(_ context.Context, req *entity.MaterialRequest) error {
	defer r.s.lock()()
	if _, ok := r.s.d.requests[req.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.d.requests[req.ID] = *req
	return nil
}

func (r *RequestRepo) GetByID(_ context.Context, id string) (*entity.MaterialRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.d.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	return r.GetByID(ctx, id)
}

// Update escribe solo si el estado y la versión almacenados coinciden.
func (r *RequestRepo) Update(_ context.Context, req *entity.MaterialRequest, from entity.RequestStatus) error {
	defer r.s.lock()()
	if err := r.s.fault("requests.update"); err != nil {
		return err
	}
	cur, ok := r.s.d.requests[req.ID]
	if !ok || cur.Status != from || cur.Version != req.Version {
		return domain.ErrConflict
	}
	req.Version++
	r.s.d.requests[req.ID] = *req
	return nil
}

func (r *RequestRepo) match(req entity.MaterialRequest, f repository.RequestFilter) bool {
	if f.OfficeID != "" && req.OfficeID != f.OfficeID {
		return false
	}
	if f.OfficeName != "" {
		o, ok := r.s.d.offices[req.OfficeID]
		if !ok || !strings.EqualFold(o.Name, f.OfficeName) {
			return false
		}
	}
	if f.MaterialID != "" && req.MaterialID != f.MaterialID {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	return true
}

func (r *RequestRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.MaterialRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.MaterialRequest
	for _, req := range r.s.d.requests {
		if !r.match(req, f) {
			continue
		}
		req := req
		out = append(out, &req)
	}
	byCreated(out,
		func(x *entity.MaterialRequest) time.Time { return x.CreatedAt },
		func(x *entity.MaterialRequest) string { return x.ID })
	return page(out, f.Limit, f.Offset), nil
}

func (r *RequestRepo) CountByStatus(_ context.Context, f repository.RequestFilter) (map[entity.RequestStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[entity.RequestStatus]int{}
	for _, req := range r.s.d.requests {
		if r.match(req, f) {
			out[req.Status]++
		}
	}
	return out, nil
}

// DeliveryRepo historial de entregas en memoria.
type DeliveryRepo struct{ s *Store }

// NewDeliveryRepository construye el repositorio.
func NewDeliveryRepository(s *Store) *DeliveryRepo { return &DeliveryRepo{s: s} }

func (r *DeliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	defer r.s.lock()()
	if err := r.s.fault("deliveries.create"); err != nil {
		return err
	}
	r.s.d.deliveries = append(r.s.d.deliveries, *d)
	return nil
}

func (r *DeliveryRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Delivery
	for _, d := range r.s.d.deliveries {
		if d.RequestID == requestID {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct{ s *Store }

// NewReturnRepository construye el repositorio.
func NewReturnRepository(s *Store) *ReturnRepo { return &ReturnRepo{s: s} }

func (r *ReturnRepo) Create(_ context.Context, ret *entity.MaterialReturn) error {
	defer r.s.lock()()
	if err := r.s.fault("returns.create"); err != nil {
		return err
	}
	r.s.d.returns = append(r.s.d.returns, *ret)
	return nil
}

func (r *ReturnRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.MaterialReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.MaterialReturn
	for _, ret := range r.s.d.returns {
		if ret.RequestID == requestID {
			ret := ret
			out = append(out, &ret)
		}
	}
	return out, nil
}

func (r *ReturnRepo) SumByRequest(_ context.Context, requestID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, ret := range r.s.d.returns {
		if ret.RequestID == requestID {
			total += ret.Quantity
		}
	}
	return total, nil
}
