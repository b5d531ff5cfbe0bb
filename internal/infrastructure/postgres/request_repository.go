package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ repository.RequestRepository  = (*RequestRepo)(nil)
	_ repository.DeliveryRepository = (*DeliveryRepo)(nil)
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
)

const requestColumns = `r.id, r.office_id, r.material_id, r.requested, r.delivered, r.status, r.approver_id, r.processed_by,
	r.office_percent, r.total_value, r.office_value, r.headquarters_value, r.requester, r.observation, r.has_novelty,
	r.version, r.created_at, r.updated_at, r.approved_at, r.last_delivery_at`

// RequestRepo solicitudes de material sobre PostgreSQL.
type RequestRepo struct {
	db Querier
}

// NewRequestRepository construye el adaptador.
func NewRequestRepository(db Querier) *RequestRepo {
	return &RequestRepo{db: db}
}

func scanRequest(s scanner) (*entity.MaterialRequest, error) {
	var q entity.MaterialRequest
	var status int16
	err := s.Scan(&q.ID, &q.OfficeID, &q.MaterialID, &q.Requested, &q.Delivered, &status, &q.ApproverID, &q.ProcessedBy,
		&q.OfficePercent, &q.TotalValue, &q.OfficeValue, &q.HeadquartersValue, &q.Requester, &q.Observation, &q.HasNovelty,
		&q.Version, &q.CreatedAt, &q.UpdatedAt, &q.ApprovedAt, &q.LastDeliveryAt)
	if err != nil {
		return nil, err
	}
	q.Status = entity.RequestStatus(status)
	return &q, nil
}

func (r *RequestRepo) Create(ctx context.Context, q *entity.MaterialRequest) error {
	query := `
		INSERT INTO material_requests (id, office_id, material_id, requested, delivered, status, approver_id, processed_by,
			office_percent, total_value, office_value, headquarters_value, requester, observation, has_novelty,
			version, created_at, updated_at, approved_at, last_delivery_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.db.Exec(ctx, query,
		q.ID, q.OfficeID, q.MaterialID, q.Requested, q.Delivered, int16(q.Status), q.ApproverID, q.ProcessedBy,
		q.OfficePercent, q.TotalValue, q.OfficeValue, q.HeadquartersValue, q.Requester, q.Observation, q.HasNovelty,
		q.Version, q.CreatedAt, q.UpdatedAt, q.ApprovedAt, q.LastDeliveryAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material request: %w", err)
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	q, err := one(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM material_requests r WHERE r.id = $1`, id), scanRequest)
	if err != nil {
		return nil, fmt.Errorf("get material request: %w", err)
	}
	return q, nil
}

func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	q, err := one(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM material_requests r WHERE r.id = $1 FOR UPDATE`, id), scanRequest)
	if err != nil {
		return nil, fmt.Errorf("get material request for update: %w", err)
	}
	return q, nil
}

// Update solo escribe si la fila sigue en `from` con la misma versión; si no, ErrConflict.
func (r *RequestRepo) Update(ctx context.Context, q *entity.MaterialRequest, from entity.RequestStatus) error {
	query := `
		UPDATE material_requests SET delivered = $4, status = $5, approver_id = $6, processed_by = $7,
			office_percent = $8, total_value = $9, office_value = $10, headquarters_value = $11,
			observation = $12, has_novelty = $13, updated_at = $14, approved_at = $15, last_delivery_at = $16,
			version = version + 1
		WHERE id = $1 AND status = $2 AND version = $3`
	tag, err := r.db.Exec(ctx, query,
		q.ID, int16(from), q.Version,
		q.Delivered, int16(q.Status), q.ApproverID, q.ProcessedBy,
		q.OfficePercent, q.TotalValue, q.OfficeValue, q.HeadquartersValue,
		q.Observation, q.HasNovelty, q.UpdatedAt, q.ApprovedAt, q.LastDeliveryAt,
	)
	if err != nil {
		return fmt.Errorf("update material request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	q.Version++
	return nil
}

func requestFilter(f repository.RequestFilter) (filter, string) {
	var w filter
	from := ` FROM material_requests r`
	if f.OfficeName != "" {
		from += ` JOIN offices o ON o.id = r.office_id`
		w.add("lower(o.name) = lower($%d)", f.OfficeName)
	}
	if f.OfficeID != "" {
		w.add("r.office_id = $%d", f.OfficeID)
	}
	if f.MaterialID != "" {
		w.add("r.material_id = $%d", f.MaterialID)
	}
	if f.Status != nil {
		w.add("r.status = $%d", int16(*f.Status))
	}
	return w, from
}

// List más recientes primero.
func (r *RequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.MaterialRequest, error) {
	w, from := requestFilter(f)
	query := `SELECT ` + requestColumns + from + w.where() +
		fmt.Sprintf(` ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d`, w.next(), w.next()+1)
	args := append(w.args, limitArg(f.Limit), max(f.Offset, 0))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list material requests: %w", err)
	}
	return collect(rows, scanRequest)
}

func (r *RequestRepo) CountByStatus(ctx context.Context, f repository.RequestFilter) (map[entity.RequestStatus]int, error) {
	w, from := requestFilter(f)
	rows, err := r.db.Query(ctx, `SELECT r.status, count(*)`+from+w.where()+` GROUP BY r.status`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("count material requests: %w", err)
	}
	defer rows.Close()
	out := map[entity.RequestStatus]int{}
	for rows.Next() {
		var status int16
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		out[entity.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

// DeliveryRepo historial de entregas sobre PostgreSQL.
type DeliveryRepo struct {
	db Querier
}

// NewDeliveryRepository construye el adaptador.
func NewDeliveryRepository(db Querier) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO deliveries (id, request_id, quantity, delivered_by, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.RequestID, d.Quantity, d.DeliveredBy, d.Notes, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.Delivery, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, request_id, quantity, delivered_by, notes, created_at FROM deliveries WHERE request_id = $1 ORDER BY created_at, id`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.Delivery, error) {
		var d entity.Delivery
		if err := s.Scan(&d.ID, &d.RequestID, &d.Quantity, &d.DeliveredBy, &d.Notes, &d.CreatedAt); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

// ReturnRepo devoluciones de solicitudes sobre PostgreSQL.
type ReturnRepo struct {
	db Querier
}

// NewReturnRepository construye el adaptador.
func NewReturnRepository(db Querier) *ReturnRepo {
	return &ReturnRepo{db: db}
}

func (r *ReturnRepo) Create(ctx context.Context, ret *entity.MaterialReturn) error {
	query := `
		INSERT INTO material_returns (id, request_id, material_id, quantity, returned_by, observation, condition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		ret.ID, ret.RequestID, ret.MaterialID, ret.Quantity, ret.ReturnedBy, ret.Observation, ret.Condition, ret.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert material return: %w", err)
	}
	return nil
}

func (r *ReturnRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.MaterialReturn, error) {
	query := `
		SELECT id, request_id, material_id, quantity, returned_by, observation, condition, created_at
		FROM material_returns WHERE request_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list material returns: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.MaterialReturn, error) {
		var m entity.MaterialReturn
		err := s.Scan(&m.ID, &m.RequestID, &m.MaterialID, &m.Quantity, &m.ReturnedBy, &m.Observation, &m.Condition, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &m, nil
	})
}

func (r *ReturnRepo) SumByRequest(ctx context.Context, requestID string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM material_returns WHERE request_id = $1`, requestID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum material returns: %w", err)
	}
	return total, nil
}
