package postgres

import (
	"context"
	"fmt"

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

// --- productos ---

const productColumns = `id, code, name, description, category, supplier, unit_value, available, min_stock,
	is_assetable, created_by, is_active, created_at, updated_at`

// CorporateProductRepo catálogo corporativo sobre PostgreSQL.
type CorporateProductRepo struct {
	db Querier
}

// NewCorporateProductRepository construye el adaptador.
func NewCorporateProductRepository(db Querier) *CorporateProductRepo {
	return &CorporateProductRepo{db: db}
}

func scanProduct(s scanner) (*entity.CorporateProduct, error) {
	var p entity.CorporateProduct
	err := s.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Category, &p.Supplier, &p.UnitValue, &p.Available,
		&p.MinStock, &p.IsAssetable, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto; el código es único.
func (r *CorporateProductRepo) Create(ctx context.Context, p *entity.CorporateProduct) error {
	query := `INSERT INTO corporate_products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Description, p.Category, p.Supplier, p.UnitValue, p.Available, p.MinStock,
		p.IsAssetable, p.CreatedBy, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert corporate product: %w", err)
	}
	return nil
}

func (r *CorporateProductRepo) GetByID(ctx context.Context, id string) (*entity.CorporateProduct, error) {
	p, err := one(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM corporate_products WHERE id = $1`, id), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("get corporate product: %w", err)
	}
	return p, nil
}

func (r *CorporateProductRepo) GetByCode(ctx context.Context, code string) (*entity.CorporateProduct, error) {
	p, err := one(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM corporate_products WHERE code = $1`, code), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("get corporate product by code: %w", err)
	}
	return p, nil
}

func (r *CorporateProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.CorporateProduct, error) {
	p, err := one(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM corporate_products WHERE id = $1 FOR UPDATE`, id), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("get corporate product for update: %w", err)
	}
	return p, nil
}

func (r *CorporateProductRepo) Update(ctx context.Context, p *entity.CorporateProduct) error {
	if p.Available < 0 {
		return domain.ErrInsufficientStock
	}
	query := `
		UPDATE corporate_products SET name = $2, description = $3, category = $4, supplier = $5, unit_value = $6,
			available = $7, min_stock = $8, is_assetable = $9, is_active = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Category, p.Supplier, p.UnitValue,
		p.Available, p.MinStock, p.IsAssetable, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update corporate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CorporateProductRepo) List(ctx context.Context, onlyActive bool) ([]*entity.CorporateProduct, error) {
	query := `SELECT ` + productColumns + ` FROM corporate_products`
	if onlyActive {
		query += ` WHERE is_active`
	}
	rows, err := r.db.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list corporate products: %w", err)
	}
	return collect(rows, scanProduct)
}

// --- asignaciones ---

const assignmentColumns = `id, product_id, office_id, quantity, state, assigned_user_id, assigned_by, is_active, created_at, updated_at`

// AssignmentRepo asignaciones sobre PostgreSQL.
type AssignmentRepo struct {
	db Querier
}

// NewAssignmentRepository construye el adaptador.
func NewAssignmentRepository(db Querier) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

func scanAssignment(s scanner) (*entity.Assignment, error) {
	var a entity.Assignment
	err := s.Scan(&a.ID, &a.ProductID, &a.OfficeID, &a.Quantity, &a.State, &a.AssignedUserID, &a.AssignedBy,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	query := `INSERT INTO assignments (` + assignmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.ProductID, a.OfficeID, a.Quantity, string(a.State), a.AssignedUserID, a.AssignedBy,
		a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := one(r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id), scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := one(r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1 FOR UPDATE`, id), scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("get assignment for update: %w", err)
	}
	return a, nil
}

// FindHolding devuelve la asignación vigente más antigua y la bloquea.
func (r *AssignmentRepo) FindHolding(ctx context.Context, productID, officeID string) (*entity.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
		WHERE product_id = $1 AND office_id = $2 AND is_active AND state = $3
		ORDER BY created_at, id LIMIT 1 FOR UPDATE`
	a, err := one(r.db.QueryRow(ctx, query, productID, officeID, string(entity.AssignmentAssigned)), scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("find holding assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepo) Update(ctx context.Context, a *entity.Assignment) error {
	query := `
		UPDATE assignments SET office_id = $2, quantity = $3, state = $4, assigned_user_id = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, a.ID, a.OfficeID, a.Quantity, string(a.State), a.AssignedUserID, a.IsActive, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AssignmentRepo) List(ctx context.Context, f repository.AssignmentFilter) ([]*entity.Assignment, error) {
	var w filter
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.OfficeID != "" {
		w.add("office_id = $%d", f.OfficeID)
	}
	if f.State != "" {
		w.add("state = $%d", string(f.State))
	}
	if f.OnlyActive {
		w.conds = append(w.conds, "is_active")
	}
	rows, err := r.db.Query(ctx, `SELECT `+assignmentColumns+` FROM assignments`+w.where()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return collect(rows, scanAssignment)
}

func (r *AssignmentRepo) SumHolding(ctx context.Context, productID string) (int, error) {
	var total int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM assignments WHERE product_id = $1 AND is_active AND state = $2`
	if err := r.db.QueryRow(ctx, query, productID, string(entity.AssignmentAssigned)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum holding: %w", err)
	}
	return total, nil
}

// --- devoluciones corporativas ---

const corpReturnColumns = `id, product_id, office_id, assignment_id, quantity, reason, state, requested_by,
	resolved_by, resolution, created_at, resolved_at`

// CorporateReturnRepo solicitudes de devolución sobre PostgreSQL.
type CorporateReturnRepo struct {
	db Querier
}

// NewCorporateReturnRepository construye el adaptador.
func NewCorporateReturnRepository(db Querier) *CorporateReturnRepo {
	return &CorporateReturnRepo{db: db}
}

func scanCorpReturn(s scanner) (*entity.CorporateReturn, error) {
	var x entity.CorporateReturn
	err := s.Scan(&x.ID, &x.ProductID, &x.OfficeID, &x.AssignmentID, &x.Quantity, &x.Reason, &x.State, &x.RequestedBy,
		&x.ResolvedBy, &x.Resolution, &x.CreatedAt, &x.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func (r *CorporateReturnRepo) Create(ctx context.Context, x *entity.CorporateReturn) error {
	query := `INSERT INTO corporate_returns (` + corpReturnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		x.ID, x.ProductID, x.OfficeID, x.AssignmentID, x.Quantity, x.Reason, string(x.State), x.RequestedBy,
		x.ResolvedBy, x.Resolution, x.CreatedAt, x.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert corporate return: %w", err)
	}
	return nil
}

func (r *CorporateReturnRepo) GetByID(ctx context.Context, id string) (*entity.CorporateReturn, error) {
	x, err := one(r.db.QueryRow(ctx, `SELECT `+corpReturnColumns+` FROM corporate_returns WHERE id = $1`, id), scanCorpReturn)
	if err != nil {
		return nil, fmt.Errorf("get corporate return: %w", err)
	}
	return x, nil
}

func (r *CorporateReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.CorporateReturn, error) {
	x, err := one(r.db.QueryRow(ctx, `SELECT `+corpReturnColumns+` FROM corporate_returns WHERE id = $1 FOR UPDATE`, id), scanCorpReturn)
	if err != nil {
		return nil, fmt.Errorf("get corporate return for update: %w", err)
	}
	return x, nil
}

func (r *CorporateReturnRepo) Update(ctx context.Context, x *entity.CorporateReturn) error {
	query := `
		UPDATE corporate_returns SET assignment_id = $2, quantity = $3, state = $4, resolved_by = $5, resolution = $6, resolved_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, x.ID, x.AssignmentID, x.Quantity, string(x.State), x.ResolvedBy, x.Resolution, x.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update corporate return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CorporateReturnRepo) ListByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]*entity.CorporateReturn, error) {
	var w filter
	if state != "" {
		w.add("state = $%d", string(state))
	}
	if officeID != "" {
		w.add("office_id = $%d", officeID)
	}
	rows, err := r.db.Query(ctx, `SELECT `+corpReturnColumns+` FROM corporate_returns`+w.where()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list corporate returns: %w", err)
	}
	return collect(rows, scanCorpReturn)
}

func (r *CorporateReturnRepo) PendingForAssignment(ctx context.Context, assignmentID string) (*entity.CorporateReturn, error) {
	query := `SELECT ` + corpReturnColumns + ` FROM corporate_returns WHERE assignment_id = $1 AND state = $2 LIMIT 1`
	x, err := one(r.db.QueryRow(ctx, query, assignmentID, string(entity.ResolutionPending)), scanCorpReturn)
	if err != nil {
		return nil, fmt.Errorf("pending corporate return: %w", err)
	}
	return x, nil
}

// --- traspasos ---

const transferColumns = `id, product_id, from_office_id, to_office_id, source_assignment_id, target_assignment_id,
	quantity, reason, state, requested_by, resolved_by, resolution, created_at, resolved_at`

// TransferRepo traspasos sobre PostgreSQL.
type TransferRepo struct {
	db Querier
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(db Querier) *TransferRepo {
	return &TransferRepo{db: db}
}

func scanTransfer(s scanner) (*entity.Transfer, error) {
	var t entity.Transfer
	err := s.Scan(&t.ID, &t.ProductID, &t.FromOfficeID, &t.ToOfficeID, &t.SourceAssignmentID, &t.TargetAssignmentID,
		&t.Quantity, &t.Reason, &t.State, &t.RequestedBy, &t.ResolvedBy, &t.Resolution, &t.CreatedAt, &t.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.ProductID, t.FromOfficeID, t.ToOfficeID, t.SourceAssignmentID, t.TargetAssignmentID,
		t.Quantity, t.Reason, string(t.State), t.RequestedBy, t.ResolvedBy, t.Resolution, t.CreatedAt, t.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := one(r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id), scanTransfer)
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := one(r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id), scanTransfer)
	if err != nil {
		return nil, fmt.Errorf("get transfer for update: %w", err)
	}
	return t, nil
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET source_assignment_id = $2, target_assignment_id = $3, quantity = $4, state = $5,
			resolved_by = $6, resolution = $7, resolved_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		t.ID, t.SourceAssignmentID, t.TargetAssignmentID, t.Quantity, string(t.State), t.ResolvedBy, t.Resolution, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByState con officeID filtra por origen o destino.
func (r *TransferRepo) ListByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]*entity.Transfer, error) {
	var w filter
	if state != "" {
		w.add("state = $%d", string(state))
	}
	if officeID != "" {
		w.add("$%[1]d IN (from_office_id, to_office_id)", officeID)
	}
	rows, err := r.db.Query(ctx, `SELECT `+transferColumns+` FROM transfers`+w.where()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return collect(rows, scanTransfer)
}

func (r *TransferRepo) PendingForAssignment(ctx context.Context, assignmentID string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE source_assignment_id = $1 AND state = $2 LIMIT 1`
	t, err := one(r.db.QueryRow(ctx, query, assignmentID, string(entity.ResolutionPending)), scanTransfer)
	if err != nil {
		return nil, fmt.Errorf("pending transfer: %w", err)
	}
	return t, nil
}

// --- bajas e historial ---

// WriteOffRepo bajas sobre PostgreSQL.
type WriteOffRepo struct {
	db Querier
}

// NewWriteOffRepository construye el adaptador.
func NewWriteOffRepository(db Querier) *WriteOffRepo {
	return &WriteOffRepo{db: db}
}

func (r *WriteOffRepo) Create(ctx context.Context, w *entity.WriteOff) error {
	query := `
		INSERT INTO write_offs (id, product_id, assignment_id, quantity, reason, written_off_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.Exec(ctx, query, w.ID, w.ProductID, w.AssignmentID, w.Quantity, w.Reason, w.WrittenOffBy, w.CreatedAt); err != nil {
		return fmt.Errorf("insert write-off: %w", err)
	}
	return nil
}

func (r *WriteOffRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.WriteOff, error) {
	query := `
		SELECT id, product_id, assignment_id, quantity, reason, written_off_by, created_at
		FROM write_offs WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list write-offs: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.WriteOff, error) {
		var w entity.WriteOff
		if err := s.Scan(&w.ID, &w.ProductID, &w.AssignmentID, &w.Quantity, &w.Reason, &w.WrittenOffBy, &w.CreatedAt); err != nil {
			return nil, err
		}
		return &w, nil
	})
}

// HistoryRepo historial corporativo sobre PostgreSQL.
type HistoryRepo struct {
	db Querier
}

// NewHistoryRepository construye el adaptador.
func NewHistoryRepository(db Querier) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Create(ctx context.Context, h *entity.AssignmentHistory) error {
	query := `
		INSERT INTO assignment_history (id, product_id, office_id, action, quantity, actor_name, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.Exec(ctx, query, h.ID, h.ProductID, h.OfficeID, h.Action, h.Quantity, h.ActorName, h.Notes, h.CreatedAt); err != nil {
		return fmt.Errorf("insert assignment history: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.AssignmentHistory, error) {
	query := `
		SELECT id, product_id, office_id, action, quantity, actor_name, notes, created_at
		FROM assignment_history WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list assignment history: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.AssignmentHistory, error) {
		var h entity.AssignmentHistory
		if err := s.Scan(&h.ID, &h.ProductID, &h.OfficeID, &h.Action, &h.Quantity, &h.ActorName, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		return &h, nil
	})
}
