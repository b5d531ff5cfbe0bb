package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, unit_value, available, COALESCE(office_id, ''), image_path, created_by, is_active, created_at, updated_at`

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL.
type MaterialRepo struct {
	db Querier
}

// NewMaterialRepository construye el adaptador de persistencia para materiales.
func NewMaterialRepository(db Querier) *MaterialRepo {
	return &MaterialRepo{db: db}
}

func scanMaterial(s scanner) (*entity.Material, error) {
	var m entity.Material
	err := s.Scan(&m.ID, &m.Name, &m.UnitValue, &m.Available, &m.OfficeID, &m.ImagePath, &m.CreatedBy,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `INSERT INTO materials (id, name, unit_value, available, office_id, image_path, created_by, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.Name, m.UnitValue, m.Available, nullIfEmpty(m.OfficeID), m.ImagePath, m.CreatedBy,
		m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := one(r.db.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id), scanMaterial)
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetForUpdate bloquea la fila (FOR UPDATE); solo tiene efecto dentro de una tx.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	m, err := one(r.db.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id), scanMaterial)
	if err != nil {
		return nil, fmt.Errorf("get material for update: %w", err)
	}
	return m, nil
}

// Update no toca available: el stock solo cambia con UpdateStock.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials SET name = $2, unit_value = $3, office_id = $4, image_path = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, m.ID, m.Name, m.UnitValue, nullIfEmpty(m.OfficeID), m.ImagePath, m.IsActive, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRepo) UpdateStock(ctx context.Context, id string, available int) error {
	if available < 0 {
		return domain.ErrInsufficientStock
	}
	tag, err := r.db.Exec(ctx, `UPDATE materials SET available = $2, updated_at = now() WHERE id = $1`, id, available)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update material stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRepo) List(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	var w filter
	if f.OnlyActive {
		w.conds = append(w.conds, "is_active")
	}
	if f.OfficeID != "" {
		w.add("office_id = $%d", f.OfficeID)
	}
	if f.Search != "" {
		w.add("name ILIKE '%%' || $%d || '%%'", f.Search)
	}
	rows, err := r.db.Query(ctx, `SELECT `+materialColumns+` FROM materials`+w.where()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return collect(rows, scanMaterial)
}
