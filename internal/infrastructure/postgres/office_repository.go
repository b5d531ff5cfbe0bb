package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.OfficeRepository = (*OfficeRepo)(nil)

const officeColumns = `id, name, director, location, email, is_principal, is_active, created_at, updated_at`

// OfficeRepo implementación del puerto OfficeRepository sobre PostgreSQL.
type OfficeRepo struct {
	db Querier
}

// NewOfficeRepository construye el adaptador; db puede ser el pool o una tx.
func NewOfficeRepository(db Querier) *OfficeRepo {
	return &OfficeRepo{db: db}
}

func scanOffice(s scanner) (*entity.Office, error) {
	var o entity.Office
	err := s.Scan(&o.ID, &o.Name, &o.Director, &o.Location, &o.Email, &o.IsPrincipal, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste una oficina. El nombre es único sin distinguir mayúsculas.
func (r *OfficeRepo) Create(ctx context.Context, o *entity.Office) error {
	query := `INSERT INTO offices (` + officeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.Name, o.Director, o.Location, o.Email, o.IsPrincipal, o.IsActive, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert office: %w", err)
	}
	return nil
}

func (r *OfficeRepo) GetByID(ctx context.Context, id string) (*entity.Office, error) {
	o, err := one(r.db.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE id = $1`, id), scanOffice)
	if err != nil {
		return nil, fmt.Errorf("get office by id: %w", err)
	}
	return o, nil
}

func (r *OfficeRepo) GetByName(ctx context.Context, name string) (*entity.Office, error) {
	o, err := one(r.db.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE lower(name) = lower($1)`, name), scanOffice)
	if err != nil {
		return nil, fmt.Errorf("get office by name: %w", err)
	}
	return o, nil
}

func (r *OfficeRepo) GetPrincipal(ctx context.Context) (*entity.Office, error) {
	query := `SELECT ` + officeColumns + ` FROM offices WHERE is_principal AND is_active ORDER BY created_at LIMIT 1`
	o, err := one(r.db.QueryRow(ctx, query), scanOffice)
	if err != nil {
		return nil, fmt.Errorf("get principal office: %w", err)
	}
	return o, nil
}

func (r *OfficeRepo) Update(ctx context.Context, o *entity.Office) error {
	query := `
		UPDATE offices SET name = $2, director = $3, location = $4, email = $5,
			is_principal = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, o.ID, o.Name, o.Director, o.Location, o.Email, o.IsPrincipal, o.IsActive, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update office: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OfficeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Office, error) {
	query := `SELECT ` + officeColumns + ` FROM offices`
	if onlyActive {
		query += ` WHERE is_active`
	}
	rows, err := r.db.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	return collect(rows, scanOffice)
}
