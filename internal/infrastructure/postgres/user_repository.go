package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.ApproverRepository = (*ApproverRepo)(nil)
)

const userColumns = `id, username, name, email, password_hash, role, COALESCE(office_id, ''), COALESCE(approver_id, ''),
	is_directory, is_active, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	err := s.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.OfficeID, &u.ApproverID,
		&u.IsDirectory, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, username, name, email, password_hash, role, office_id, approver_id,
			is_directory, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Username, u.Name, u.Email, u.PasswordHash, u.Role, nullIfEmpty(u.OfficeID), nullIfEmpty(u.ApproverID),
		u.IsDirectory, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := one(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), scanUser)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByUsername busca sin distinguir mayúsculas.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := one(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username), scanUser)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role = $5, office_id = $6, approver_id = $7,
			is_directory = $8, is_active = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, nullIfEmpty(u.OfficeID), nullIfEmpty(u.ApproverID),
		u.IsDirectory, u.IsActive, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios con paginación, más recientes primero.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collect(rows, scanUser)
}

func (r *UserRepo) FirstActiveID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE is_active ORDER BY id LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("first active user: %w", err)
	}
	return id, nil
}

// ApproverRepo aprobadores sobre PostgreSQL.
type ApproverRepo struct {
	db Querier
}

// NewApproverRepository construye el adaptador.
func NewApproverRepository(db Querier) *ApproverRepo {
	return &ApproverRepo{db: db}
}

func scanApprover(s scanner) (*entity.Approver, error) {
	var a entity.Approver
	if err := s.Scan(&a.ID, &a.Name, &a.Email, &a.IsActive); err != nil {
		return nil, err
	}
	return &a, nil
}

// Put inserta o reemplaza un aprobador (usado por matctl seed).
func (r *ApproverRepo) Put(ctx context.Context, a *entity.Approver) error {
	query := `
		INSERT INTO approvers (id, name, email, is_active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, is_active = EXCLUDED.is_active`
	if _, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Email, a.IsActive); err != nil {
		return fmt.Errorf("put approver: %w", err)
	}
	return nil
}

func (r *ApproverRepo) GetByID(ctx context.Context, id string) (*entity.Approver, error) {
	a, err := one(r.db.QueryRow(ctx, `SELECT id, name, email, is_active FROM approvers WHERE id = $1`, id), scanApprover)
	if err != nil {
		return nil, fmt.Errorf("get approver: %w", err)
	}
	return a, nil
}

func (r *ApproverRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Approver, error) {
	query := `SELECT id, name, email, is_active FROM approvers`
	if onlyActive {
		query += ` WHERE is_active`
	}
	rows, err := r.db.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	return collect(rows, scanApprover)
}

func (r *ApproverRepo) FirstActive(ctx context.Context) (*entity.Approver, error) {
	a, err := one(r.db.QueryRow(ctx, `SELECT id, name, email, is_active FROM approvers WHERE is_active ORDER BY name LIMIT 1`), scanApprover)
	if err != nil {
		return nil, fmt.Errorf("first active approver: %w", err)
	}
	return a, nil
}
