package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.LoanRepository = (*LoanRepo)(nil)

const loanColumns = `id, material_id, office_id, quantity, returned, status, borrower, due_on, approved_by, note,
	version, created_at, updated_at`

// LoanRepo préstamos sobre PostgreSQL.
type LoanRepo struct {
	db Querier
}

// NewLoanRepository construye el adaptador.
func NewLoanRepository(db Querier) *LoanRepo {
	return &LoanRepo{db: db}
}

func scanLoan(s scanner) (*entity.Loan, error) {
	var l entity.Loan
	err := s.Scan(&l.ID, &l.MaterialID, &l.OfficeID, &l.Quantity, &l.Returned, &l.Status, &l.Borrower, &l.DueOn,
		&l.ApprovedBy, &l.Note, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepo) Create(ctx context.Context, l *entity.Loan) error {
	query := `INSERT INTO loans (` + loanColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.MaterialID, l.OfficeID, l.Quantity, l.Returned, string(l.Status), l.Borrower, l.DueOn,
		l.ApprovedBy, l.Note, l.Version, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (r *LoanRepo) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	l, err := one(r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id), scanLoan)
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

func (r *LoanRepo) GetForUpdate(ctx context.Context, id string) (*entity.Loan, error) {
	l, err := one(r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id), scanLoan)
	if err != nil {
		return nil, fmt.Errorf("get loan for update: %w", err)
	}
	return l, nil
}

// Update condicional sobre version.
func (r *LoanRepo) Update(ctx context.Context, l *entity.Loan) error {
	query := `
		UPDATE loans SET returned = $3, status = $4, due_on = $5, approved_by = $6, note = $7, updated_at = $8,
			version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.db.Exec(ctx, query, l.ID, l.Version, l.Returned, string(l.Status), l.DueOn, l.ApprovedBy, l.Note, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	l.Version++
	return nil
}

func (r *LoanRepo) List(ctx context.Context, f repository.LoanFilter) ([]*entity.Loan, error) {
	var w filter
	if f.OfficeID != "" {
		w.add("office_id = $%d", f.OfficeID)
	}
	if f.MaterialID != "" {
		w.add("material_id = $%d", f.MaterialID)
	}
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans`+w.where()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return collect(rows, scanLoan)
}
