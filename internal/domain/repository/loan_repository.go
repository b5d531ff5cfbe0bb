package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// LoanFilter filtros de préstamos. Status vacío = todos.
type LoanFilter struct {
	OfficeID   string
	MaterialID string
	Status     entity.LoanStatus
}

// LoanRepository define el puerto de persistencia para Loan.
// Update es condicional sobre Version y devuelve domain.ErrConflict si la fila cambió.
type LoanRepository interface {
	Create(ctx context.Context, l *entity.Loan) error
	GetByID(ctx context.Context, id string) (*entity.Loan, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Loan, error)
	Update(ctx context.Context, l *entity.Loan) error
	List(ctx context.Context, filter LoanFilter) ([]*entity.Loan, error)
}
