package loans

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción que cubre el préstamo y el stock del material.
type TxRunner interface {
	RunLoans(ctx context.Context, fn func(
		loanRepo repository.LoanRepository,
		materialRepo repository.MaterialRepository,
	) error) error
}
