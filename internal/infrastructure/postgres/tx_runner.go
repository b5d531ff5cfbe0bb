package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/materiales-api/internal/application/corporate"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ requests.TxRunner  = (*TxRunner)(nil)
	_ corporate.TxRunner = (*TxRunner)(nil)
	_ novelty.TxRunner   = (*TxRunner)(nil)
	_ loans.TxRunner     = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRequests transacción del flujo de solicitudes.
func (r *TxRunner) RunRequests(ctx context.Context, fn func(
	requestRepo repository.RequestRepository,
	materialRepo repository.MaterialRepository,
	deliveryRepo repository.DeliveryRepository,
	returnRepo repository.ReturnRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewRequestRepository(tx), NewMaterialRepository(tx), NewDeliveryRepository(tx), NewReturnRepository(tx))
	})
}

// RunCorporate transacción del inventario corporativo.
func (r *TxRunner) RunCorporate(ctx context.Context, fn func(
	productRepo repository.CorporateProductRepository,
	assignmentRepo repository.AssignmentRepository,
	returnRepo repository.CorporateReturnRepository,
	transferRepo repository.TransferRepository,
	writeOffRepo repository.WriteOffRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewCorporateProductRepository(tx), NewAssignmentRepository(tx),
			NewCorporateReturnRepository(tx), NewTransferRepository(tx),
			NewWriteOffRepository(tx), NewHistoryRepository(tx),
		)
	})
}

// RunNovelty transacción de novedades.
func (r *TxRunner) RunNovelty(ctx context.Context, fn func(
	noveltyRepo repository.NoveltyRepository,
	requestRepo repository.RequestRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewNoveltyRepository(tx), NewRequestRepository(tx))
	})
}

// RunLoans transacción de préstamos.
func (r *TxRunner) RunLoans(ctx context.Context, fn func(
	loanRepo repository.LoanRepository,
	materialRepo repository.MaterialRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewLoanRepository(tx), NewMaterialRepository(tx))
	})
}
