package memory

import (
	"context"

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

// TxRunner ejecuta callbacks con repositorios en memoria y rollback por copia.
// Las transacciones no se anidan: un callback no debe abrir otra.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunRequests transacción del flujo de solicitudes.
func (r *TxRunner) RunRequests(_ context.Context, fn func(
	requestRepo repository.RequestRepository,
	materialRepo repository.MaterialRepository,
	deliveryRepo repository.DeliveryRepository,
	returnRepo repository.ReturnRepository,
) error) error {
	return r.s.run(func(v *Store) error {
		return fn(NewRequestRepository(v), NewMaterialRepository(v), NewDeliveryRepository(v), NewReturnRepository(v))
	})
}

// RunCorporate transacción del inventario corporativo.
func (r *TxRunner) RunCorporate(_ context.Context, fn func(
	productRepo repository.CorporateProductRepository,
	assignmentRepo repository.AssignmentRepository,
	returnRepo repository.CorporateReturnRepository,
	transferRepo repository.TransferRepository,
	writeOffRepo repository.WriteOffRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	return r.s.run(func(v *Store) error {
		return fn(
			NewCorporateProductRepository(v), NewAssignmentRepository(v),
			NewCorporateReturnRepository(v), NewTransferRepository(v),
			NewWriteOffRepository(v), NewHistoryRepository(v),
		)
	})
}

// RunNovelty transacción de novedades.
func (r *TxRunner) RunNovelty(_ context.Context, fn func(
	noveltyRepo repository.NoveltyRepository,
	requestRepo repository.RequestRepository,
) error) error {
	return r.s.run(func(v *Store) error {
		return fn(NewNoveltyRepository(v), NewRequestRepository(v))
	})
}

// RunLoans transacción de préstamos.
func (r *TxRunner) RunLoans(_ context.Context, fn func(
	loanRepo repository.LoanRepository,
	materialRepo repository.MaterialRepository,
) error) error {
	return r.s.run(func(v *Store) error {
		return fn(NewLoanRepository(v), NewMaterialRepository(v))
	})
}
