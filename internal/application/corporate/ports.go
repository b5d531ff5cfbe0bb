package corporate

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios corporativos atados a ella.
type TxRunner interface {
	RunCorporate(ctx context.Context, fn func(
		productRepo repository.CorporateProductRepository,
		assignmentRepo repository.AssignmentRepository,
		returnRepo repository.CorporateReturnRepository,
		transferRepo repository.TransferRepository,
		writeOffRepo repository.WriteOffRepository,
		historyRepo repository.HistoryRepository,
	) error) error
}

// tx agrupa los repositorios de una transacción corporativa.
type tx struct {
	products    repository.CorporateProductRepository
	assignments repository.AssignmentRepository
	returns     repository.CorporateReturnRepository
	transfers   repository.TransferRepository
	writeOffs   repository.WriteOffRepository
	history     repository.HistoryRepository
}

func (s *Service) run(ctx context.Context, fn func(t *tx) error) error {
	return s.tx.RunCorporate(ctx, func(
		productRepo repository.CorporateProductRepository,
		assignmentRepo repository.AssignmentRepository,
		returnRepo repository.CorporateReturnRepository,
		transferRepo repository.TransferRepository,
		writeOffRepo repository.WriteOffRepository,
		historyRepo repository.HistoryRepository,
	) error {
		return fn(&tx{
			products:    productRepo,
			assignments: assignmentRepo,
			returns:     returnRepo,
			transfers:   transferRepo,
			writeOffs:   writeOffRepo,
			history:     historyRepo,
		})
	})
}
