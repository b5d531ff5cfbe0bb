// Package loans implementa los préstamos temporales de material: solicitud, aprobación con
// descuento de stock, rechazo y devoluciones parciales acumuladas.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// Service casos de uso de préstamos.
type Service struct {
	tx        TxRunner
	loans     repository.LoanRepository
	materials repository.MaterialRepository
	offices   repository.OfficeRepository
	notifier  *notify.Dispatcher
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(tx TxRunner, loans repository.LoanRepository, materials repository.MaterialRepository,
	offices repository.OfficeRepository, notifier *notify.Dispatcher) *Service {
	return &Service{tx: tx, loans: loans, materials: materials, offices: offices, notifier: notifier, now: time.Now}
}

// Create registra un préstamo pendiente para una oficina dentro del alcance. No toca stock.
func (s *Service) Create(ctx context.Context, in dto.CreateLoanRequest, borrower string, scope access.Scope) (*dto.LoanResponse, error) {
	if in.MaterialID == "" || in.OfficeID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	office, err := s.offices.GetByID(ctx, in.OfficeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, fmt.Errorf("%w: oficina", domain.ErrNotFound)
	}
	if !scope.AllowsOffice(office.ID, office.Name) {
		return nil, fmt.Errorf("%w: no puede solicitar préstamos para otra oficina", domain.ErrForbidden)
	}
	material, err := s.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material", domain.ErrNotFound)
	}
	if !material.IsActive {
		return nil, fmt.Errorf("%w: material", domain.ErrInactive)
	}
	now := s.now()
	l := &entity.Loan{
		ID:         uuid.New().String(),
		MaterialID: in.MaterialID,
		OfficeID:   in.OfficeID,
		Quantity:   in.Quantity,
		Status:     entity.LoanPending,
		Borrower:   borrower,
		DueOn:      in.DueOn,
		Note:       in.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.loans.Create(ctx, l); err != nil {
		return nil, err
	}
	s.notify(ctx, notify.LoanCreated, l, office, borrower,
		fmt.Sprintf("Préstamo de %d unidades de %s pendiente de aprobación", l.Quantity, material.Name))
	return toResponse(l), nil
}

// Approve descuenta el stock del material y deja el préstamo aprobado.
func (s *Service) Approve(ctx context.Context, loanID, approver string) (*dto.LoanResponse, error) {
	var out *entity.Loan
	err := s.tx.RunLoans(ctx, func(loanRepo repository.LoanRepository, materialRepo repository.MaterialRepository) error {
		l, err := s.pending(ctx, loanRepo, loanID)
		if err != nil {
			return err
		}
		m, err := materialRepo.GetForUpdate(ctx, l.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: material", domain.ErrNotFound)
		}
		if l.Quantity > m.Available {
			return &domain.StockError{Available: m.Available, Requested: l.Quantity}
		}
		l.Status = entity.LoanApproved
		l.ApprovedBy = approver
		l.UpdatedAt = s.now()
		if err := loanRepo.Update(ctx, l); err != nil {
			return conflictAsState(err, l)
		}
		if err := materialRepo.UpdateStock(ctx, m.ID, m.Available-l.Quantity); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.LoanResolved, out, nil, approver, "Préstamo aprobado")
	return toResponse(out), nil
}

// Reject rechaza un préstamo pendiente.
func (s *Service) Reject(ctx context.Context, loanID, approver, note string) (*dto.LoanResponse, error) {
	var out *entity.Loan
	err := s.tx.RunLoans(ctx, func(loanRepo repository.LoanRepository, _ repository.MaterialRepository) error {
		l, err := s.pending(ctx, loanRepo, loanID)
		if err != nil {
			return err
		}
		l.Status = entity.LoanRejected
		l.ApprovedBy = approver
		if note != "" {
			l.Note = note
		}
		l.UpdatedAt = s.now()
		if err := loanRepo.Update(ctx, l); err != nil {
			return conflictAsState(err, l)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.LoanResolved, out, nil, approver, "Préstamo rechazado: "+note)
	return toResponse(out), nil
}

// RegisterReturn acumula una devolución parcial. Al completar lo prestado pasa a DEVUELTO.
func (s *Service) RegisterReturn(ctx context.Context, loanID string, qty int, user string) (*dto.LoanResponse, error) {
	if qty <= 0 {
		return nil, domain.ErrReturnQuantity
	}
	var out *entity.Loan
	err := s.tx.RunLoans(ctx, func(loanRepo repository.LoanRepository, materialRepo repository.MaterialRepository) error {
		l, err := loanRepo.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("%w: préstamo", domain.ErrNotFound)
		}
		if l.Status != entity.LoanApproved {
			return &domain.StateError{Entity: "El préstamo", Current: string(l.Status), Want: string(entity.LoanApproved)}
		}
		if qty > l.Outstanding() {
			return &domain.ReturnLimitError{Max: l.Outstanding()}
		}
		m, err := materialRepo.GetForUpdate(ctx, l.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: material", domain.ErrNotFound)
		}
		l.Returned += qty
		if l.Outstanding() == 0 {
			l.Status = entity.LoanReturned
		}
		l.UpdatedAt = s.now()
		if err := loanRepo.Update(ctx, l); err != nil {
			return err
		}
		if err := materialRepo.UpdateStock(ctx, m.ID, m.Available+qty); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.LoanReturned, out, nil, user,
		fmt.Sprintf("Devolución de %d unidades; pendiente: %d", qty, out.Outstanding()))
	return toResponse(out), nil
}

func (s *Service) pending(ctx context.Context, loanRepo repository.LoanRepository, id string) (*entity.Loan, error) {
	l, err := loanRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: préstamo", domain.ErrNotFound)
	}
	if l.Status != entity.LoanPending {
		return nil, &domain.StateError{Entity: "El préstamo", Current: string(l.Status)}
	}
	return l, nil
}

func conflictAsState(err error, l *entity.Loan) error {
	if errors.Is(err, domain.ErrConflict) {
		return &domain.StateError{Entity: "El préstamo", Current: string(l.Status)}
	}
	return err
}

// Get obtiene un préstamo dentro del alcance del usuario.
func (s *Service) Get(ctx context.Context, id string, scope access.Scope) (*dto.LoanResponse, error) {
	l, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: préstamo", domain.ErrNotFound)
	}
	if scope.OfficeName != "" {
		office, err := s.offices.GetByID(ctx, l.OfficeID)
		if err != nil {
			return nil, err
		}
		if office == nil || !scope.AllowsOffice(office.ID, office.Name) {
			return nil, domain.ErrForbidden
		}
	} else if !scope.Allows(l.OfficeID) {
		return nil, domain.ErrForbidden
	}
	return toResponse(l), nil
}

// List lista préstamos por estado aplicando el alcance de oficinas.
func (s *Service) List(ctx context.Context, status entity.LoanStatus, scope access.Scope) ([]dto.LoanResponse, error) {
	out := []dto.LoanResponse{}
	if scope.Deny {
		return out, nil
	}
	filter := repository.LoanFilter{Status: status, OfficeID: scope.OfficeID}
	if scope.OfficeName != "" {
		o, err := s.offices.GetByName(ctx, scope.OfficeName)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return out, nil
		}
		filter.OfficeID = o.ID
	}
	list, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, l := range list {
		out = append(out, *toResponse(l))
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, kind notify.Kind, l *entity.Loan, office *entity.Office, actor, msg string) {
	if !s.notifier.Enabled() {
		return
	}
	if office == nil {
		office, _ = s.offices.GetByID(ctx, l.OfficeID)
	}
	ev := notify.Event{
		Kind:     kind,
		EntityID: l.ID,
		OfficeID: l.OfficeID,
		Actor:    actor,
		Subject:  "Préstamo " + string(l.Status),
		Message:  msg,
		Data: map[string]string{
			"material_id": l.MaterialID,
			"quantity":    fmt.Sprint(l.Quantity),
			"returned":    fmt.Sprint(l.Returned),
		},
	}
	if office != nil && office.Email != "" {
		ev.Recipients = []string{office.Email}
	}
	s.notifier.Dispatch(ctx, ev)
}

func toResponse(l *entity.Loan) *dto.LoanResponse {
	return &dto.LoanResponse{
		ID:          l.ID,
		MaterialID:  l.MaterialID,
		OfficeID:    l.OfficeID,
		Quantity:    l.Quantity,
		Returned:    l.Returned,
		Outstanding: l.Outstanding(),
		Status:      string(l.Status),
		Borrower:    l.Borrower,
		DueOn:       l.DueOn,
		ApprovedBy:  l.ApprovedBy,
		Note:        l.Note,
		CreatedAt:   l.CreatedAt,
	}
}
