package corporate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// AssignToOffice asigna qty unidades del stock libre del producto a una oficina.
func (s *Service) AssignToOffice(ctx context.Context, productID, officeID string, qty int, actor string) (*dto.AssignmentResponse, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
	}
	office, err := s.office(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if !office.IsActive {
		return nil, fmt.Errorf("%w: oficina", domain.ErrInactive)
	}
	assignedUser, err := s.assignedUser(ctx)
	if err != nil {
		return nil, err
	}

	var out *entity.Assignment
	var product *entity.CorporateProduct
	err = s.run(ctx, func(t *tx) error {
		p, err := t.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto", domain.ErrNotFound)
		}
		if !p.IsActive {
			return fmt.Errorf("%w: producto", domain.ErrInactive)
		}
		if qty > p.Available {
			return &domain.StockError{Available: p.Available, Requested: qty}
		}
		now := s.now()
		p.Available -= qty
		p.UpdatedAt = now
		if err := t.products.Update(ctx, p); err != nil {
			return err
		}
		a := &entity.Assignment{
			ID:             uuid.New().String(),
			ProductID:      p.ID,
			OfficeID:       officeID,
			Quantity:       qty,
			State:          entity.AssignmentAssigned,
			AssignedUserID: assignedUser,
			AssignedBy:     actor,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := t.assignments.Create(ctx, a); err != nil {
			return err
		}
		if err := t.history.Create(ctx, s.historyRow(p.ID, officeID, entity.HistoryAssign, qty, actor,
			"Asignación a "+office.Name, now)); err != nil {
			return err
		}
		out, product = a, p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.AssignmentCreated, out.ID, actor,
		"Asignación de "+product.Name,
		fmt.Sprintf("Se asignaron %d unidades de %s a %s", qty, product.Name, office.Name), office)
	return toAssignmentResponse(out), nil
}

// assignedUser devuelve un usuario activo para la referencia de la asignación.
func (s *Service) assignedUser(ctx context.Context) (string, error) {
	if s.users == nil {
		return "", nil
	}
	id, err := s.users.FirstActiveID(ctx)
	if err != nil {
		return "", fmt.Errorf("no hay usuarios activos: %w", err)
	}
	return id, nil
}

// WriteOff da de baja definitiva una asignación en estado DEVUELTO. No modifica el stock:
// las unidades ya se reintegraron al aprobar la devolución.
func (s *Service) WriteOff(ctx context.Context, productID, assignmentID, reason, actor string) error {
	var a *entity.Assignment
	err := s.run(ctx, func(t *tx) error {
		var err error
		a, err = t.assignments.GetForUpdate(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a == nil || !a.IsActive || (productID != "" && a.ProductID != productID) {
			return fmt.Errorf("%w: asignación", domain.ErrNotFound)
		}
		if !a.State.CanTransition(entity.AssignmentWrittenOff) {
			return &domain.StateError{Entity: "La asignación", Current: string(a.State), Want: string(entity.AssignmentReturned)}
		}
		now := s.now()
		a.State = entity.AssignmentWrittenOff
		a.IsActive = false
		a.UpdatedAt = now
		if err := t.assignments.Update(ctx, a); err != nil {
			return err
		}
		if err := t.writeOffs.Create(ctx, &entity.WriteOff{
			ID:           uuid.New().String(),
			ProductID:    a.ProductID,
			AssignmentID: a.ID,
			Quantity:     a.Quantity,
			Reason:       reason,
			WrittenOffBy: actor,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		return t.history.Create(ctx, s.historyRow(a.ProductID, a.OfficeID, entity.HistoryWriteOff, a.Quantity, actor, reason, now))
	})
	if err != nil {
		return err
	}
	office, _ := s.offices.GetByID(ctx, a.OfficeID)
	s.notify(ctx, notify.AssetWrittenOff, a.ID, actor, "Baja de activo",
		fmt.Sprintf("Se dieron de baja %d unidades. Motivo: %s", a.Quantity, reason), office)
	return nil
}
