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

// ReturnInput datos para solicitar la devolución de un producto asignado a una oficina.
// Quantity 0 devuelve toda la asignación.
type ReturnInput struct {
	ProductID string
	OfficeID  string
	Quantity  int
	Reason    string
	Actor     string
}

// RequestReturn crea una solicitud de devolución pendiente sobre la asignación activa de la oficina.
func (s *Service) RequestReturn(ctx context.Context, in ReturnInput) (*dto.CorporateReturnResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrReturnQuantity
	}
	var out *entity.CorporateReturn
	err := s.run(ctx, func(t *tx) error {
		a, err := t.assignments.FindHolding(ctx, in.ProductID, in.OfficeID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: el producto no está asignado a la oficina", domain.ErrNotFound)
		}
		a, err = t.assignments.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		qty := in.Quantity
		if qty == 0 {
			qty = a.Quantity
		}
		if qty > a.Quantity {
			return &domain.ReturnLimitError{Max: a.Quantity}
		}
		if err := s.ensureNoPending(ctx, t, a.ID); err != nil {
			return err
		}
		now := s.now()
		r := &entity.CorporateReturn{
			ID:           uuid.New().String(),
			ProductID:    a.ProductID,
			OfficeID:     a.OfficeID,
			AssignmentID: a.ID,
			Quantity:     qty,
			Reason:       in.Reason,
			State:        entity.ResolutionPending,
			RequestedBy:  in.Actor,
			CreatedAt:    now,
		}
		if err := t.returns.Create(ctx, r); err != nil {
			return err
		}
		if err := t.history.Create(ctx, s.historyRow(a.ProductID, a.OfficeID, entity.HistoryReturnRequested, qty, in.Actor, in.Reason, now)); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	office, _ := s.offices.GetByID(ctx, out.OfficeID)
	s.notify(ctx, notify.CorporateReturnRequested, out.ID, in.Actor, "Solicitud de devolución",
		fmt.Sprintf("Devolución de %d unidades pendiente de aprobación", out.Quantity), office)
	return toReturnResponse(out), nil
}

// ensureNoPending impide abrir dos solicitudes sobre la misma asignación.
func (s *Service) ensureNoPending(ctx context.Context, t *tx, assignmentID string) error {
	r, err := t.returns.PendingForAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if r != nil {
		return fmt.Errorf("%w: ya existe una devolución pendiente para la asignación", domain.ErrConflict)
	}
	tr, err := t.transfers.PendingForAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if tr != nil {
		return fmt.Errorf("%w: ya existe un traspaso pendiente para la asignación", domain.ErrConflict)
	}
	return nil
}

// ApproveReturn reintegra la cantidad al stock y marca la asignación como DEVUELTO.
// Si la devolución es parcial, la parte devuelta se separa en una asignación propia.
func (s *Service) ApproveReturn(ctx context.Context, returnID, actor, notes string) (*dto.CorporateReturnResponse, error) {
	var out *entity.CorporateReturn
	var product *entity.CorporateProduct
	err := s.run(ctx, func(t *tx) error {
		r, err := t.returns.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: devolución", domain.ErrNotFound)
		}
		if r.State != entity.ResolutionPending {
			return &domain.StateError{Entity: "Esta devolución", Current: r.State.Label()}
		}
		a, err := t.assignments.GetForUpdate(ctx, r.AssignmentID)
		if err != nil {
			return err
		}
		if a == nil || !a.Holding() {
			return fmt.Errorf("%w: la asignación ya no está activa", domain.ErrConflict)
		}
		if r.Quantity > a.Quantity {
			return &domain.ReturnLimitError{Max: a.Quantity}
		}
		p, err := t.products.GetForUpdate(ctx, r.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto", domain.ErrNotFound)
		}

		now := s.now()
		p.Available += r.Quantity
		p.UpdatedAt = now
		if err := t.products.Update(ctx, p); err != nil {
			return err
		}
		if r.Quantity == a.Quantity {
			a.State = entity.AssignmentReturned
			a.UpdatedAt = now
			if err := t.assignments.Update(ctx, a); err != nil {
				return err
			}
		} else {
			a.Quantity -= r.Quantity
			a.UpdatedAt = now
			if err := t.assignments.Update(ctx, a); err != nil {
				return err
			}
			returned := *a
			returned.ID = uuid.New().String()
			returned.Quantity = r.Quantity
			returned.State = entity.AssignmentReturned
			returned.CreatedAt = now
			if err := t.assignments.Create(ctx, &returned); err != nil {
				return err
			}
		}

		r.State = entity.ResolutionApproved
		r.ResolvedBy = actor
		r.Resolution = notes
		r.ResolvedAt = &now
		if err := t.returns.Update(ctx, r); err != nil {
			return err
		}
		if notes == "" {
			notes = "Devolución aprobada"
		}
		if err := t.history.Create(ctx, s.historyRow(r.ProductID, r.OfficeID, entity.HistoryReturnApproved, r.Quantity, actor, notes, now)); err != nil {
			return err
		}
		out, product = r, p
		return nil
	})
	if err != nil {
		return nil, err
	}
	office, _ := s.offices.GetByID(ctx, out.OfficeID)
	s.notify(ctx, notify.CorporateReturnResolved, out.ID, actor, "Devolución aprobada",
		fmt.Sprintf("Devolución aprobada. %d unidades de %s devueltas al inventario", out.Quantity, product.Name), office)
	return toReturnResponse(out), nil
}

// RejectReturn rechaza una devolución pendiente. La asignación queda intacta.
func (s *Service) RejectReturn(ctx context.Context, returnID, actor, reason string) (*dto.CorporateReturnResponse, error) {
	var out *entity.CorporateReturn
	err := s.run(ctx, func(t *tx) error {
		r, err := t.returns.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: devolución", domain.ErrNotFound)
		}
		if r.State != entity.ResolutionPending {
			return &domain.StateError{Entity: "Esta devolución", Current: r.State.Label()}
		}
		now := s.now()
		r.State = entity.ResolutionRejected
		r.ResolvedBy = actor
		r.Resolution = reason
		r.ResolvedAt = &now
		if err := t.returns.Update(ctx, r); err != nil {
			return err
		}
		if err := t.history.Create(ctx, s.historyRow(r.ProductID, r.OfficeID, entity.HistoryReturnRejected, r.Quantity, actor, reason, now)); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	office, _ := s.offices.GetByID(ctx, out.OfficeID)
	s.notify(ctx, notify.CorporateReturnResolved, out.ID, actor, "Devolución rechazada", "Motivo: "+reason, office)
	return toReturnResponse(out), nil
}
