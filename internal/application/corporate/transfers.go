package corporate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// TransferInput datos para solicitar un traspaso entre oficinas.
type TransferInput struct {
	ProductID    string
	FromOfficeID string
	ToOfficeID   string
	Reason       string
	Actor        string
}

// RequestTransfer crea un traspaso pendiente de la asignación activa de la oficina origen.
func (s *Service) RequestTransfer(ctx context.Context, in TransferInput) (*dto.TransferResponse, error) {
	if in.FromOfficeID == in.ToOfficeID {
		return nil, domain.ErrSameOffice
	}
	from, err := s.office(ctx, in.FromOfficeID)
	if err != nil {
		return nil, err
	}
	to, err := s.office(ctx, in.ToOfficeID)
	if err != nil {
		return nil, err
	}
	if !to.IsActive {
		return nil, fmt.Errorf("%w: oficina destino", domain.ErrInactive)
	}

	var out *entity.Transfer
	err = s.run(ctx, func(t *tx) error {
		a, err := t.assignments.FindHolding(ctx, in.ProductID, in.FromOfficeID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: el producto no está asignado a la oficina de origen", domain.ErrNotFound)
		}
		a, err = t.assignments.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		if err := s.ensureNoPending(ctx, t, a.ID); err != nil {
			return err
		}
		now := s.now()
		tr := &entity.Transfer{
			ID:                 uuid.New().String(),
			ProductID:          a.ProductID,
			FromOfficeID:       in.FromOfficeID,
			ToOfficeID:         in.ToOfficeID,
			SourceAssignmentID: a.ID,
			Quantity:           a.Quantity,
			Reason:             in.Reason,
			State:              entity.ResolutionPending,
			RequestedBy:        in.Actor,
			CreatedAt:          now,
		}
		if err := t.transfers.Create(ctx, tr); err != nil {
			return err
		}
		if err := t.history.Create(ctx, s.historyRow(a.ProductID, in.FromOfficeID, entity.HistoryTransferRequest, a.Quantity, in.Actor,
			fmt.Sprintf("Traspaso de %s a %s: %s", from.Name, to.Name, in.Reason), now)); err != nil {
			return err
		}
		out = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.TransferRequested, out.ID, in.Actor, "Solicitud de traspaso",
		fmt.Sprintf("Traspaso de %d unidades de %s a %s pendiente de aprobación", out.Quantity, from.Name, to.Name), from, to)
	return toTransferResponse(out), nil
}

// ApproveTransfer desactiva la asignación origen (TRASPASADO) y crea una asignación equivalente
// en la oficina destino. El stock libre del producto no cambia.
func (s *Service) ApproveTransfer(ctx context.Context, transferID, actor, notes string) (*dto.TransferResponse, error) {
	assignedUser, err := s.assignedUser(ctx)
	if err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err = s.run(ctx, func(t *tx) error {
		tr, err := t.transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("%w: traspaso", domain.ErrNotFound)
		}
		if tr.State != entity.ResolutionPending {
			return &domain.StateError{Entity: "Este traspaso", Current: strings.ToLower(string(tr.State))}
		}
		src, err := t.assignments.GetForUpdate(ctx, tr.SourceAssignmentID)
		if err != nil {
			return err
		}
		if src == nil || !src.Holding() {
			return fmt.Errorf("%w: la asignación de origen ya no está activa", domain.ErrConflict)
		}
		now := s.now()
		src.State = entity.AssignmentTransferred
		src.IsActive = false
		src.UpdatedAt = now
		if err := t.assignments.Update(ctx, src); err != nil {
			return err
		}
		dst := &entity.Assignment{
			ID:             uuid.New().String(),
			ProductID:      src.ProductID,
			OfficeID:       tr.ToOfficeID,
			Quantity:       src.Quantity,
			State:          entity.AssignmentAssigned,
			AssignedUserID: assignedUser,
			AssignedBy:     actor,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := t.assignments.Create(ctx, dst); err != nil {
			return err
		}
		tr.State = entity.ResolutionApproved
		tr.TargetAssignmentID = dst.ID
		tr.Quantity = dst.Quantity
		tr.ResolvedBy = actor
		tr.Resolution = notes
		tr.ResolvedAt = &now
		if err := t.transfers.Update(ctx, tr); err != nil {
			return err
		}
		if notes == "" {
			notes = "Traspaso aprobado"
		}
		if err := t.history.Create(ctx, s.historyRow(tr.ProductID, tr.ToOfficeID, entity.HistoryTransferApproved, dst.Quantity, actor, notes, now)); err != nil {
			return err
		}
		out = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	from, _ := s.offices.GetByID(ctx, out.FromOfficeID)
	to, _ := s.offices.GetByID(ctx, out.ToOfficeID)
	s.notify(ctx, notify.TransferResolved, out.ID, actor, "Traspaso aprobado",
		fmt.Sprintf("Se trasladaron %d unidades", out.Quantity), from, to)
	return toTransferResponse(out), nil
}

// RejectTransfer rechaza un traspaso pendiente.
func (s *Service) RejectTransfer(ctx context.Context, transferID, actor, reason string) (*dto.TransferResponse, error) {
	var out *entity.Transfer
	err := s.run(ctx, func(t *tx) error {
		tr, err := t.transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("%w: traspaso", domain.ErrNotFound)
		}
		if tr.State != entity.ResolutionPending {
			return &domain.StateError{Entity: "Este traspaso", Current: strings.ToLower(string(tr.State))}
		}
		now := s.now()
		tr.State = entity.ResolutionRejected
		tr.ResolvedBy = actor
		tr.Resolution = reason
		tr.ResolvedAt = &now
		if err := t.transfers.Update(ctx, tr); err != nil {
			return err
		}
		if err := t.history.Create(ctx, s.historyRow(tr.ProductID, tr.FromOfficeID, entity.HistoryTransferRejected, tr.Quantity, actor, reason, now)); err != nil {
			return err
		}
		out = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	from, _ := s.offices.GetByID(ctx, out.FromOfficeID)
	s.notify(ctx, notify.TransferResolved, out.ID, actor, "Traspaso rechazado", "Motivo: "+reason, from)
	return toTransferResponse(out), nil
}
