package corporate

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// ListProducts catálogo activo. Con alcance de oficina solo se listan productos que la oficina tiene asignados.
func (s *Service) ListProducts(ctx context.Context, scope access.Scope) ([]dto.CorporateProductResponse, error) {
	out := []dto.CorporateProductResponse{}
	if scope.Deny {
		return out, nil
	}
	list, err := s.products.List(ctx, true)
	if err != nil {
		return nil, err
	}
	var held map[string]bool
	if !scope.Unrestricted() {
		officeID, err := s.scopeOffice(ctx, scope)
		if err != nil {
			return nil, err
		}
		assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{OfficeID: officeID, State: entity.AssignmentAssigned, OnlyActive: true})
		if err != nil {
			return nil, err
		}
		held = make(map[string]bool, len(assignments))
		for _, a := range assignments {
			held[a.ProductID] = true
		}
	}
	for _, p := range list {
		if held != nil && !held[p.ID] {
			continue
		}
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// scopeOffice resuelve la oficina de un alcance restringido (por ID o por nombre).
func (s *Service) scopeOffice(ctx context.Context, scope access.Scope) (string, error) {
	if scope.OfficeID != "" {
		return scope.OfficeID, nil
	}
	o, err := s.offices.GetByName(ctx, scope.OfficeName)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "", fmt.Errorf("%w: oficina %s", domain.ErrNotFound, scope.OfficeName)
	}
	return o.ID, nil
}

// Assignments asignaciones activas de un producto; officeID vacío = todas las oficinas.
func (s *Service) Assignments(ctx context.Context, productID, officeID string) ([]dto.AssignmentResponse, error) {
	list, err := s.assignments.List(ctx, repository.AssignmentFilter{ProductID: productID, OfficeID: officeID, OnlyActive: true})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAssignmentResponse(a))
	}
	return out, nil
}

// PendingReturns devoluciones pendientes; officeID vacío = todas.
func (s *Service) PendingReturns(ctx context.Context, officeID string) ([]dto.CorporateReturnResponse, error) {
	return s.ReturnsByState(ctx, entity.ResolutionPending, officeID)
}

// ReturnsByState devoluciones filtradas por estado y oficina.
func (s *Service) ReturnsByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]dto.CorporateReturnResponse, error) {
	list, err := s.returns.ListByState(ctx, state, officeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CorporateReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toReturnResponse(r))
	}
	return out, nil
}

// PendingTransfers traspasos pendientes; officeID filtra por origen o destino.
func (s *Service) PendingTransfers(ctx context.Context, officeID string) ([]dto.TransferResponse, error) {
	return s.TransfersByState(ctx, entity.ResolutionPending, officeID)
}

// TransfersByState traspasos filtrados por estado y oficina.
func (s *Service) TransfersByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]dto.TransferResponse, error) {
	list, err := s.transfers.ListByState(ctx, state, officeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

// ReturnedAwaitingWriteOff asignaciones devueltas que todavía pueden darse de baja.
func (s *Service) ReturnedAwaitingWriteOff(ctx context.Context) ([]dto.AssignmentResponse, error) {
	list, err := s.assignments.List(ctx, repository.AssignmentFilter{State: entity.AssignmentReturned, OnlyActive: true})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAssignmentResponse(a))
	}
	return out, nil
}

// History movimientos registrados de un producto; con officeID solo los de esa oficina.
func (s *Service) History(ctx context.Context, productID, officeID string) ([]dto.HistoryResponse, error) {
	list, err := s.history.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryResponse, 0, len(list))
	for _, h := range list {
		if officeID != "" && h.OfficeID != officeID {
			continue
		}
		out = append(out, dto.HistoryResponse{
			ID:        h.ID,
			OfficeID:  h.OfficeID,
			Action:    h.Action,
			Quantity:  h.Quantity,
			ActorName: h.ActorName,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return out, nil
}

// StockBalance stock libre más unidades asignadas activas del producto. Es una vista global:
// un alcance restringido a una oficina recibe ErrForbidden.
func (s *Service) StockBalance(ctx context.Context, productID string, scope access.Scope) (*dto.StockBalanceResponse, error) {
	if !scope.Unrestricted() {
		return nil, fmt.Errorf("%w: el balance de stock es global", domain.ErrForbidden)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto", domain.ErrNotFound)
	}
	assigned, err := s.assignments.SumHolding(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockBalanceResponse{
		ProductID: p.ID,
		Available: p.Available,
		Assigned:  assigned,
		Total:     p.Available + assigned,
	}, nil
}

func toProductResponse(p *entity.CorporateProduct) *dto.CorporateProductResponse {
	return &dto.CorporateProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Supplier:    p.Supplier,
		UnitValue:   p.UnitValue,
		Available:   p.Available,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock(),
		IsAssetable: p.IsAssetable,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toAssignmentResponse(a *entity.Assignment) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:        a.ID,
		ProductID: a.ProductID,
		OfficeID:  a.OfficeID,
		Quantity:  a.Quantity,
		State:     string(a.State),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toReturnResponse(r *entity.CorporateReturn) *dto.CorporateReturnResponse {
	return &dto.CorporateReturnResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		OfficeID:     r.OfficeID,
		AssignmentID: r.AssignmentID,
		Quantity:     r.Quantity,
		Reason:       r.Reason,
		State:        string(r.State),
		RequestedBy:  r.RequestedBy,
		ResolvedBy:   r.ResolvedBy,
		Resolution:   r.Resolution,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:                 t.ID,
		ProductID:          t.ProductID,
		FromOfficeID:       t.FromOfficeID,
		ToOfficeID:         t.ToOfficeID,
		SourceAssignmentID: t.SourceAssignmentID,
		TargetAssignmentID: t.TargetAssignmentID,
		Quantity:           t.Quantity,
		Reason:             t.Reason,
		State:              string(t.State),
		RequestedBy:        t.RequestedBy,
		ResolvedBy:         t.ResolvedBy,
		CreatedAt:          t.CreatedAt,
		ResolvedAt:         t.ResolvedAt,
	}
}

// OfficeFor oficina a la que se limita el alcance; vacío si no hay restricción.
func (s *Service) OfficeFor(ctx context.Context, scope access.Scope) (string, error) {
	switch {
	case scope.Deny:
		return "", domain.ErrForbidden
	case scope.Unrestricted():
		return "", nil
	}
	return s.scopeOffice(ctx, scope)
}
