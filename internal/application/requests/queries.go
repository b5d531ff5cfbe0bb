package requests

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// Get obtiene una solicitud si está dentro del alcance de oficinas del usuario.
func (s *Service) Get(ctx context.Context, id string, scope access.Scope) (*dto.RequestResponse, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: solicitud", domain.ErrNotFound)
	}
	if err := s.checkScope(ctx, scope, req.OfficeID); err != nil {
		return nil, err
	}
	return toRequestResponse(req), nil
}

// checkScope valida el alcance; los alcances por nombre se resuelven contra la oficina.
func (s *Service) checkScope(ctx context.Context, scope access.Scope, officeID string) error {
	if scope.OfficeName == "" {
		if !scope.Allows(officeID) {
			return domain.ErrForbidden
		}
		return nil
	}
	office, err := s.offices.GetByID(ctx, officeID)
	if err != nil {
		return err
	}
	if office == nil || !scope.AllowsOffice(office.ID, office.Name) {
		return domain.ErrForbidden
	}
	return nil
}

// List lista solicitudes aplicando el alcance de oficinas.
func (s *Service) List(ctx context.Context, filter repository.RequestFilter, scope access.Scope) (*dto.RequestListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	out := &dto.RequestListResponse{Items: []dto.RequestResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	if scope.Deny {
		return out, nil
	}
	if scope.OfficeID != "" {
		filter.OfficeID = scope.OfficeID
	}
	if scope.OfficeName != "" {
		filter.OfficeName = scope.OfficeName
	}
	list, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		out.Items = append(out.Items, *toRequestResponse(r))
	}
	return out, nil
}

// ListPending solicitudes pendientes de aprobación.
func (s *Service) ListPending(ctx context.Context, scope access.Scope, limit, offset int) (*dto.RequestListResponse, error) {
	pending := entity.RequestPending
	return s.List(ctx, repository.RequestFilter{Status: &pending, Limit: limit, Offset: offset}, scope)
}

// Deliveries historial de entregas de una solicitud.
func (s *Service) Deliveries(ctx context.Context, requestID string) ([]dto.DeliveryResponse, error) {
	list, err := s.deliveries.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.DeliveryResponse{
			ID:          d.ID,
			Quantity:    d.Quantity,
			DeliveredBy: d.DeliveredBy,
			Notes:       d.Notes,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}

// MaterialStats conteo de solicitudes de un material por estado.
func (s *Service) MaterialStats(ctx context.Context, materialID string) (*dto.MaterialStatsResponse, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material", domain.ErrNotFound)
	}
	counts, err := s.requests.CountByStatus(ctx, repository.RequestFilter{MaterialID: materialID})
	if err != nil {
		return nil, err
	}
	out := &dto.MaterialStatsResponse{MaterialID: materialID, ByStatus: map[string]int{}}
	for st, n := range counts {
		out.ByStatus[st.String()] = n
		out.Total += n
	}
	list, err := s.requests.List(ctx, repository.RequestFilter{MaterialID: materialID})
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		out.Delivered += r.Delivered
		if r.HasNovelty {
			out.WithNovelty++
		}
	}
	return out, nil
}

func toRequestResponse(r *entity.MaterialRequest) *dto.RequestResponse {
	if r == nil {
		return nil
	}
	return &dto.RequestResponse{
		ID:                r.ID,
		OfficeID:          r.OfficeID,
		MaterialID:        r.MaterialID,
		Requested:         r.Requested,
		Delivered:         r.Delivered,
		Status:            int(r.Status),
		StatusLabel:       r.Status.String(),
		ApproverID:        r.ApproverID,
		ProcessedBy:       r.ProcessedBy,
		OfficePercent:     r.OfficePercent,
		TotalValue:        r.TotalValue,
		OfficeValue:       r.OfficeValue,
		HeadquartersValue: r.HeadquartersValue,
		Requester:         r.Requester,
		Observation:       r.Observation,
		HasNovelty:        r.HasNovelty,
		CreatedAt:         r.CreatedAt,
		ApprovedAt:        r.ApprovedAt,
		LastDeliveryAt:    r.LastDeliveryAt,
	}
}

func toReturnResponse(r *entity.MaterialReturn) *dto.ReturnResponse {
	return &dto.ReturnResponse{
		ID:          r.ID,
		RequestID:   r.RequestID,
		MaterialID:  r.MaterialID,
		Quantity:    r.Quantity,
		ReturnedBy:  r.ReturnedBy,
		Observation: r.Observation,
		Condition:   r.Condition,
		CreatedAt:   r.CreatedAt,
	}
}
