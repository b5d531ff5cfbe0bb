package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/inventory"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// ReturnInput datos de una devolución.
type ReturnInput struct {
	RequestID   string
	Quantity    int
	User        string
	Observation string
	Condition   string
}

// ReturnResult devolución registrada y saldo restante.
type ReturnResult struct {
	Return    dto.ReturnResponse
	Remaining int
	Status    entity.RequestStatus
}

// RegisterReturn registra una devolución total o parcial.
//
// Precondiciones: solicitud aprobada o entregada, cantidad > 0 y no mayor que lo entregado menos lo
// ya devuelto. Efectos: fila de devolución, stock += cantidad y, si el saldo llega a cero, estado devuelta.
func (s *Service) RegisterReturn(ctx context.Context, in ReturnInput) (*ReturnResult, error) {
	condition := strings.ToUpper(strings.TrimSpace(in.Condition))
	if condition == "" {
		condition = entity.ConditionGood
	}
	var (
		ret    *entity.MaterialReturn
		req    *entity.MaterialRequest
		remain int
	)
	err := s.tx.RunRequests(ctx, func(
		requestRepo repository.RequestRepository,
		materialRepo repository.MaterialRepository,
		_ repository.DeliveryRepository,
		returnRepo repository.ReturnRepository,
	) error {
		var err error
		req, err = requestRepo.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		if !req.Status.Returnable() {
			return domain.ErrNotReturnable
		}
		if in.Quantity <= 0 {
			return domain.ErrReturnQuantity
		}
		returned, err := returnRepo.SumByRequest(ctx, req.ID)
		if err != nil {
			return err
		}
		returnable := inventory.Returnable(req.Delivered, returned)
		if in.Quantity > returnable {
			return &domain.ReturnLimitError{Max: returnable}
		}
		material, err := materialRepo.GetForUpdate(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material", domain.ErrNotFound)
		}

		now := s.now()
		ret = &entity.MaterialReturn{
			ID:          uuid.New().String(),
			RequestID:   req.ID,
			MaterialID:  req.MaterialID,
			Quantity:    in.Quantity,
			ReturnedBy:  in.User,
			Observation: in.Observation,
			Condition:   condition,
			CreatedAt:   now,
		}
		if err := returnRepo.Create(ctx, ret); err != nil {
			return err
		}
		if err := materialRepo.UpdateStock(ctx, material.ID, material.Available+in.Quantity); err != nil {
			return err
		}
		remain = returnable - in.Quantity
		if remain == 0 {
			from := req.Status
			req.Status = entity.RequestReturned
			req.UpdatedAt = now
			if err := requestRepo.Update(ctx, req, from); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestReturned, req, nil, in.User,
		fmt.Sprintf("Devolución de %d unidades; pendiente por devolver: %d", ret.Quantity, remain))
	return &ReturnResult{
		Return:    *toReturnResponse(ret),
		Remaining: remain,
		Status:    req.Status,
	}, nil
}

// ReturnInfo calcula lo ya devuelto y lo que aún se puede devolver.
// CanReturn y Reason resumen si una nueva devolución sería aceptada.
func (s *Service) ReturnInfo(ctx context.Context, requestID string) (*dto.ReturnInfoResponse, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: solicitud", domain.ErrNotFound)
	}
	returned, err := s.returns.SumByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	returnable := inventory.Returnable(req.Delivered, returned)
	info := &dto.ReturnInfoResponse{
		RequestID:  req.ID,
		Status:     int(req.Status),
		Delivered:  req.Delivered,
		Returned:   returned,
		Returnable: returnable,
	}
	switch {
	case !req.Status.Returnable():
		info.Reason = domain.ErrNotReturnable.Error()
	case returnable == 0:
		info.Reason = domain.ErrNothingToReturn.Error()
	default:
		info.CanReturn = true
	}
	return info, nil
}

// ListReturns devuelve las devoluciones de una solicitud.
func (s *Service) ListReturns(ctx context.Context, requestID string) ([]dto.ReturnResponse, error) {
	list, err := s.returns.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toReturnResponse(r))
	}
	return out, nil
}
