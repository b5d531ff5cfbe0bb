// Package requests implementa el ciclo de vida de las solicitudes de material:
// creación, aprobación total o parcial, rechazo, entrega y devoluciones.
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/inventory"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// Deps dependencias del servicio de solicitudes.
type Deps struct {
	Tx         TxRunner
	Requests   repository.RequestRepository
	Materials  repository.MaterialRepository
	Offices    repository.OfficeRepository
	Deliveries repository.DeliveryRepository
	Returns    repository.ReturnRepository
	Users      repository.UserRepository
	Approvers  repository.ApproverRepository
	Notifier   *notify.Dispatcher
}

// Service casos de uso del flujo de solicitudes de material.
type Service struct {
	tx         TxRunner
	requests   repository.RequestRepository
	materials  repository.MaterialRepository
	offices    repository.OfficeRepository
	deliveries repository.DeliveryRepository
	returns    repository.ReturnRepository
	users      repository.UserRepository
	approvers  repository.ApproverRepository
	notifier   *notify.Dispatcher
	now        func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	return &Service{
		tx:         d.Tx,
		requests:   d.Requests,
		materials:  d.Materials,
		offices:    d.Offices,
		deliveries: d.Deliveries,
		returns:    d.Returns,
		users:      d.Users,
		approvers:  d.Approvers,
		notifier:   d.Notifier,
		now:        time.Now,
	}
}

// CreateInput datos para crear una solicitud.
type CreateInput struct {
	OfficeID      string
	MaterialID    string
	Quantity      int
	OfficePercent decimal.Decimal
	Requester     string
	Observation   string
	// Scope alcance del solicitante; el valor cero no restringe.
	Scope access.Scope
}

// Create registra una solicitud en estado pendiente. No toca stock.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dto.RequestResponse, error) {
	if in.OfficeID == "" || in.MaterialID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.OfficePercent.LessThan(decimal.Zero) || in.OfficePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: porcentaje de oficina fuera de rango", domain.ErrInvalidInput)
	}
	office, err := s.offices.GetByID(ctx, in.OfficeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, fmt.Errorf("%w: oficina", domain.ErrNotFound)
	}
	if !in.Scope.AllowsOffice(office.ID, office.Name) {
		return nil, fmt.Errorf("%w: no puede solicitar para otra oficina", domain.ErrForbidden)
	}
	if !office.IsActive {
		return nil, fmt.Errorf("%w: oficina", domain.ErrInactive)
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
	req := &entity.MaterialRequest{
		ID:            uuid.New().String(),
		OfficeID:      in.OfficeID,
		MaterialID:    in.MaterialID,
		Requested:     in.Quantity,
		Status:        entity.RequestPending,
		OfficePercent: in.OfficePercent,
		Requester:     in.Requester,
		Observation:   in.Observation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestCreated, req, office, in.Requester,
		fmt.Sprintf("Nueva solicitud de %d unidades de %s", req.Requested, material.Name))
	return toRequestResponse(req), nil
}

// Approve aprueba la cantidad solicitada completa.
//
// En una sola transacción: bloquea solicitud y material, verifica que siga pendiente y que haya stock,
// calcula el reparto de valores, descuenta stock y agrega la fila de entrega.
func (s *Service) Approve(ctx context.Context, requestID, approverUserID string) (*dto.RequestResponse, error) {
	approverID := s.resolveApprover(ctx, approverUserID)
	var out *entity.MaterialRequest
	err := s.tx.RunRequests(ctx, func(
		requestRepo repository.RequestRepository,
		materialRepo repository.MaterialRepository,
		deliveryRepo repository.DeliveryRepository,
		_ repository.ReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil || req.Status != entity.RequestPending {
			return domain.ErrRequestNotPending
		}
		req, err = s.deliver(ctx, requestRepo, materialRepo, deliveryRepo, req, req.Requested, approverID, approverUserID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrRequestNotPending
			}
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestApproved, out, nil, approverUserID,
		fmt.Sprintf("Solicitud aprobada: %d unidades entregadas", out.Delivered))
	return toRequestResponse(out), nil
}

// ApprovePartial aprueba una cantidad menor o igual a la solicitada.
func (s *Service) ApprovePartial(ctx context.Context, requestID, approverUserID string, qty int) (*dto.RequestResponse, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	approverID := s.resolveApprover(ctx, approverUserID)
	var out *entity.MaterialRequest
	err := s.tx.RunRequests(ctx, func(
		requestRepo repository.RequestRepository,
		materialRepo repository.MaterialRepository,
		deliveryRepo repository.DeliveryRepository,
		_ repository.ReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		if req.Status != entity.RequestPending {
			return domain.ErrOnlyPending
		}
		if qty > req.Requested {
			return domain.ErrInvalidQuantity
		}
		req, err = s.deliver(ctx, requestRepo, materialRepo, deliveryRepo, req, qty, approverID, approverUserID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrOnlyPending
			}
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestPartiallyApproved, out, nil, approverUserID,
		fmt.Sprintf("Solicitud aprobada parcialmente: %d de %d unidades", out.Delivered, out.Requested))
	return toRequestResponse(out), nil
}

// deliver aplica los efectos de una aprobación sobre una solicitud ya bloqueada.
func (s *Service) deliver(
	ctx context.Context,
	requestRepo repository.RequestRepository,
	materialRepo repository.MaterialRepository,
	deliveryRepo repository.DeliveryRepository,
	req *entity.MaterialRequest,
	qty int,
	approverID, userID string,
) (*entity.MaterialRequest, error) {
	material, err := materialRepo.GetForUpdate(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material", domain.ErrNotFound)
	}
	if qty > material.Available {
		return nil, &domain.StockError{Available: material.Available, Requested: qty}
	}

	now := s.now()
	total, officeValue, hqValue := inventory.Split(material.UnitValue, qty, req.OfficePercent)
	req.Status = entity.RequestApproved
	req.Delivered = qty
	req.ApproverID = approverID
	req.ProcessedBy = userID
	req.TotalValue = total
	req.OfficeValue = officeValue
	req.HeadquartersValue = hqValue
	req.ApprovedAt = &now
	req.LastDeliveryAt = &now
	req.UpdatedAt = now
	if err := requestRepo.Update(ctx, req, entity.RequestPending); err != nil {
		return nil, err
	}
	if err := materialRepo.UpdateStock(ctx, material.ID, material.Available-qty); err != nil {
		return nil, err
	}
	delivery := &entity.Delivery{
		ID:          uuid.New().String(),
		RequestID:   req.ID,
		Quantity:    qty,
		DeliveredBy: userID,
		Notes:       "Aprobación de solicitud",
		CreatedAt:   now,
	}
	if err := deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, err
	}
	return req, nil
}

// Reject rechaza una solicitud pendiente. No toca stock.
func (s *Service) Reject(ctx context.Context, requestID, approverUserID, observation string) (*dto.RequestResponse, error) {
	approverID := s.resolveApprover(ctx, approverUserID)
	var out *entity.MaterialRequest
	err := s.tx.RunRequests(ctx, func(
		requestRepo repository.RequestRepository,
		_ repository.MaterialRepository,
		_ repository.DeliveryRepository,
		_ repository.ReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		if req.Status != entity.RequestPending {
			return domain.ErrOnlyPending
		}
		now := s.now()
		req.Status = entity.RequestRejected
		req.ApproverID = approverID
		req.ProcessedBy = approverUserID
		if observation != "" {
			req.Observation = observation
		}
		req.UpdatedAt = now
		if err := requestRepo.Update(ctx, req, entity.RequestPending); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrOnlyPending
			}
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestRejected, out, nil, approverUserID, "Solicitud rechazada: "+observation)
	return toRequestResponse(out), nil
}

// MarkDelivered confirma la entrega física de una solicitud aprobada.
func (s *Service) MarkDelivered(ctx context.Context, requestID, userID string) (*dto.RequestResponse, error) {
	var out *entity.MaterialRequest
	err := s.tx.RunRequests(ctx, func(
		requestRepo repository.RequestRepository,
		_ repository.MaterialRepository,
		_ repository.DeliveryRepository,
		_ repository.ReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		if !req.Status.CanTransition(entity.RequestDelivered) {
			return &domain.StateError{Entity: "La solicitud", Current: req.Status.String(), Want: entity.RequestApproved.String()}
		}
		from := req.Status
		now := s.now()
		req.Status = entity.RequestDelivered
		req.LastDeliveryAt = &now
		req.UpdatedAt = now
		if err := requestRepo.Update(ctx, req, from); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.RequestDelivered, out, nil, userID, "Entrega confirmada")
	return toRequestResponse(out), nil
}

// resolveApprover devuelve el aprobador asociado al usuario o, en su defecto, el primero activo.
// Un fallo de lectura no bloquea la aprobación: se registra sin aprobador.
func (s *Service) resolveApprover(ctx context.Context, userID string) string {
	if s.users != nil && userID != "" {
		if u, err := s.users.GetByID(ctx, userID); err == nil && u != nil && u.ApproverID != "" {
			return u.ApproverID
		}
	}
	if s.approvers != nil {
		if a, err := s.approvers.FirstActive(ctx); err == nil && a != nil {
			return a.ID
		}
	}
	return ""
}

func (s *Service) notify(ctx context.Context, kind notify.Kind, req *entity.MaterialRequest, office *entity.Office, actor, msg string) {
	if !s.notifier.Enabled() {
		return
	}
	if office == nil && s.offices != nil {
		office, _ = s.offices.GetByID(ctx, req.OfficeID)
	}
	ev := notify.Event{
		Kind:     kind,
		EntityID: req.ID,
		OfficeID: req.OfficeID,
		Actor:    actor,
		Subject:  fmt.Sprintf("Solicitud %s: %s", shortID(req.ID), req.Status),
		Message:  msg,
		Data: map[string]string{
			"material_id": req.MaterialID,
			"status":      req.Status.String(),
			"requested":   fmt.Sprint(req.Requested),
			"delivered":   fmt.Sprint(req.Delivered),
		},
	}
	if office != nil && office.Email != "" {
		ev.Recipients = []string{office.Email}
	}
	s.notifier.Dispatch(ctx, ev)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
