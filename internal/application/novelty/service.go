// Package novelty gestiona las novedades (daños, pérdidas, faltantes) reportadas sobre solicitudes
// ya entregadas y su resolución, que lleva la solicitud a un estado final de novedad.
package novelty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var reportableStates = entity.RequestApproved.String() + " o " + entity.RequestDelivered.String()

// Acciones aceptadas al gestionar una novedad.
const (
	ActionAccept = "aceptar"
	ActionReject = "rechazar"
)

// Service casos de uso de novedades.
type Service struct {
	tx        TxRunner
	novelties repository.NoveltyRepository
	requests  repository.RequestRepository
	offices   repository.OfficeRepository
	notifier  *notify.Dispatcher
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(tx TxRunner, novelties repository.NoveltyRepository, requests repository.RequestRepository,
	offices repository.OfficeRepository, notifier *notify.Dispatcher) *Service {
	return &Service{
		tx:        tx,
		novelties: novelties,
		requests:  requests,
		offices:   offices,
		notifier:  notifier,
		now:       time.Now,
	}
}

// ReportInput datos de una novedad. ImagePath es la ruta ya guardada de la evidencia (opcional).
type ReportInput struct {
	RequestID   string
	Type        string
	Description string
	AffectedQty int
	ReportedBy  string
	ImagePath   string
}

// Report registra una novedad pendiente y marca la solicitud con novedad.
func (s *Service) Report(ctx context.Context, in ReportInput) (*dto.NoveltyResponse, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: tipo y descripción son requeridos", domain.ErrInvalidInput)
	}
	if in.AffectedQty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad afectada debe ser mayor a 0", domain.ErrInvalidInput)
	}
	var out *entity.Novelty
	var req *entity.MaterialRequest
	err := s.tx.RunNovelty(ctx, func(noveltyRepo repository.NoveltyRepository, requestRepo repository.RequestRepository) error {
		var err error
		req, err = requestRepo.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		if !req.Status.CanTransition(entity.RequestNoveltyAccepted) {
			return &domain.StateError{Entity: "La solicitud", Current: req.Status.String(), Want: reportableStates}
		}
		if in.AffectedQty > req.Delivered {
			return fmt.Errorf("%w: la cantidad afectada excede lo entregado (%d)", domain.ErrInvalidInput, req.Delivered)
		}
		now := s.now()
		n := &entity.Novelty{
			ID:          uuid.New().String(),
			RequestID:   req.ID,
			Type:        strings.TrimSpace(in.Type),
			Description: strings.TrimSpace(in.Description),
			AffectedQty: in.AffectedQty,
			ReportedBy:  in.ReportedBy,
			ImagePath:   in.ImagePath,
			Status:      entity.NoveltyPending,
			CreatedAt:   now,
		}
		if err := noveltyRepo.Create(ctx, n); err != nil {
			return err
		}
		req.HasNovelty = true
		req.UpdatedAt = now
		if err := requestRepo.Update(ctx, req, req.Status); err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.NoveltyReported, out, req, in.ReportedBy,
		fmt.Sprintf("Novedad %s: %d unidades afectadas", out.Type, out.AffectedQty))
	return toResponse(out), nil
}

// Resolve acepta o rechaza una novedad pendiente y, si la solicitud sigue aprobada o entregada,
// la lleva al estado de novedad correspondiente, todo en la misma transacción.
func (s *Service) Resolve(ctx context.Context, noveltyID string, accept bool, user, notes string) (*dto.NoveltyResponse, error) {
	status := entity.NoveltyRejected
	if accept {
		status = entity.NoveltyAccepted
	}
	var out *entity.Novelty
	var req *entity.MaterialRequest
	err := s.tx.RunNovelty(ctx, func(noveltyRepo repository.NoveltyRepository, requestRepo repository.RequestRepository) error {
		n, err := noveltyRepo.GetForUpdate(ctx, noveltyID)
		if err != nil {
			return err
		}
		if n == nil {
			return fmt.Errorf("%w: novedad", domain.ErrNotFound)
		}
		if n.Status.Resolved() {
			return &domain.StateError{Entity: "La novedad", Current: string(n.Status)}
		}
		req, err = requestRepo.GetForUpdate(ctx, n.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: solicitud", domain.ErrNotFound)
		}
		now := s.now()
		n.Status = status
		n.ResolvedBy = user
		n.Resolution = notes
		n.ResolvedAt = &now
		if err := noveltyRepo.Update(ctx, n); err != nil {
			return err
		}
		out = n
		// La solicitud pudo cerrarse después del reporte (otra novedad resuelta o devolución
		// total); en ese caso la novedad se resuelve sin tocar su estado.
		next := status.RequestOutcome()
		if !req.Status.CanTransition(next) {
			return nil
		}
		from := req.Status
		req.Status = next
		req.UpdatedAt = now
		return requestRepo.Update(ctx, req, from)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.NoveltyResolved, out, req, user, fmt.Sprintf("Novedad %s. %s", out.Status, notes))
	return toResponse(out), nil
}

// ParseAction traduce la acción del cliente ("aceptar" / "rechazar").
func ParseAction(action string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionAccept:
		return true, nil
	case ActionReject:
		return false, nil
	default:
		return false, fmt.Errorf("%w: acción debe ser %q o %q", domain.ErrInvalidInput, ActionAccept, ActionReject)
	}
}

// Get obtiene una novedad.
func (s *Service) Get(ctx context.Context, id string) (*dto.NoveltyResponse, error) {
	n, err := s.novelties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: novedad", domain.ErrNotFound)
	}
	return toResponse(n), nil
}

// List lista novedades por estado aplicando el alcance de oficinas.
func (s *Service) List(ctx context.Context, status entity.NoveltyStatus, scope access.Scope) ([]dto.NoveltyResponse, error) {
	out := []dto.NoveltyResponse{}
	if scope.Deny {
		return out, nil
	}
	filter := repository.NoveltyFilter{Status: status, OfficeID: scope.OfficeID}
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
	list, err := s.novelties.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		out = append(out, *toResponse(n))
	}
	return out, nil
}

// Pending novedades pendientes de gestión.
func (s *Service) Pending(ctx context.Context, scope access.Scope) ([]dto.NoveltyResponse, error) {
	return s.List(ctx, entity.NoveltyPending, scope)
}

// ByRequest novedades de una solicitud.
func (s *Service) ByRequest(ctx context.Context, requestID string) ([]dto.NoveltyResponse, error) {
	list, err := s.novelties.List(ctx, repository.NoveltyFilter{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.NoveltyResponse, 0, len(list))
	for _, n := range list {
		out = append(out, *toResponse(n))
	}
	return out, nil
}

// Stats conteos por estado.
func (s *Service) Stats(ctx context.Context) (*dto.NoveltyStatsResponse, error) {
	st, err := s.novelties.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.NoveltyStatsResponse{
		Total:    st.Total,
		Pending:  st.Pending,
		Accepted: st.Accepted,
		Rejected: st.Rejected,
		Resolved: st.Resolved,
	}, nil
}

// Types tipos de novedad registrados.
func (s *Service) Types(ctx context.Context) ([]string, error) {
	types, err := s.novelties.Types(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

func (s *Service) notify(ctx context.Context, kind notify.Kind, n *entity.Novelty, req *entity.MaterialRequest, actor, msg string) {
	if !s.notifier.Enabled() {
		return
	}
	ev := notify.Event{
		Kind:     kind,
		EntityID: n.ID,
		OfficeID: req.OfficeID,
		Actor:    actor,
		Subject:  "Novedad en solicitud " + req.ID,
		Message:  msg,
		Data: map[string]string{
			"request_id": req.ID,
			"type":       n.Type,
			"priority":   Priority(n.Type),
			"status":     string(n.Status),
		},
	}
	if s.offices != nil {
		if o, err := s.offices.GetByID(ctx, req.OfficeID); err == nil && o != nil && o.Email != "" {
			ev.Recipients = []string{o.Email}
		}
	}
	s.notifier.Dispatch(ctx, ev)
}

func toResponse(n *entity.Novelty) *dto.NoveltyResponse {
	return &dto.NoveltyResponse{
		ID:          n.ID,
		RequestID:   n.RequestID,
		Type:        n.Type,
		Description: n.Description,
		AffectedQty: n.AffectedQty,
		ReportedBy:  n.ReportedBy,
		ImagePath:   n.ImagePath,
		Status:      string(n.Status),
		Priority:    Priority(n.Type),
		ResolvedBy:  n.ResolvedBy,
		Resolution:  n.Resolution,
		CreatedAt:   n.CreatedAt,
		ResolvedAt:  n.ResolvedAt,
	}
}
