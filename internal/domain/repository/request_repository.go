package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// RequestFilter filtros para listar solicitudes. Status nil = todos los estados.
type RequestFilter struct {
	OfficeID   string
	OfficeName string
	MaterialID string
	Status     *entity.RequestStatus
	Limit      int
	Offset     int
}

// RequestRepository define el puerto de persistencia para MaterialRequest.
//
// Update es condicional: solo escribe si la fila sigue en el estado `from` y con la misma Version;
// en caso contrario devuelve domain.ErrConflict. Al escribir incrementa req.Version.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.MaterialRequest) error
	GetByID(ctx context.Context, id string) (*entity.MaterialRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error)
	Update(ctx context.Context, req *entity.MaterialRequest, from entity.RequestStatus) error
	List(ctx context.Context, filter RequestFilter) ([]*entity.MaterialRequest, error)
	CountByStatus(ctx context.Context, filter RequestFilter) (map[entity.RequestStatus]int, error)
}

// DeliveryRepository historial de entregas.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.Delivery, error)
}

// ReturnRepository devoluciones de solicitudes de material.
type ReturnRepository interface {
	Create(ctx context.Context, r *entity.MaterialReturn) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.MaterialReturn, error)
	SumByRequest(ctx context.Context, requestID string) (int, error)
}
