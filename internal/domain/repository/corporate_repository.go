package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// CorporateProductRepository catálogo del inventario corporativo.
type CorporateProductRepository interface {
	Create(ctx context.Context, p *entity.CorporateProduct) error
	GetByID(ctx context.Context, id string) (*entity.CorporateProduct, error)
	GetByCode(ctx context.Context, code string) (*entity.CorporateProduct, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CorporateProduct, error)
	Update(ctx context.Context, p *entity.CorporateProduct) error
	List(ctx context.Context, onlyActive bool) ([]*entity.CorporateProduct, error)
}

// AssignmentFilter filtros de asignaciones. State vacío = todos.
type AssignmentFilter struct {
	ProductID  string
	OfficeID   string
	State      entity.AssignmentState
	OnlyActive bool
}

// AssignmentRepository asignaciones producto -> oficina.
type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error)
	// FindHolding devuelve la asignación activa en estado ASIGNADO de un producto en una oficina.
	FindHolding(ctx context.Context, productID, officeID string) (*entity.Assignment, error)
	Update(ctx context.Context, a *entity.Assignment) error
	List(ctx context.Context, filter AssignmentFilter) ([]*entity.Assignment, error)
	// SumHolding suma las cantidades activas en estado ASIGNADO de un producto.
	SumHolding(ctx context.Context, productID string) (int, error)
}

// CorporateReturnRepository solicitudes de devolución corporativa.
type CorporateReturnRepository interface {
	Create(ctx context.Context, r *entity.CorporateReturn) error
	GetByID(ctx context.Context, id string) (*entity.CorporateReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CorporateReturn, error)
	Update(ctx context.Context, r *entity.CorporateReturn) error
	ListByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]*entity.CorporateReturn, error)
	// PendingForAssignment devuelve la solicitud pendiente de la asignación, si existe.
	PendingForAssignment(ctx context.Context, assignmentID string) (*entity.CorporateReturn, error)
}

// TransferRepository solicitudes de traspaso.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, t *entity.Transfer) error
	ListByState(ctx context.Context, state entity.ResolutionState, officeID string) ([]*entity.Transfer, error)
	PendingForAssignment(ctx context.Context, assignmentID string) (*entity.Transfer, error)
}

// WriteOffRepository bajas definitivas.
type WriteOffRepository interface {
	Create(ctx context.Context, w *entity.WriteOff) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.WriteOff, error)
}

// HistoryRepository historial de movimientos corporativos.
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.AssignmentHistory) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.AssignmentHistory, error)
}
