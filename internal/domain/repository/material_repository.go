package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// MaterialFilter filtros para listar materiales.
type MaterialFilter struct {
	OfficeID   string
	OnlyActive bool
	Search     string
}

// MaterialRepository define el puerto de persistencia para Material.
// GetForUpdate bloquea la fila hasta el fin de la transacción.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	UpdateStock(ctx context.Context, id string, available int) error
	List(ctx context.Context, filter MaterialFilter) ([]*entity.Material, error)
}
