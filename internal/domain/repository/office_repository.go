package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// OfficeRepository define el puerto de persistencia para Office (DIP).
type OfficeRepository interface {
	Create(ctx context.Context, office *entity.Office) error
	GetByID(ctx context.Context, id string) (*entity.Office, error)
	GetByName(ctx context.Context, name string) (*entity.Office, error)
	GetPrincipal(ctx context.Context) (*entity.Office, error)
	Update(ctx context.Context, office *entity.Office) error
	List(ctx context.Context, onlyActive bool) ([]*entity.Office, error)
}
