package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	// FirstActiveID devuelve el ID de algún usuario activo (referencia para FKs de sistema).
	FirstActiveID(ctx context.Context) (string, error)
}

// ApproverRepository aprobadores habilitados.
type ApproverRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Approver, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Approver, error)
	FirstActive(ctx context.Context) (*entity.Approver, error)
}
