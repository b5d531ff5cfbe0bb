package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// NoveltyFilter filtros para listar novedades.
type NoveltyFilter struct {
	Status    entity.NoveltyStatus
	RequestID string
	OfficeID  string
}

// NoveltyStats conteos agregados de novedades.
type NoveltyStats struct {
	Total    int
	Pending  int
	Accepted int
	Rejected int
	Resolved int
}

// NoveltyRepository define el puerto de persistencia para Novelty.
type NoveltyRepository interface {
	Create(ctx context.Context, n *entity.Novelty) error
	GetByID(ctx context.Context, id string) (*entity.Novelty, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Novelty, error)
	Update(ctx context.Context, n *entity.Novelty) error
	List(ctx context.Context, filter NoveltyFilter) ([]*entity.Novelty, error)
	Stats(ctx context.Context) (NoveltyStats, error)
	Types(ctx context.Context) ([]string, error)
}
