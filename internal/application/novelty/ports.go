package novelty

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción que cubre la novedad y su solicitud.
type TxRunner interface {
	RunNovelty(ctx context.Context, fn func(
		noveltyRepo repository.NoveltyRepository,
		requestRepo repository.RequestRepository,
	) error) error
}
