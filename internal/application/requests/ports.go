package requests

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte completa (estado y stock).
type TxRunner interface {
	RunRequests(ctx context.Context, fn func(
		requestRepo repository.RequestRepository,
		materialRepo repository.MaterialRepository,
		deliveryRepo repository.DeliveryRepository,
		returnRepo repository.ReturnRepository,
	) error) error
}
