package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

// CorporateReport datos del reporte de inventario corporativo. OfficeName vacío = todas las oficinas.
type CorporateReport struct {
	GeneratedAt time.Time
	OfficeName  string
	Stock       []repository.CorporateStock
	Holdings    []repository.OfficeHolding
	TotalValue  decimal.Decimal
}

// RequestReceipt comprobante de una solicitud con su historial.
type RequestReceipt struct {
	GeneratedAt time.Time
	Request     *entity.MaterialRequest
	Material    *entity.Material
	Office      *entity.Office
	Deliveries  []*entity.Delivery
	Returns     []*entity.MaterialReturn
}

// PDFRenderer puerto de salida para generar documentos PDF.
type PDFRenderer interface {
	CorporateInventory(ctx context.Context, r CorporateReport) ([]byte, error)
	RequestReceipt(ctx context.Context, r RequestReceipt) ([]byte, error)
}
