package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/reports"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

type capturePDF struct {
	corporate *reports.CorporateReport
	receipt   *reports.RequestReceipt
}

func (c *capturePDF) CorporateInventory(_ context.Context, r reports.CorporateReport) ([]byte, error) {
	c.corporate = &r
	return []byte("%PDF-corp"), nil
}

func (c *capturePDF) RequestReceipt(_ context.Context, r reports.RequestReceipt) ([]byte, error) {
	c.receipt = &r
	return []byte("%PDF-receipt"), nil
}

func seed(t *testing.T) (*reports.Service, *capturePDF) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	s := memory.NewStore()

	offices := memory.NewOfficeRepository(s)
	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-a", Name: "Cali", IsActive: true}))
	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-b", Name: "Neiva", IsActive: true}))

	materials := memory.NewMaterialRepository(s)
	require.NoError(t, materials.Create(ctx, &entity.Material{ID: "m-1", Name: "Afiche", UnitValue: decimal.NewFromInt(1000), Available: 5, IsActive: true}))

	reqs := memory.NewRequestRepository(s)
	mk := func(id, office string, st entity.RequestStatus, delivered int, ov, hq int64) {
		require.NoError(t, reqs.Create(ctx, &entity.MaterialRequest{
			ID: id, OfficeID: office, MaterialID: "m-1", Requested: 4, Delivered: delivered, Status: st,
			OfficeValue: decimal.NewFromInt(ov), HeadquartersValue: decimal.NewFromInt(hq), CreatedAt: now,
		}))
	}
	mk("r-1", "of-a", entity.RequestPending, 0, 0, 0)
	mk("r-2", "of-a", entity.RequestApproved, 4, 1200, 2800)
	mk("r-3", "of-b", entity.RequestPending, 0, 0, 0)
	mk("r-4", "of-b", entity.RequestDelivered, 2, 600, 1400)

	deliveries := memory.NewDeliveryRepository(s)
	require.NoError(t, deliveries.Create(ctx, &entity.Delivery{ID: "d-1", RequestID: "r-2", Quantity: 4, DeliveredBy: "lider", CreatedAt: now}))

	novelties := memory.NewNoveltyRepository(s)
	require.NoError(t, novelties.Create(ctx, &entity.Novelty{ID: "n-1", RequestID: "r-2", Type: "daño", AffectedQty: 1, Status: entity.NoveltyPending, CreatedAt: now}))

	products := memory.NewCorporateProductRepository(s)
	require.NoError(t, products.Create(ctx, &entity.CorporateProduct{ID: "p-1", Code: "CORP-1", Name: "Silla", UnitValue: decimal.NewFromInt(100), Available: 2, MinStock: 3, IsActive: true}))
	require.NoError(t, products.Create(ctx, &entity.CorporateProduct{ID: "p-2", Code: "CORP-2", Name: "Mesa", UnitValue: decimal.NewFromInt(50), Available: 10, IsActive: true}))
	assignments := memory.NewAssignmentRepository(s)
	require.NoError(t, assignments.Create(ctx, &entity.Assignment{ID: "as-1", ProductID: "p-1", OfficeID: "of-a", Quantity: 3, State: entity.AssignmentAssigned, IsActive: true, CreatedAt: now}))
	corpReturns := memory.NewCorporateReturnRepository(s)
	require.NoError(t, corpReturns.Create(ctx, &entity.CorporateReturn{ID: "cr-1", ProductID: "p-1", OfficeID: "of-a", AssignmentID: "as-1", Quantity: 1, State: entity.ResolutionPending, CreatedAt: now}))

	pdf := &capturePDF{}
	svc := reports.NewService(reports.Deps{
		Reports:    memory.NewReportRepository(s),
		Requests:   reqs,
		Materials:  materials,
		Offices:    offices,
		Deliveries: deliveries,
		Returns:    memory.NewReturnRepository(s),
		Novelties:  novelties,
		Products:   products,
		CorpReturn: corpReturns,
		Transfers:  memory.NewTransferRepository(s),
		PDF:        pdf,
	})
	return svc, pdf
}

func TestDashboard_Unrestricted(t *testing.T) {
	svc, _ := seed(t)
	out, err := svc.Dashboard(context.Background(), access.Scope{})
	require.NoError(t, err)

	assert.Equal(t, 2, out.PendingRequests)
	assert.Equal(t, 2, out.RequestsByStatus["pendiente"])
	assert.Equal(t, 1, out.RequestsByStatus["aprobada"])
	assert.Equal(t, 1, out.PendingCorporateReturns)
	assert.Equal(t, 0, out.PendingCorporateTransfers)
	assert.Equal(t, 1, out.PendingNovelties)
	assert.True(t, decimal.NewFromInt(1800).Equal(out.DeliveredOfficeValue))
	assert.True(t, decimal.NewFromInt(4200).Equal(out.DeliveredHQValue))
	// Silla: (2 libres + 3 asignadas) * 100; Mesa: 10 * 50
	assert.True(t, decimal.NewFromInt(1000).Equal(out.CorporateStockValue), out.CorporateStockValue.String())
	assert.Equal(t, []string{"Silla"}, out.LowStockProducts)
}

func TestDashboard_OfficeScope(t *testing.T) {
	svc, _ := seed(t)
	out, err := svc.Dashboard(context.Background(), access.Scope{OfficeName: "Neiva"})
	require.NoError(t, err)

	assert.Equal(t, 1, out.PendingRequests)
	assert.Equal(t, 0, out.PendingCorporateReturns)
	assert.Equal(t, 0, out.PendingNovelties)
	assert.True(t, decimal.NewFromInt(600).Equal(out.DeliveredOfficeValue))
}

func TestDashboard_Deny(t *testing.T) {
	svc, _ := seed(t)
	out, err := svc.Dashboard(context.Background(), access.Scope{Deny: true})
	require.NoError(t, err)
	assert.Zero(t, out.PendingRequests)
	assert.Empty(t, out.RequestsByStatus)
}

func TestCorporateReportPDF(t *testing.T) {
	svc, pdf := seed(t)
	ctx := context.Background()

	b, err := svc.CorporateReportPDF(ctx, "", access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-corp", string(b))
	require.NotNil(t, pdf.corporate)
	assert.Empty(t, pdf.corporate.OfficeName)
	assert.Len(t, pdf.corporate.Stock, 2)
	assert.Len(t, pdf.corporate.Holdings, 1)

	_, err = svc.CorporateReportPDF(ctx, "", access.Scope{OfficeID: "of-a"})
	require.NoError(t, err)
	assert.Equal(t, "Cali", pdf.corporate.OfficeName)
	assert.True(t, decimal.NewFromInt(300).Equal(pdf.corporate.TotalValue))

	_, err = svc.CorporateReportPDF(ctx, "of-b", access.Scope{OfficeID: "of-a"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestReceiptPDF(t *testing.T) {
	svc, pdf := seed(t)
	ctx := context.Background()

	_, err := svc.RequestReceiptPDF(ctx, "r-2", access.Scope{OfficeID: "of-a"})
	require.NoError(t, err)
	require.NotNil(t, pdf.receipt)
	assert.Equal(t, "Afiche", pdf.receipt.Material.Name)
	assert.Len(t, pdf.receipt.Deliveries, 1)

	_, err = svc.RequestReceiptPDF(ctx, "r-2", access.Scope{OfficeID: "of-b"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RequestReceiptPDF(ctx, "nope", access.Scope{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
