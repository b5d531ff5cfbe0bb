package novelty_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/novelty"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

type fixture struct {
	svc      *novelty.Service
	requests *requests.Service
	store    *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	offices := memory.NewOfficeRepository(s)
	materials := memory.NewMaterialRepository(s)
	requestRepo := memory.NewRequestRepository(s)
	tx := memory.NewTxRunner(s)
	now := time.Now()

	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-1", Name: "Oficina Sur", IsActive: true, CreatedAt: now}))
	require.NoError(t, materials.Create(ctx, &entity.Material{ID: "mat-1", Name: "Pendón", UnitValue: decimal.NewFromInt(500), Available: 20, IsActive: true, CreatedAt: now}))

	reqSvc := requests.NewService(requests.Deps{
		Tx:         tx,
		Requests:   requestRepo,
		Materials:  materials,
		Offices:    offices,
		Deliveries: memory.NewDeliveryRepository(s),
		Returns:    memory.NewReturnRepository(s),
	})
	svc := novelty.NewService(tx, memory.NewNoveltyRepository(s), requestRepo, offices, nil)
	return &fixture{svc: svc, requests: reqSvc, store: s}
}

func (f *fixture) deliveredRequest(t *testing.T, qty int) string {
	t.Helper()
	ctx := context.Background()
	r, err := f.requests.Create(ctx, requests.CreateInput{OfficeID: "of-1", MaterialID: "mat-1", Quantity: qty})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, r.ID, "admin")
	require.NoError(t, err)
	return r.ID
}

func TestPriority(t *testing.T) {
	cases := map[string]string{
		"Robo":               novelty.PriorityHigh,
		"PERDIDA total":      novelty.PriorityHigh,
		"Pérdida":            novelty.PriorityHigh,
		"Daño en transporte": novelty.PriorityMedium,
		"averia":             novelty.PriorityMedium,
		"Faltante":           novelty.PriorityLow,
		"":                   novelty.PriorityLow,
	}
	for in, want := range cases {
		assert.Equal(t, want, novelty.Priority(in), in)
	}
}

func TestParseAction(t *testing.T) {
	ok, err := novelty.ParseAction("Aceptar")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = novelty.ParseAction("rechazar")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = novelty.ParseAction("borrar")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReport_MarksRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 5)

	n, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "caja mojada", AffectedQty: 2, ReportedBy: "sur"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.NoveltyPending), n.Status)
	assert.Equal(t, novelty.PriorityMedium, n.Priority)

	r, err := f.requests.Get(ctx, reqID, access.Scope{})
	require.NoError(t, err)
	assert.True(t, r.HasNovelty)
	assert.Equal(t, int(entity.RequestApproved), r.Status)
}

func TestReport_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 2)

	_, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "x", AffectedQty: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "x", AffectedQty: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Report(ctx, novelty.ReportInput{RequestID: "nope", Type: "Daño", Description: "x", AffectedQty: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := f.requests.Create(ctx, requests.CreateInput{OfficeID: "of-1", MaterialID: "mat-1", Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.Report(ctx, novelty.ReportInput{RequestID: pending.ID, Type: "Daño", Description: "x", AffectedQty: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestResolve_AcceptAndReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acceptedReq := f.deliveredRequest(t, 3)
	rejectedReq := f.deliveredRequest(t, 3)

	n1, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: acceptedReq, Type: "Robo", Description: "bodega", AffectedQty: 3})
	require.NoError(t, err)
	n2, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: rejectedReq, Type: "Faltante", Description: "conteo", AffectedQty: 1})
	require.NoError(t, err)

	res, err := f.svc.Resolve(ctx, n1.ID, true, "lider", "se repone")
	require.NoError(t, err)
	assert.Equal(t, string(entity.NoveltyAccepted), res.Status)
	require.NotNil(t, res.ResolvedAt)

	_, err = f.svc.Resolve(ctx, n2.ID, false, "lider", "no procede")
	require.NoError(t, err)

	r1, err := f.requests.Get(ctx, acceptedReq, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestNoveltyAccepted), r1.Status)
	r2, err := f.requests.Get(ctx, rejectedReq, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestNoveltyRejected), r2.Status)

	_, err = f.svc.Resolve(ctx, n1.ID, false, "lider", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 2, st.Resolved)
	assert.Equal(t, 1, st.Accepted)

	types, err := f.svc.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Faltante", "Robo"}, types)
}

func TestResolve_RollsBackWhenRequestUpdateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 3)
	n, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "x", AffectedQty: 1})
	require.NoError(t, err)

	f.store.FailOn("requests.update", domain.ErrConnection)
	_, err = f.svc.Resolve(ctx, n.ID, true, "lider", "")
	require.ErrorIs(t, err, domain.ErrConnection)
	f.store.FailOn("requests.update", nil)

	got, err := f.svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.NoveltyPending), got.Status)
}

func TestList_ScopeAndPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 3)
	_, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "x", AffectedQty: 1})
	require.NoError(t, err)

	pending, err := f.svc.Pending(ctx, access.Scope{})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	own, err := f.svc.List(ctx, "", access.Scope{OfficeID: "of-1"})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	byName, err := f.svc.List(ctx, "", access.Scope{OfficeName: "Oficina Sur"})
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	other, err := f.svc.List(ctx, "", access.Scope{OfficeID: "of-2"})
	require.NoError(t, err)
	assert.Empty(t, other)

	byReq, err := f.svc.ByRequest(ctx, reqID)
	require.NoError(t, err)
	assert.Len(t, byReq, 1)
}

func TestResolve_SecondNoveltyAfterRequestClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 4)

	first, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "caja rota", AffectedQty: 1})
	require.NoError(t, err)
	second, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Faltante", Description: "conteo", AffectedQty: 1})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, first.ID, true, "lider", "")
	require.NoError(t, err)

	res, err := f.svc.Resolve(ctx, second.ID, false, "lider", "no procede")
	require.NoError(t, err)
	assert.Equal(t, string(entity.NoveltyRejected), res.Status)

	r, err := f.requests.Get(ctx, reqID, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestNoveltyAccepted), r.Status)

	pending, err := f.svc.Pending(ctx, access.Scope{})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResolve_AfterFullReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.deliveredRequest(t, 3)

	n, err := f.svc.Report(ctx, novelty.ReportInput{RequestID: reqID, Type: "Daño", Description: "x", AffectedQty: 1})
	require.NoError(t, err)
	_, err = f.requests.RegisterReturn(ctx, requests.ReturnInput{RequestID: reqID, Quantity: 3, User: "sur"})
	require.NoError(t, err)

	res, err := f.svc.Resolve(ctx, n.ID, true, "lider", "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.NoveltyAccepted), res.Status)

	r, err := f.requests.Get(ctx, reqID, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestReturned), r.Status)
}

func TestReport_StateMessageNamesBothStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := f.requests.Create(ctx, requests.CreateInput{OfficeID: "of-1", MaterialID: "mat-1", Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.Report(ctx, novelty.ReportInput{RequestID: pending.ID, Type: "Daño", Description: "x", AffectedQty: 1})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), entity.RequestApproved.String())
	assert.Contains(t, err.Error(), entity.RequestDelivered.String())
}
