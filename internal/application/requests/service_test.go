package requests_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/notify"
	"github.com/jhoicas/materiales-api/internal/application/requests"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	svc        *requests.Service
	materials  *memory.MaterialRepo
	dispatcher *notify.Dispatcher
	events     *recorder
	office     *entity.Office
	material   *entity.Material
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	offices := memory.NewOfficeRepository(s)
	materials := memory.NewMaterialRepository(s)
	approvers := memory.NewApproverRepository(s)
	now := time.Now()

	office := &entity.Office{ID: "of-1", Name: "Oficina Norte", Email: "norte@example.com", IsActive: true, CreatedAt: now}
	material := &entity.Material{ID: "mat-1", Name: "Afiche", UnitValue: decimal.NewFromInt(1000), Available: stock, IsActive: true, CreatedAt: now}
	require.NoError(t, offices.Create(ctx, office))
	require.NoError(t, materials.Create(ctx, material))
	approvers.Put(&entity.Approver{ID: "apr-1", Name: "Aprobador", IsActive: true})

	rec := &recorder{}
	dispatcher := notify.NewDispatcher(rec, zerolog.Nop())
	svc := requests.NewService(requests.Deps{
		Tx:         memory.NewTxRunner(s),
		Requests:   memory.NewRequestRepository(s),
		Materials:  materials,
		Offices:    offices,
		Deliveries: memory.NewDeliveryRepository(s),
		Returns:    memory.NewReturnRepository(s),
		Users:      memory.NewUserRepository(s),
		Approvers:  approvers,
		Notifier:   dispatcher,
	})
	return &fixture{store: s, svc: svc, materials: materials, dispatcher: dispatcher, events: rec, office: office, material: material}
}

func (f *fixture) create(t *testing.T, qty int, pct int64) string {
	t.Helper()
	r, err := f.svc.Create(context.Background(), requests.CreateInput{
		OfficeID:      f.office.ID,
		MaterialID:    f.material.ID,
		Quantity:      qty,
		OfficePercent: decimal.NewFromInt(pct),
		Requester:     "usuario.norte",
	})
	require.NoError(t, err)
	return r.ID
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	m, err := f.materials.GetByID(context.Background(), f.material.ID)
	require.NoError(t, err)
	return m.Available
}

func TestCreate_Pending(t *testing.T) {
	f := newFixture(t, 10)
	r, err := f.svc.Create(context.Background(), requests.CreateInput{
		OfficeID: f.office.ID, MaterialID: f.material.ID, Quantity: 4, OfficePercent: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestPending), r.Status)
	assert.Equal(t, 10, f.stock(t), "crear no toca stock")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, requests.CreateInput{OfficeID: f.office.ID, MaterialID: f.material.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Create(ctx, requests.CreateInput{OfficeID: f.office.ID, MaterialID: f.material.ID, Quantity: 1, OfficePercent: decimal.NewFromInt(120)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Create(ctx, requests.CreateInput{OfficeID: "x", MaterialID: f.material.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_DecrementsStockAndSplitsValue(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 30)

	r, err := f.svc.Approve(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestApproved), r.Status)
	assert.Equal(t, 4, r.Delivered)
	assert.Equal(t, "apr-1", r.ApproverID)
	assert.True(t, r.TotalValue.Equal(decimal.NewFromInt(4000)))
	assert.True(t, r.OfficeValue.Equal(decimal.NewFromInt(1200)))
	assert.True(t, r.HeadquartersValue.Equal(decimal.NewFromInt(2800)))
	assert.Equal(t, 6, f.stock(t))

	deliveries, err := f.svc.Deliveries(ctx, id)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, 4, deliveries[0].Quantity)

	_, err = f.svc.Approve(ctx, id, "admin")
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
	assert.Equal(t, 6, f.stock(t))

	f.dispatcher.Wait()
	assert.Contains(t, f.events.kinds(), notify.RequestApproved)
}

func TestApprove_InsufficientStock(t *testing.T) {
	f := newFixture(t, 3)
	id := f.create(t, 4, 0)

	_, err := f.svc.Approve(context.Background(), id, "admin")
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Stock insuficiente. Disponible: 3, Solicitado: 4", se.Error())
	assert.Equal(t, 3, f.stock(t))

	r, err := f.svc.Get(context.Background(), id, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestPending), r.Status)
}

func TestApprove_RollsBackWhenDeliveryFails(t *testing.T) {
	f := newFixture(t, 10)
	id := f.create(t, 4, 0)
	f.store.FailOn("deliveries.create", errors.New("fallo de escritura"))

	_, err := f.svc.Approve(context.Background(), id, "admin")
	require.Error(t, err)
	f.store.FailOn("deliveries.create", nil)

	assert.Equal(t, 10, f.stock(t))
	r, err := f.svc.Get(context.Background(), id, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestPending), r.Status)
	assert.Zero(t, r.Delivered)
}

func TestApprove_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t, 10)
	id := f.create(t, 4, 0)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), id, "admin")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrRequestNotPending)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 6, f.stock(t))
}

func TestApprovePartial(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 5, 50)

	_, err := f.svc.ApprovePartial(ctx, id, "admin", 6)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.svc.ApprovePartial(ctx, id, "admin", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	r, err := f.svc.ApprovePartial(ctx, id, "admin", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Delivered)
	assert.Equal(t, 5, r.Requested)
	assert.Equal(t, 8, f.stock(t))

	_, err = f.svc.ApprovePartial(ctx, id, "admin", 1)
	assert.ErrorIs(t, err, domain.ErrOnlyPending)
}

func TestReject(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 0)

	r, err := f.svc.Reject(ctx, id, "admin", "sin presupuesto")
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestRejected), r.Status)
	assert.Equal(t, "sin presupuesto", r.Observation)
	assert.Equal(t, 10, f.stock(t))

	_, err = f.svc.Reject(ctx, id, "admin", "otra vez")
	assert.ErrorIs(t, err, domain.ErrOnlyPending)
}

func TestMarkDelivered(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 0)

	_, err := f.svc.MarkDelivered(ctx, id, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Approve(ctx, id, "admin")
	require.NoError(t, err)
	r, err := f.svc.MarkDelivered(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, int(entity.RequestDelivered), r.Status)
}

func TestRegisterReturn_RestoresStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 0)
	_, err := f.svc.Approve(ctx, id, "admin")
	require.NoError(t, err)

	res, err := f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 1, User: "norte"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, entity.RequestApproved, res.Status)
	assert.Equal(t, entity.ConditionGood, res.Return.Condition)
	assert.Equal(t, 7, f.stock(t))

	_, err = f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 4, User: "norte"})
	var le *domain.ReturnLimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Max)
	assert.Equal(t, "No puede devolver más de 3 unidades", le.Error())

	res, err = f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 3, User: "norte", Condition: "dañado"})
	require.NoError(t, err)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, entity.RequestReturned, res.Status)
	assert.Equal(t, 10, f.stock(t))

	info, err := f.svc.ReturnInfo(ctx, id)
	require.NoError(t, err)
	assert.False(t, info.CanReturn)
	assert.Equal(t, 4, info.Returned)
	assert.Zero(t, info.Returnable)

	returns, err := f.svc.ListReturns(ctx, id)
	require.NoError(t, err)
	assert.Len(t, returns, 2)
}

func TestRegisterReturn_Preconditions(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 0)

	_, err := f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: "nope", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotReturnable)

	_, err = f.svc.Approve(ctx, id, "admin")
	require.NoError(t, err)
	_, err = f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrReturnQuantity)
}

func TestRegisterReturn_RollsBackWhenStockUpdateFails(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 4, 0)
	_, err := f.svc.Approve(ctx, id, "admin")
	require.NoError(t, err)

	f.store.FailOn("materials.update_stock", errors.New("timeout"))
	_, err = f.svc.RegisterReturn(ctx, requests.ReturnInput{RequestID: id, Quantity: 2})
	require.Error(t, err)
	f.store.FailOn("materials.update_stock", nil)

	returns, err := f.svc.ListReturns(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, returns)
	assert.Equal(t, 6, f.stock(t))
}

func TestList_Scope(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := f.create(t, 1, 0)

	all, err := f.svc.List(ctx, repository.RequestFilter{}, access.Scope{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)

	other, err := f.svc.List(ctx, repository.RequestFilter{}, access.Scope{OfficeID: "otra"})
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	byName, err := f.svc.List(ctx, repository.RequestFilter{}, access.Scope{OfficeName: "Oficina Norte"})
	require.NoError(t, err)
	assert.Len(t, byName.Items, 1)

	denied, err := f.svc.List(ctx, repository.RequestFilter{}, access.Scope{Deny: true})
	require.NoError(t, err)
	assert.Empty(t, denied.Items)

	_, err = f.svc.Get(ctx, id, access.Scope{OfficeID: "otra"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestScope_NamedOffice(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	in := requests.CreateInput{OfficeID: f.office.ID, MaterialID: f.material.ID, Quantity: 1}

	in.Scope = access.Scope{OfficeName: "Oficina Sur"}
	_, err := f.svc.Create(ctx, in)
	require.ErrorIs(t, err, domain.ErrForbidden)

	in.Scope = access.Scope{OfficeName: "oficina norte"}
	r, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, r.ID, access.Scope{OfficeName: "Oficina Norte"})
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = f.svc.Get(ctx, r.ID, access.Scope{OfficeName: "Oficina Sur"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMaterialStats(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	a := f.create(t, 2, 0)
	f.create(t, 1, 0)
	_, err := f.svc.Approve(ctx, a, "admin")
	require.NoError(t, err)

	st, err := f.svc.MaterialStats(ctx, f.material.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 2, st.Delivered)
	assert.Equal(t, 1, st.ByStatus[entity.RequestPending.String()])
}
