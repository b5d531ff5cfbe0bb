package corporate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/corporate"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

type fixture struct {
	store   *memory.Store
	svc     *corporate.Service
	officeA *entity.Office
	officeB *entity.Office
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	offices := memory.NewOfficeRepository(s)
	users := memory.NewUserRepository(s)
	now := time.Now()

	a := &entity.Office{ID: "of-a", Name: "Oficina A", Email: "a@example.com", IsActive: true, CreatedAt: now}
	b := &entity.Office{ID: "of-b", Name: "Oficina B", IsActive: true, CreatedAt: now}
	require.NoError(t, offices.Create(ctx, a))
	require.NoError(t, offices.Create(ctx, b))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u-1", Username: "lider", Role: "lider_inventario", IsActive: true, CreatedAt: now}))

	svc := corporate.NewService(corporate.Deps{
		Tx:          memory.NewTxRunner(s),
		Products:    memory.NewCorporateProductRepository(s),
		Assignments: memory.NewAssignmentRepository(s),
		Returns:     memory.NewCorporateReturnRepository(s),
		Transfers:   memory.NewTransferRepository(s),
		WriteOffs:   memory.NewWriteOffRepository(s),
		History:     memory.NewHistoryRepository(s),
		Offices:     offices,
		Users:       users,
	})
	return &fixture{store: s, svc: svc, officeA: a, officeB: b}
}

func (f *fixture) product(t *testing.T, stock int) *dto.CorporateProductResponse {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), dto.CreateCorporateProductRequest{
		Name:      "Portátil",
		UnitValue: decimal.NewFromInt(2500000),
		Available: stock,
	}, "lider")
	require.NoError(t, err)
	return p
}

func (f *fixture) balance(t *testing.T, productID string) dto.StockBalanceResponse {
	t.Helper()
	b, err := f.svc.StockBalance(context.Background(), productID, access.Scope{})
	require.NoError(t, err)
	return *b
}

func TestCreateProduct_GeneratesCode(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 5)

	assert.Regexp(t, `^CORP-[0-9A-F]{8}$`, p.Code)
	assert.True(t, p.IsActive)
	assert.Equal(t, 5, p.Available)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateProduct(context.Background(), dto.CreateCorporateProductRequest{Name: "  "}, "lider")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreateProduct(context.Background(), dto.CreateCorporateProductRequest{Name: "Silla", Available: -1}, "lider")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignToOffice_DecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)

	a, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 3, "lider")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AssignmentAssigned), a.State)
	assert.Equal(t, 3, a.Quantity)

	b := f.balance(t, p.ID)
	assert.Equal(t, 2, b.Available)
	assert.Equal(t, 3, b.Assigned)
	assert.Equal(t, 5, b.Total)

	hist, err := f.svc.History(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.HistoryAssign, hist[0].Action)
}

func TestAssignToOffice_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 2)

	_, err := f.svc.AssignToOffice(context.Background(), p.ID, f.officeA.ID, 3, "lider")
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 3, se.Requested)
	assert.Equal(t, 2, f.balance(t, p.ID).Available)
}

func TestAssignToOffice_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 2)

	_, err := f.svc.AssignToOffice(context.Background(), p.ID, f.officeA.ID, 0, "lider")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignToOffice_RollsBackOnHistoryFailure(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 5)
	f.store.FailOn("history.create", errors.New("disco lleno"))

	_, err := f.svc.AssignToOffice(context.Background(), p.ID, f.officeA.ID, 3, "lider")
	require.Error(t, err)

	f.store.FailOn("history.create", nil)
	b := f.balance(t, p.ID)
	assert.Equal(t, 5, b.Available)
	assert.Equal(t, 0, b.Assigned)
}

func TestTransfer_MovesAssignmentWithoutTouchingStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	src, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 3, "lider")
	require.NoError(t, err)

	tr, err := f.svc.RequestTransfer(ctx, corporate.TransferInput{
		ProductID: p.ID, FromOfficeID: f.officeA.ID, ToOfficeID: f.officeB.ID, Reason: "reubicación", Actor: "lider",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ResolutionPending), tr.State)
	assert.Equal(t, 3, tr.Quantity)

	approved, err := f.svc.ApproveTransfer(ctx, tr.ID, "admin", "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ResolutionApproved), approved.State)
	require.NotEmpty(t, approved.TargetAssignmentID)

	list, err := f.svc.Assignments(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.officeB.ID, list[0].OfficeID)
	assert.Equal(t, 3, list[0].Quantity)
	assert.Equal(t, string(entity.AssignmentAssigned), list[0].State)
	assert.NotEqual(t, src.ID, list[0].ID)

	b := f.balance(t, p.ID)
	assert.Equal(t, 2, b.Available)
	assert.Equal(t, 3, b.Assigned)

	_, err = f.svc.ApproveTransfer(ctx, tr.ID, "admin", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.EqualError(t, err, "Este traspaso ya fue aprobado")
}

func TestTransfer_SameOffice(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 5)
	_, err := f.svc.RequestTransfer(context.Background(), corporate.TransferInput{
		ProductID: p.ID, FromOfficeID: f.officeA.ID, ToOfficeID: f.officeA.ID,
	})
	assert.ErrorIs(t, err, domain.ErrSameOffice)
}

func TestTransfer_RequiresHolding(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 5)
	_, err := f.svc.RequestTransfer(context.Background(), corporate.TransferInput{
		ProductID: p.ID, FromOfficeID: f.officeA.ID, ToOfficeID: f.officeB.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	_, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 2, "lider")
	require.NoError(t, err)
	tr, err := f.svc.RequestTransfer(ctx, corporate.TransferInput{ProductID: p.ID, FromOfficeID: f.officeA.ID, ToOfficeID: f.officeB.ID})
	require.NoError(t, err)

	rejected, err := f.svc.RejectTransfer(ctx, tr.ID, "admin", "no procede")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ResolutionRejected), rejected.State)

	list, err := f.svc.Assignments(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.officeA.ID, list[0].OfficeID)
}

func TestReturn_ApproveCreditsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	_, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 3, "lider")
	require.NoError(t, err)

	r, err := f.svc.RequestReturn(ctx, corporate.ReturnInput{ProductID: p.ID, OfficeID: f.officeA.ID, Reason: "sobrante", Actor: "oficina"})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Quantity)

	_, err = f.svc.RequestReturn(ctx, corporate.ReturnInput{ProductID: p.ID, OfficeID: f.officeA.ID, Actor: "oficina"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	approved, err := f.svc.ApproveReturn(ctx, r.ID, "lider", "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ResolutionApproved), approved.State)

	b := f.balance(t, p.ID)
	assert.Equal(t, 5, b.Available)
	assert.Equal(t, 0, b.Assigned)

	returned, err := f.svc.ReturnedAwaitingWriteOff(ctx)
	require.NoError(t, err)
	require.Len(t, returned, 1)
	assert.Equal(t, string(entity.AssignmentReturned), returned[0].State)

	_, err = f.svc.RejectReturn(ctx, r.ID, "lider", "tarde")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestReturn_PartialSplitsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	_, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 3, "lider")
	require.NoError(t, err)

	r, err := f.svc.RequestReturn(ctx, corporate.ReturnInput{ProductID: p.ID, OfficeID: f.officeA.ID, Quantity: 1, Actor: "oficina"})
	require.NoError(t, err)
	_, err = f.svc.ApproveReturn(ctx, r.ID, "lider", "ok")
	require.NoError(t, err)

	b := f.balance(t, p.ID)
	assert.Equal(t, 3, b.Available)
	assert.Equal(t, 2, b.Assigned)
	assert.Equal(t, 5, b.Total)
}

func TestReturn_ExceedsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	_, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 2, "lider")
	require.NoError(t, err)

	_, err = f.svc.RequestReturn(ctx, corporate.ReturnInput{ProductID: p.ID, OfficeID: f.officeA.ID, Quantity: 4})
	var le *domain.ReturnLimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Max)
}

func TestWriteOff_OnlyFromReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5)
	a, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 3, "lider")
	require.NoError(t, err)

	err = f.svc.WriteOff(ctx, p.ID, a.ID, "dañado", "lider")
	var se *domain.StateError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "ASIGNADO", se.Current)

	r, err := f.svc.RequestReturn(ctx, corporate.ReturnInput{ProductID: p.ID, OfficeID: f.officeA.ID})
	require.NoError(t, err)
	_, err = f.svc.ApproveReturn(ctx, r.ID, "lider", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.WriteOff(ctx, p.ID, a.ID, "dañado", "lider"))
	returned, err := f.svc.ReturnedAwaitingWriteOff(ctx)
	require.NoError(t, err)
	assert.Empty(t, returned)
	assert.Equal(t, 5, f.balance(t, p.ID).Available)

	err = f.svc.WriteOff(ctx, p.ID, a.ID, "otra vez", "lider")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeactivateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 1)

	require.NoError(t, f.svc.DeactivateProduct(ctx, p.ID, "admin"))
	list, err := f.svc.ListProducts(ctx, access.Scope{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 1, "lider")
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestListProducts_OfficeScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	held := f.product(t, 3)
	f.product(t, 3)
	_, err := f.svc.AssignToOffice(ctx, held.ID, f.officeA.ID, 1, "lider")
	require.NoError(t, err)

	all, err := f.svc.ListProducts(ctx, access.Scope{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.svc.ListProducts(ctx, access.Scope{OfficeID: f.officeA.ID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, held.ID, own[0].ID)

	byName, err := f.svc.ListProducts(ctx, access.Scope{OfficeName: "Oficina B"})
	require.NoError(t, err)
	assert.Empty(t, byName)

	denied, err := f.svc.ListProducts(ctx, access.Scope{Deny: true})
	require.NoError(t, err)
	assert.Empty(t, denied)
}

func TestQueries_OfficeScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 10)
	_, err := f.svc.AssignToOffice(ctx, p.ID, f.officeA.ID, 2, "lider")
	require.NoError(t, err)
	_, err = f.svc.AssignToOffice(ctx, p.ID, f.officeB.ID, 3, "lider")
	require.NoError(t, err)

	all, err := f.svc.Assignments(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := f.svc.Assignments(ctx, p.ID, f.officeA.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, f.officeA.ID, onlyA[0].OfficeID)

	histB, err := f.svc.History(ctx, p.ID, f.officeB.ID)
	require.NoError(t, err)
	require.Len(t, histB, 1)
	assert.Equal(t, f.officeB.ID, histB[0].OfficeID)

	_, err = f.svc.StockBalance(ctx, p.ID, access.Scope{OfficeID: f.officeA.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
