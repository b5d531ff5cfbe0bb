package loans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/loans"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/access"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

func setup(t *testing.T, stock int) (*loans.Service, *memory.MaterialRepo, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	offices := memory.NewOfficeRepository(s)
	materials := memory.NewMaterialRepository(s)
	require.NoError(t, offices.Create(ctx, &entity.Office{ID: "of-1", Name: "Oficina Centro", IsActive: true, CreatedAt: time.Now()}))
	require.NoError(t, materials.Create(ctx, &entity.Material{ID: "mat-1", Name: "Carpa", UnitValue: decimal.NewFromInt(90000), Available: stock, IsActive: true}))
	svc := loans.NewService(memory.NewTxRunner(s), memory.NewLoanRepository(s), materials, offices, nil)
	return svc, materials, s
}

func stockOf(t *testing.T, m *memory.MaterialRepo) int {
	t.Helper()
	got, err := m.GetByID(context.Background(), "mat-1")
	require.NoError(t, err)
	return got.Available
}

func TestLoanLifecycle(t *testing.T) {
	svc, materials, _ := setup(t, 5)
	ctx := context.Background()

	l, err := svc.Create(ctx, dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 3}, "centro", access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanPending), l.Status)
	assert.Equal(t, 5, stockOf(t, materials))

	l, err = svc.Approve(ctx, l.ID, "lider")
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanApproved), l.Status)
	assert.Equal(t, 2, stockOf(t, materials))

	l, err = svc.RegisterReturn(ctx, l.ID, 1, "centro")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Outstanding)
	assert.Equal(t, 3, stockOf(t, materials))

	_, err = svc.RegisterReturn(ctx, l.ID, 3, "centro")
	var le *domain.ReturnLimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Max)

	l, err = svc.RegisterReturn(ctx, l.ID, 2, "centro")
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanReturned), l.Status)
	assert.Equal(t, 5, stockOf(t, materials))

	_, err = svc.RegisterReturn(ctx, l.ID, 1, "centro")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApprove_InsufficientStock(t *testing.T) {
	svc, materials, _ := setup(t, 1)
	ctx := context.Background()
	l, err := svc.Create(ctx, dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 2}, "centro", access.Scope{})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, l.ID, "lider")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, stockOf(t, materials))
}

func TestApprove_RollsBackOnStockFailure(t *testing.T) {
	svc, materials, s := setup(t, 5)
	ctx := context.Background()
	l, err := svc.Create(ctx, dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 2}, "centro", access.Scope{})
	require.NoError(t, err)

	s.FailOn("materials.update_stock", errors.New("timeout"))
	_, err = svc.Approve(ctx, l.ID, "lider")
	require.Error(t, err)
	s.FailOn("materials.update_stock", nil)

	got, err := svc.Get(ctx, l.ID, access.Scope{})
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanPending), got.Status)
	assert.Equal(t, 5, stockOf(t, materials))
}

func TestReject_OnlyPending(t *testing.T) {
	svc, _, _ := setup(t, 5)
	ctx := context.Background()
	l, err := svc.Create(ctx, dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 1}, "centro", access.Scope{})
	require.NoError(t, err)

	r, err := svc.Reject(ctx, l.ID, "lider", "no disponible")
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanRejected), r.Status)

	_, err = svc.Approve(ctx, l.ID, "lider")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestList_Scope(t *testing.T) {
	svc, _, _ := setup(t, 5)
	ctx := context.Background()
	_, err := svc.Create(ctx, dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 1}, "centro", access.Scope{})
	require.NoError(t, err)

	all, err := svc.List(ctx, "", access.Scope{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := svc.List(ctx, "", access.Scope{OfficeID: "of-2"})
	require.NoError(t, err)
	assert.Empty(t, none)

	pending, err := svc.List(ctx, entity.LoanPending, access.Scope{OfficeName: "Oficina Centro"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCreate_Scope(t *testing.T) {
	svc, _, _ := setup(t, 5)
	ctx := context.Background()
	in := dto.CreateLoanRequest{MaterialID: "mat-1", OfficeID: "of-1", Quantity: 1}

	_, err := svc.Create(ctx, in, "sur", access.Scope{OfficeID: "of-2"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Create(ctx, in, "sur", access.Scope{OfficeName: "Oficina Sur"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	l, err := svc.Create(ctx, in, "centro", access.Scope{OfficeName: "Oficina Centro"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, l.ID, access.Scope{OfficeName: "Oficina Centro"})
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
	_, err = svc.Get(ctx, l.ID, access.Scope{OfficeName: "Oficina Sur"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
