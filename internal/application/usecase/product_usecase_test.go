package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/application/usecase"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
	"github.com/jhoicas/candy-pos/internal/infrastructure/memory"
)

func newProductUseCase(t *testing.T) (*usecase.ProductUseCase, *inventory.Ledger) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ledger := inventory.NewLedger(store, repos.Products, repos.Movements,
		sequence.NewGenerator(memory.NewCounterRepository()), nil, nil, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })
	return usecase.NewProductUseCase(repos.Products, ledger), ledger
}

func TestProductCreate_InitialStockIsAMovement(t *testing.T) {
	uc, ledger := newProductUseCase(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		Name: "  Chocolatina  ", Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(1), InitialStock: 40, MinStock: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Chocolatina", p.Name)
	assert.Equal(t, 40, p.Stock)
	assert.False(t, p.LowStock)

	stock, err := ledger.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stock)

	movs, err := ledger.ListMovements(ctx, entity.StockMovementFilter{ProductID: p.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.Equal(t, 0, movs[0].PreviousStock)
	assert.Equal(t, 40, movs[0].NewStock)
}

func TestProductCreate_ZeroStockWritesNoMovement(t *testing.T) {
	uc, ledger := newProductUseCase(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{ID: "gum", Name: "Chicle", MinStock: 1})
	require.NoError(t, err)
	assert.Equal(t, "gum", p.ID)
	assert.True(t, p.LowStock)

	movs, err := ledger.ListMovements(ctx, entity.StockMovementFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProductCreate_Errors(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", InitialStock: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.RequireFromString("0.333")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", InitialStock: 1_000_001})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{ID: "dup", Name: "x", InitialStock: 5})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{ID: "dup", Name: "y", InitialStock: 5})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_DefaultPage(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	for _, name := range []string{"C", "A", "B"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Name: name})
		require.NoError(t, err)
	}

	page, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50, page.Page.Limit)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "A", page.Items[0].Name)
}
