package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

func TestAdjustStock_Entrada(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})
	uc := inventory.NewAdjustStockUseCase(e.ledger)

	mov, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeEntrada, Quantity: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, 24, mov.Quantity)
	assert.Equal(t, 34, mov.NewStock)
	assert.Equal(t, "Ajuste de inventario (entrada)", mov.Notes)
	assert.NotEmpty(t, mov.TransactionID)
	assert.Equal(t, 34, e.stock(t, "A"))
	assert.Equal(t, []recordedMovement{{entity.MovementTypeEntrada, 24}}, e.metrics.movements)
}

func TestAdjustStock_SalidaNeverClamps(t *testing.T) {
	// con la política floor activa, una salida manual mayor al stock igual se rechaza
	e := newEnv(t, nil, map[string]int{"A": 10})
	uc := inventory.NewAdjustStockUseCase(e.ledger)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeSalida, Quantity: 11,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, e.stock(t, "A"))

	mov, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeSalida, Quantity: 10, Notes: "merma",
	})
	require.NoError(t, err)
	assert.Equal(t, -10, mov.Quantity)
	assert.Equal(t, "merma", mov.Notes)
	assert.Equal(t, 0, e.stock(t, "A"))
}

func TestAdjustStock_AjusteSetsAbsoluteValue(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})
	uc := inventory.NewAdjustStockUseCase(e.ledger)

	mov, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeAjuste, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, -3, mov.Quantity)
	assert.Equal(t, 10, mov.PreviousStock)
	assert.Equal(t, 7, mov.NewStock)

	mov, err = uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeAjuste, Quantity: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mov.NewStock)
}

func TestAdjustStock_Validation(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})
	uc := inventory.NewAdjustStockUseCase(e.ledger)
	ctx := context.Background()

	cases := []inventory.AdjustStockInput{
		{Type: entity.MovementTypeEntrada, Quantity: 1},
		{ProductID: "A", Type: entity.MovementTypeEntrada, Quantity: 0},
		{ProductID: "A", Type: entity.MovementTypeSalida, Quantity: -1},
		{ProductID: "A", Type: entity.MovementTypeAjuste, Quantity: -1},
		{ProductID: "A", Type: entity.MovementTypeExit, Quantity: 1},
	}
	for _, in := range cases {
		_, err := uc.AdjustStock(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}

	_, err := uc.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "Z", Type: entity.MovementTypeEntrada, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
}

func TestAdjustStock_AjusteToCurrentValueIsNoop(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})
	uc := inventory.NewAdjustStockUseCase(e.ledger)

	mov, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeAjuste, Quantity: 10,
	})
	require.NoError(t, err)
	assert.Nil(t, mov)
	assert.Equal(t, 10, e.stock(t, "A"))
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
	assert.Empty(t, e.metrics.movements)
}

func TestAdjustStock_QuantityAboveLimit(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 5})
	uc := inventory.NewAdjustStockUseCase(e.ledger)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "A", Type: entity.MovementTypeEntrada, Quantity: entity.MaxQuantity + 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 5, e.stock(t, "A"))
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
}
