package entity

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/candy-pos/internal/domain"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestOrder() *ExitOrder {
	return NewExitOrder("EO-20240315-001", "R1", "", "Ana", []ExitOrderItem{
		{ProductID: "A", ProductName: "Chocolatina", Quantity: 30, Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(1)},
		{ProductID: "B", ProductName: "Gomitas", Quantity: 10, Price: decimal.RequireFromString("1.5"), Cost: decimal.NewFromInt(1), Sold: 4},
	}, testNow)
}

func TestNewExitOrder_TotalsAndDefaults(t *testing.T) {
	o := newTestOrder()

	assert.Equal(t, ExitOrderStatusActive, o.Status)
	assert.Equal(t, "R1", o.RouteName, "route name defaults to route id")
	assert.Equal(t, "2024-03-15", o.Date)
	assert.Equal(t, 40, o.TotalItems)
	assert.True(t, o.TotalValue.Equal(decimal.NewFromInt(75)), "30*2 + 10*1.5")
	assert.True(t, o.TotalCost.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 0, o.SoldItems, "sold is reset on creation")
	assert.True(t, o.SoldValue.IsZero())
	assert.Equal(t, 40, o.RemainingItems())
}

func TestApplySales_AccumulatesAndRecomputes(t *testing.T) {
	o := newTestOrder()

	require.NoError(t, o.ApplySales([]SaleLine{{ProductID: "A", Quantity: 5}, {ProductID: "A", Quantity: 3}}, testNow))
	require.NoError(t, o.ApplySales([]SaleLine{{ProductID: "B", Quantity: 10}}, testNow))

	assert.Equal(t, 8, o.Items[0].Sold)
	assert.Equal(t, 22, o.Items[0].Remaining())
	assert.Equal(t, 0, o.Items[1].Remaining())
	assert.Equal(t, 18, o.SoldItems)
	assert.True(t, o.SoldValue.Equal(decimal.NewFromInt(31)), "8*2 + 10*1.5")
	assert.Equal(t, 45, o.Progress())
}

func TestApplySales_AllOrNothing(t *testing.T) {
	o := newTestOrder()

	err := o.ApplySales([]SaleLine{{ProductID: "A", Quantity: 5}, {ProductID: "B", Quantity: 11}}, testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientRemaining)
	assert.Equal(t, 0, o.SoldItems)
	assert.Equal(t, 0, o.Items[0].Sold)

	// repetidas se suman antes de comparar contra remaining
	err = o.ApplySales([]SaleLine{{ProductID: "B", Quantity: 6}, {ProductID: "B", Quantity: 5}}, testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientRemaining)
	assert.Equal(t, 0, o.Items[1].Sold)
}

func TestApplySales_Validation(t *testing.T) {
	o := newTestOrder()

	assert.ErrorIs(t, o.ApplySales(nil, testNow), domain.ErrInvalidInput)
	assert.ErrorIs(t, o.ApplySales([]SaleLine{{ProductID: "A", Quantity: 0}}, testNow), domain.ErrInvalidInput)
	assert.ErrorIs(t, o.ApplySales([]SaleLine{{ProductID: "A", Quantity: -2}}, testNow), domain.ErrInvalidInput)
	assert.ErrorIs(t, o.ApplySales([]SaleLine{{ProductID: "Z", Quantity: 1}}, testNow), domain.ErrInvalidInput)
}

func TestComplete_TerminalState(t *testing.T) {
	o := newTestOrder()
	later := testNow.Add(8 * time.Hour)

	require.NoError(t, o.Complete(later))
	assert.Equal(t, ExitOrderStatusCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)
	assert.Equal(t, later, *o.CompletedAt)

	assert.ErrorIs(t, o.Complete(later), domain.ErrOrderNotActive)
	assert.ErrorIs(t, o.Cancel(later), domain.ErrOrderNotActive)
	assert.ErrorIs(t, o.ApplySales([]SaleLine{{ProductID: "A", Quantity: 1}}, later), domain.ErrOrderNotActive)
}

func TestCancel_RejectedWithSales(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.ApplySales([]SaleLine{{ProductID: "A", Quantity: 1}}, testNow))

	assert.ErrorIs(t, o.Cancel(testNow), domain.ErrCancellationNotAllowed)
	assert.True(t, o.IsActive())
	assert.Nil(t, o.CancelledAt)
}

func TestReturnLines(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.ApplySales([]SaleLine{{ProductID: "B", Quantity: 10}, {ProductID: "A", Quantity: 12}}, testNow))

	assert.Equal(t, []ReturnLine{{ProductID: "A", ProductName: "Chocolatina", Quantity: 18}}, o.ReturnLines(false),
		"fully sold lines return nothing")
	assert.Equal(t, []ReturnLine{
		{ProductID: "A", ProductName: "Chocolatina", Quantity: 30},
		{ProductID: "B", ProductName: "Gomitas", Quantity: 10},
	}, o.ReturnLines(true))
}

func TestClone_IsDeep(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.Complete(testNow))

	c := o.Clone()
	c.Items[0].Sold = 7
	*c.CompletedAt = testNow.Add(time.Hour)

	assert.Equal(t, 0, o.Items[0].Sold)
	assert.Equal(t, testNow, *o.CompletedAt)
}

func TestExitOrderFilter_Matches(t *testing.T) {
	o := newTestOrder()

	assert.True(t, ExitOrderFilter{}.Matches(o))
	assert.True(t, ExitOrderFilter{Status: "active", RouteID: "R1", Date: "2024-03-15"}.Matches(o))
	assert.False(t, ExitOrderFilter{Status: "completed"}.Matches(o))
	assert.False(t, ExitOrderFilter{RouteID: "R2"}.Matches(o))
	assert.False(t, ExitOrderFilter{Date: "2024-03-16"}.Matches(o))
}

func TestProgress_EmptyOrder(t *testing.T) {
	assert.Equal(t, 0, (&ExitOrder{}).Progress())
}

func TestApplySales_HugeRepeatedLinesDoNotWrap(t *testing.T) {
	o := newTestOrder()

	err := o.ApplySales([]SaleLine{{ProductID: "B", Quantity: math.MaxInt}, {ProductID: "B", Quantity: math.MaxInt}}, testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientRemaining)
	assert.Equal(t, 4, o.Items[1].Sold)
	assert.Equal(t, 6, o.Items[1].Remaining())
	assert.Equal(t, 4, o.SoldItems)

	err = o.ApplySales([]SaleLine{{ProductID: "B", Quantity: 6}, {ProductID: "B", Quantity: math.MaxInt}}, testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientRemaining)
	assert.Equal(t, 4, o.Items[1].Sold)
}

func TestIsMoney(t *testing.T) {
	assert.True(t, IsMoney(decimal.RequireFromString("2.50")))
	assert.True(t, IsMoney(decimal.RequireFromString("1.500")))
	assert.True(t, IsMoney(decimal.NewFromInt(3)))
	assert.False(t, IsMoney(decimal.RequireFromString("0.333")))
}
