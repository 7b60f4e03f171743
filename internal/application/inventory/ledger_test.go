package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/candy-pos/internal/domain/inventory"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
	"github.com/jhoicas/candy-pos/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type recordedMovement struct {
	Type     string
	Quantity int
}

type fakeMetrics struct {
	mu        sync.Mutex
	movements []recordedMovement
}

func (m *fakeMetrics) ObserveOperation(string, error, time.Duration) {}

func (m *fakeMetrics) MovementRecorded(movementType string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, recordedMovement{movementType, quantity})
}

type env struct {
	store   *memory.Store
	ledger  *inventory.Ledger
	metrics *fakeMetrics
}

func newEnv(t *testing.T, policy domaininv.StockPolicy, stock map[string]int) *env {
	t.Helper()
	store := memory.NewStore()
	for id, qty := range stock {
		require.NoError(t, store.Repos().Products.Create(context.Background(), &entity.Product{
			ID: id, Name: "Producto " + id, Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(1), Stock: qty,
		}))
	}
	m := &fakeMetrics{}
	repos := store.Repos()
	ledger := inventory.NewLedger(
		store, repos.Products, repos.Movements,
		sequence.NewGenerator(memory.NewCounterRepository()),
		policy, m, zerolog.Nop(),
	).WithClock(func() time.Time { return fixedNow })
	return &env{store: store, ledger: ledger, metrics: m}
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	n, err := e.ledger.GetStock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (e *env) movements(t *testing.T, filter entity.StockMovementFilter) []*entity.StockMovement {
	t.Helper()
	list, err := e.ledger.ListMovements(context.Background(), filter, 0, 0)
	require.NoError(t, err)
	return list
}

func TestGetStock_NotFound(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, err := e.ledger.GetStock(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_FloorClampsAndRecordsRequestedDelta(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})

	got, err := e.ledger.AdjustStock(context.Background(), inventory.StockDelta{
		ProductID: "A", Type: entity.MovementTypeExit, Delta: -30, Notes: "salida a ruta",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, e.stock(t, "A"))

	movs := e.movements(t, entity.StockMovementFilter{ProductID: "A"})
	require.Len(t, movs, 1)
	m := movs[0]
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, -30, m.Quantity)
	assert.Equal(t, 10, m.PreviousStock)
	assert.Equal(t, 0, m.NewStock)
	assert.Equal(t, "Producto A", m.ProductName)
	assert.Equal(t, fixedNow, m.Date)
	assert.NotEmpty(t, m.TransactionID)
	assert.Equal(t, []recordedMovement{{entity.MovementTypeExit, -30}}, e.metrics.movements)
}

func TestAdjustStock_RejectPolicyWritesNothing(t *testing.T) {
	e := newEnv(t, domaininv.RejectInsufficient, map[string]int{"A": 10})

	_, err := e.ledger.AdjustStock(context.Background(), inventory.StockDelta{
		ProductID: "A", Type: entity.MovementTypeExit, Delta: -11,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, e.stock(t, "A"))
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
}

func TestAdjustStock_UnknownProductAndType(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})

	_, err := e.ledger.AdjustStock(context.Background(), inventory.StockDelta{ProductID: "Z", Type: entity.MovementTypeReturn, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.ledger.AdjustStock(context.Background(), inventory.StockDelta{ProductID: "A", Type: "robo", Delta: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, e.stock(t, "A"))
}

func TestAtomicStockTransition_FailureRollsBackEarlierDeltas(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10, "B": 5})

	_, err := e.ledger.AtomicStockTransition(context.Background(), func(context.Context, inventory.Repos) (*inventory.StockTransition, error) {
		return &inventory.StockTransition{Deltas: []inventory.StockDelta{
			{ProductID: "A", Type: entity.MovementTypeExit, Delta: -4},
			{ProductID: "B", Type: entity.MovementTypeExit, Delta: -1},
			{ProductID: "Z", Type: entity.MovementTypeExit, Delta: -1},
		}}, nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 10, e.stock(t, "A"))
	assert.Equal(t, 5, e.stock(t, "B"))
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
	assert.Empty(t, e.metrics.movements)
}

func TestAtomicStockTransition_OrderMutationFailureRollsBackStock(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10})
	boom := errors.New("disk full")

	_, err := e.ledger.AtomicStockTransition(context.Background(), func(context.Context, inventory.Repos) (*inventory.StockTransition, error) {
		return &inventory.StockTransition{
			Deltas: []inventory.StockDelta{{ProductID: "A", Type: entity.MovementTypeExit, Delta: -4}},
			Order:  func(context.Context, repository.ExitOrderRepository) error { return boom },
		}, nil
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable, "non-domain failures surface as store errors")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, e.stock(t, "A"))
}

func TestAtomicStockTransition_SharedTransactionIDAndSkipMissing(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 1, "B": 1})

	movs, err := e.ledger.AtomicStockTransition(context.Background(), func(context.Context, inventory.Repos) (*inventory.StockTransition, error) {
		return &inventory.StockTransition{Deltas: []inventory.StockDelta{
			{ProductID: "A", Type: entity.MovementTypeReturn, Delta: 3},
			{ProductID: "gone", Type: entity.MovementTypeReturn, Delta: 3, SkipMissing: true},
			{ProductID: "B", Type: entity.MovementTypeReturn, Delta: 2},
		}}, nil
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID)
	assert.Equal(t, 4, e.stock(t, "A"))
	assert.Equal(t, 3, e.stock(t, "B"))
}

func TestListMovements_InvalidType(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, err := e.ledger.ListMovements(context.Background(), entity.StockMovementFilter{Type: "robo"}, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_OverflowingEntradaWritesNothing(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 5})

	_, err := e.ledger.AdjustStock(context.Background(), inventory.StockDelta{
		ProductID: "A", Type: entity.MovementTypeEntrada, Delta: math.MaxInt,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 5, e.stock(t, "A"))
	assert.Empty(t, e.movements(t, entity.StockMovementFilter{}))
}

func TestAtomicStockTransition_AppliesDeltasInProductOrder(t *testing.T) {
	e := newEnv(t, nil, map[string]int{"A": 10, "B": 10, "C": 10})

	movs, err := e.ledger.AtomicStockTransition(context.Background(), func(context.Context, inventory.Repos) (*inventory.StockTransition, error) {
		return &inventory.StockTransition{Deltas: []inventory.StockDelta{
			{ProductID: "C", Type: entity.MovementTypeExit, Delta: -1},
			{ProductID: "A", Type: entity.MovementTypeExit, Delta: -2},
			{ProductID: "B", Type: entity.MovementTypeExit, Delta: -3},
		}}, nil
	})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{movs[0].ProductID, movs[1].ProductID, movs[2].ProductID})
	assert.Equal(t, []int64{1, 2, 3}, []int64{movs[0].ID, movs[1].ID, movs[2].ID})
}

// txCounterStore entrega contadores propios en cada transacción, como hace el runner de PostgreSQL.
type txCounterStore struct {
	*memory.Store
	counters repository.CounterRepository
}

func (s txCounterStore) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return s.Store.Run(ctx, func(repos inventory.Repos) error {
		repos.Counters = s.counters
		return fn(repos)
	})
}

func TestAtomicStockTransition_UsesTransactionCounters(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Repos().Products.Create(ctx, &entity.Product{ID: "A", Name: "Producto A", Stock: 10}))

	outside := memory.NewCounterRepository()
	_, err := outside.Increment(ctx, sequence.CounterMovement, 100)
	require.NoError(t, err)
	runner := txCounterStore{Store: store, counters: memory.NewCounterRepository()}
	repos := store.Repos()
	ledger := inventory.NewLedger(runner, repos.Products, repos.Movements, sequence.NewGenerator(outside), nil, nil, zerolog.Nop())

	movs, err := ledger.AtomicStockTransition(ctx, func(context.Context, inventory.Repos) (*inventory.StockTransition, error) {
		return &inventory.StockTransition{Deltas: []inventory.StockDelta{{ProductID: "A", Type: entity.MovementTypeExit, Delta: -1}}}, nil
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(1), movs[0].ID)

	untouched, err := outside.Increment(ctx, sequence.CounterMovement, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), untouched)
}
