package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/candy-pos/internal/application/ports"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/candy-pos/internal/domain/inventory"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
)

// StockDelta un cambio de stock de bodega con su causa; cada delta aplicado deja un movimiento.
type StockDelta struct {
	ProductID   string
	ProductName string
	Type        string // entity.MovementType*
	Delta       int
	Notes       string
	ExitOrderID string
	// SkipMissing ignora (con warning) un producto que ya no existe en el catálogo
	// en lugar de abortar la transición.
	SkipMissing bool
}

// StockTransition lo que una transición atómica escribe: primero los deltas con sus movimientos,
// al final la mutación de la orden. Si el proceso cae a mitad de camino, el stock ya quedó
// ajustado y la orden sigue activa, lo que se puede conciliar a mano.
type StockTransition struct {
	Deltas []StockDelta
	Order  func(ctx context.Context, orders repository.ExitOrderRepository) error
}

// Ledger es el dueño del stock por producto: toda mutación pasa por aquí y queda registrada
// en el log de movimientos dentro de la misma transacción.
type Ledger struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	seq       *sequence.Generator
	policy    domaininv.StockPolicy
	metrics   ports.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger construye el ledger. policy nil equivale a domaininv.ClampNonNegative.
func NewLedger(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	seq *sequence.Generator,
	policy domaininv.StockPolicy,
	metrics ports.Metrics,
	log zerolog.Logger,
) *Ledger {
	if policy == nil {
		policy = domaininv.ClampNonNegative
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Ledger{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		seq:       seq,
		policy:    policy,
		metrics:   metrics,
		log:       log.With().Str("component", "stock_ledger").Logger(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Now hora actual según el reloj del ledger.
func (l *Ledger) Now() time.Time { return l.now() }

// GetStock devuelve el stock actual de un producto; domain.ErrNotFound si no existe.
func (l *Ledger) GetStock(ctx context.Context, productID string) (int, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return 0, domain.WrapStoreError(err)
	}
	if p == nil {
		return 0, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return p.Stock, nil
}

// AdjustStock aplica un delta con la política configurada y registra el movimiento en una sola transacción.
// Devuelve el stock resultante.
func (l *Ledger) AdjustStock(ctx context.Context, d StockDelta) (int, error) {
	movs, err := l.AtomicStockTransition(ctx, func(context.Context, Repos) (*StockTransition, error) {
		return &StockTransition{Deltas: []StockDelta{d}}, nil
	})
	if err != nil {
		return 0, err
	}
	return movs[0].NewStock, nil
}

// AtomicStockTransition ejecuta prepare y aplica la transición resultante en una sola transacción.
// prepare corre dentro de la tx (puede bloquear y validar la orden); si cualquier paso falla
// no queda nada escrito. Los deltas se aplican ordenados por producto para que dos transiciones
// concurrentes tomen los locks de fila en el mismo orden. Devuelve los movimientos agregados al log.
func (l *Ledger) AtomicStockTransition(
	ctx context.Context,
	prepare func(ctx context.Context, repos Repos) (*StockTransition, error),
) ([]*entity.StockMovement, error) {
	txID := uuid.New().String()
	var movements []*entity.StockMovement

	err := l.txRunner.Run(ctx, func(repos Repos) error {
		movements = movements[:0]
		t, err := prepare(ctx, repos)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		deltas := append([]StockDelta(nil), t.Deltas...)
		sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].ProductID < deltas[j].ProductID })
		for _, d := range deltas {
			mov, err := l.apply(ctx, repos, txID, d, l.policy)
			if err != nil {
				return err
			}
			if mov != nil {
				movements = append(movements, mov)
			}
		}
		if t.Order != nil {
			return t.Order(ctx, repos.ExitOrders)
		}
		return nil
	})
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	for _, m := range movements {
		l.metrics.MovementRecorded(m.Type, m.Quantity)
	}
	return movements, nil
}

// apply bloquea el producto, calcula el nuevo stock con policy, lo persiste y agrega el movimiento.
func (l *Ledger) apply(
	ctx context.Context,
	repos Repos,
	txID string,
	d StockDelta,
	policy domaininv.StockPolicy,
) (*entity.StockMovement, error) {
	if !entity.IsValidMovementType(d.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, d.Type)
	}
	product, err := repos.Products.GetForUpdate(ctx, d.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		if d.SkipMissing {
			l.log.Warn().
				Str("product_id", d.ProductID).
				Str("exit_order_id", d.ExitOrderID).
				Int("delta", d.Delta).
				Msg("producto inexistente, se omite el ajuste de stock")
			return nil, nil
		}
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, d.ProductID)
	}

	next, err := policy(product.Stock, d.Delta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", product.Name, err)
	}
	if next != product.Stock+d.Delta {
		l.log.Warn().
			Str("product_id", product.ID).
			Int("stock", product.Stock).
			Int("delta", d.Delta).
			Msg("stock insuficiente, se recorta a cero")
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, err
	}

	id, err := l.sequenceFor(repos).NextMovementID(ctx)
	if err != nil {
		return nil, err
	}
	name := d.ProductName
	if name == "" {
		name = product.Name
	}
	mov := &entity.StockMovement{
		ID:            id,
		TransactionID: txID,
		ProductID:     product.ID,
		ProductName:   name,
		Type:          d.Type,
		Quantity:      d.Delta,
		PreviousStock: product.Stock,
		NewStock:      next,
		Notes:         d.Notes,
		Date:          l.now(),
		ExitOrderID:   d.ExitOrderID,
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// sequenceFor usa los contadores de la transacción cuando el almacén los ofrece, así el ID se
// toma sobre la misma conexión en lugar de pedir otra al pool mientras se retienen los locks.
func (l *Ledger) sequenceFor(repos Repos) *sequence.Generator {
	if repos.Counters != nil {
		return sequence.NewGenerator(repos.Counters)
	}
	return l.seq
}

// ListMovements historial del log, del más reciente al más antiguo.
func (l *Ledger) ListMovements(ctx context.Context, filter entity.StockMovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	if filter.Type != "" && !entity.IsValidMovementType(filter.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, filter.Type)
	}
	list, err := l.movements.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return list, nil
}
