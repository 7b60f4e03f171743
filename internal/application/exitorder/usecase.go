// Package exitorder orquesta el ciclo de vida de las órdenes de salida: creación con descuento de
// bodega, registro incremental de ventas, cierre con devolución de lo no vendido y cancelación.
package exitorder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/application/ports"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
)

// Nombres de operación usados en métricas y logs.
const (
	OpCreate   = "create"
	OpSales    = "record_sales"
	OpComplete = "complete"
	OpCancel   = "cancel"
)

// UseCase motor de órdenes de salida. Es el dueño de las reglas de transición de la orden;
// el stock lo mueve siempre a través del Ledger.
type UseCase struct {
	txRunner inventory.TxRunner
	orders   repository.ExitOrderRepository
	ledger   *inventory.Ledger
	seq      *sequence.Generator
	metrics  ports.Metrics
	log      zerolog.Logger
}

// NewUseCase construye el motor.
func NewUseCase(
	txRunner inventory.TxRunner,
	orders repository.ExitOrderRepository,
	ledger *inventory.Ledger,
	seq *sequence.Generator,
	metrics ports.Metrics,
	log zerolog.Logger,
) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{
		txRunner: txRunner,
		orders:   orders,
		ledger:   ledger,
		seq:      seq,
		metrics:  metrics,
		log:      log.With().Str("component", "exit_orders").Logger(),
	}
}

// CreateItemInput una línea solicitada para la ruta.
type CreateItemInput struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Cost      decimal.Decimal
}

// CreateInput entrada para crear una orden de salida.
type CreateInput struct {
	RouteID    string
	RouteName  string
	VendorName string
	Items      []CreateItemInput
}

func (in CreateInput) validate() error {
	if in.RouteID == "" {
		return fmt.Errorf("%w: la ruta es requerida", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: la orden no tiene productos", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
		}
		if it.Quantity <= 0 || it.Quantity > entity.MaxQuantity {
			return fmt.Errorf("%w: la cantidad de %s debe estar entre 1 y %d", domain.ErrInvalidInput, it.ProductID, entity.MaxQuantity)
		}
		if it.Price.IsNegative() || it.Cost.IsNegative() {
			return fmt.Errorf("%w: precio y costo no pueden ser negativos (%s)", domain.ErrInvalidInput, it.ProductID)
		}
		if !entity.IsMoney(it.Price) || !entity.IsMoney(it.Cost) {
			return fmt.Errorf("%w: precio y costo admiten hasta 2 decimales (%s)", domain.ErrInvalidInput, it.ProductID)
		}
		if seen[it.ProductID] {
			return fmt.Errorf("%w: producto %s repetido en la orden", domain.ErrInvalidInput, it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}

// Create genera el ID, descuenta de bodega cada línea (política del ledger), registra un movimiento
// "exit" por línea e inserta la orden activa; todo en una transacción.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (order *entity.ExitOrder, err error) {
	defer uc.observe(OpCreate, time.Now(), &err)
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := uc.ledger.Now()
	id, err := uc.seq.NextExitOrderID(ctx, now)
	if err != nil {
		return nil, err
	}
	items := make([]entity.ExitOrderItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = entity.ExitOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Cost:        it.Cost,
		}
	}
	order = entity.NewExitOrder(id, in.RouteID, in.RouteName, in.VendorName, items, now)
	notes := fmt.Sprintf("Orden de salida %s - Ruta: %s", order.ID, order.RouteName)

	_, err = uc.ledger.AtomicStockTransition(ctx, func(ctx context.Context, repos inventory.Repos) (*inventory.StockTransition, error) {
		active, err := repos.ExitOrders.FindActiveByRoute(ctx, order.RouteID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, fmt.Errorf("%w: %s (%s)", domain.ErrActiveOrderExists, order.RouteID, active.ID)
		}
		deltas := make([]inventory.StockDelta, 0, len(order.Items))
		for i := range order.Items {
			it := &order.Items[i]
			if it.ProductName == "" {
				p, err := repos.Products.GetByID(ctx, it.ProductID)
				if err != nil {
					return nil, err
				}
				if p == nil {
					return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
				}
				it.ProductName = p.Name
			}
			deltas = append(deltas, inventory.StockDelta{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Type:        entity.MovementTypeExit,
				Delta:       -it.Quantity,
				Notes:       notes,
				ExitOrderID: order.ID,
			})
		}
		return &inventory.StockTransition{
			Deltas: deltas,
			Order: func(ctx context.Context, orders repository.ExitOrderRepository) error {
				return orders.Insert(ctx, order)
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("exit_order_id", order.ID).
		Str("route_id", order.RouteID).
		Int("total_items", order.TotalItems).
		Str("total_value", order.TotalValue.StringFixed(2)).
		Msg("orden de salida creada")
	return order, nil
}

// RecordSales suma ventas reportadas por el vendedor. Es acumulativo entre llamadas y todo o nada
// dentro de una llamada; no toca el stock de bodega (la mercancía ya salió al crear la orden).
func (uc *UseCase) RecordSales(ctx context.Context, orderID string, lines []entity.SaleLine) (order *entity.ExitOrder, err error) {
	defer uc.observe(OpSales, time.Now(), &err)
	if orderID == "" {
		return nil, fmt.Errorf("%w: id de orden requerido", domain.ErrInvalidInput)
	}
	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		o, err := repos.ExitOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.ApplySales(lines, uc.ledger.Now()); err != nil {
			return err
		}
		order = o
		return repos.ExitOrders.Update(ctx, o)
	})
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	uc.log.Info().
		Str("exit_order_id", order.ID).
		Int("sold_items", order.SoldItems).
		Str("sold_value", order.SoldValue.StringFixed(2)).
		Msg("ventas registradas")
	return order, nil
}

// Complete devuelve a bodega lo no vendido de cada línea (movimientos "return") y marca la orden completada.
func (uc *UseCase) Complete(ctx context.Context, orderID string) (*entity.ExitOrder, error) {
	return uc.close(ctx, OpComplete, orderID)
}

// Cancel devuelve a bodega todo lo asignado y marca la orden cancelada.
// Solo procede si no hay ventas registradas; con ventas hay que completar.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) (*entity.ExitOrder, error) {
	return uc.close(ctx, OpCancel, orderID)
}

func (uc *UseCase) close(ctx context.Context, op, orderID string) (order *entity.ExitOrder, err error) {
	defer uc.observe(op, time.Now(), &err)
	if orderID == "" {
		return nil, fmt.Errorf("%w: id de orden requerido", domain.ErrInvalidInput)
	}
	var returned int
	_, err = uc.ledger.AtomicStockTransition(ctx, func(ctx context.Context, repos inventory.Repos) (*inventory.StockTransition, error) {
		o, err := repos.ExitOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return nil, err
		}
		full := op == OpCancel
		if full {
			err = o.CanCancel()
		} else if !o.IsActive() {
			err = domain.ErrOrderNotActive
		}
		if err != nil {
			return nil, err
		}

		label := "Devolución"
		if full {
			label = "Cancelación"
		}
		notes := fmt.Sprintf("%s orden de salida %s - Ruta: %s", label, o.ID, o.RouteName)
		lines := o.ReturnLines(full)
		deltas := make([]inventory.StockDelta, 0, len(lines))
		returned = 0
		for _, l := range lines {
			returned += l.Quantity
			deltas = append(deltas, inventory.StockDelta{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Type:        entity.MovementTypeReturn,
				Delta:       l.Quantity,
				Notes:       notes,
				ExitOrderID: o.ID,
				SkipMissing: true,
			})
		}
		return &inventory.StockTransition{
			Deltas: deltas,
			Order: func(ctx context.Context, orders repository.ExitOrderRepository) error {
				transition := o.Complete
				if full {
					transition = o.Cancel
				}
				if err := transition(uc.ledger.Now()); err != nil {
					return err
				}
				order = o
				return orders.Update(ctx, o)
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("exit_order_id", order.ID).
		Str("status", order.Status).
		Int("returned_items", returned).
		Msg("orden de salida cerrada")
	return order, nil
}

// GetByID devuelve la orden; domain.ErrNotFound si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.ExitOrder, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return o, nil
}

// GetActiveByRoute devuelve la orden activa de la ruta o nil si no hay.
func (uc *UseCase) GetActiveByRoute(ctx context.Context, routeID string) (*entity.ExitOrder, error) {
	if routeID == "" {
		return nil, fmt.Errorf("%w: la ruta es requerida", domain.ErrInvalidInput)
	}
	o, err := uc.orders.FindActiveByRoute(ctx, routeID)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return o, nil
}

// List devuelve las órdenes que cumplen los filtros, de la más reciente a la más antigua.
func (uc *UseCase) List(ctx context.Context, filter entity.ExitOrderFilter) ([]*entity.ExitOrder, error) {
	if filter.Status != "" && !entity.IsValidExitOrderStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Date != "" {
		if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
			return nil, fmt.Errorf("%w: fecha %q (formato YYYY-MM-DD)", domain.ErrInvalidInput, filter.Date)
		}
	}
	list, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return list, nil
}

// SellableProduct línea de la orden con saldo, vista como producto vendible en el POS del vendedor.
type SellableProduct struct {
	ProductID         string
	Name              string
	Price             decimal.Decimal
	Cost              decimal.Decimal
	AvailableQuantity int
	ExitOrderID       string
}

// SellableProducts proyección de solo lectura de las líneas con remaining > 0.
// Una orden cerrada no tiene nada vendible.
func (uc *UseCase) SellableProducts(ctx context.Context, orderID string) ([]SellableProduct, error) {
	o, err := uc.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]SellableProduct, 0, len(o.Items))
	if !o.IsActive() {
		return out, nil
	}
	for _, it := range o.Items {
		if it.Remaining() <= 0 {
			continue
		}
		out = append(out, SellableProduct{
			ProductID:         it.ProductID,
			Name:              it.ProductName,
			Price:             it.Price,
			Cost:              it.Cost,
			AvailableQuantity: it.Remaining(),
			ExitOrderID:       o.ID,
		})
	}
	return out, nil
}

func (uc *UseCase) observe(op string, start time.Time, errp *error) {
	err := *errp
	uc.metrics.ObserveOperation(op, err, time.Since(start))
	if err != nil {
		uc.log.Warn().Err(err).Str("operation", op).Msg("operación de orden de salida rechazada")
	}
}
