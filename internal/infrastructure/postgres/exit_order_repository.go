package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.ExitOrderRepository = (*ExitOrderRepo)(nil)

// uq_exit_orders_active_route índice único parcial (route_id) WHERE status = 'active'.
const activeRouteConstraint = "uq_exit_orders_active_route"

const exitOrderColumns = `id, route_id, route_name, vendor_name, status, to_char(date, 'YYYY-MM-DD'), items,
	total_items, total_value, total_cost, sold_items, sold_value,
	created_at, updated_at, completed_at, cancelled_at`

// exitOrderItemDoc forma de cada línea dentro de la columna JSONB items.
type exitOrderItemDoc struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Sold        int             `json:"sold"`
}

// ExitOrderRepo órdenes de salida sobre PostgreSQL; las líneas viajan como documento JSONB.
type ExitOrderRepo struct {
	q Querier
}

// NewExitOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExitOrderRepository(q Querier) *ExitOrderRepo {
	return &ExitOrderRepo{q: q}
}

// Insert persiste la orden. La unicidad de orden activa por ruta la garantiza el índice parcial.
func (r *ExitOrderRepo) Insert(ctx context.Context, o *entity.ExitOrder) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", o.Date)
	if err != nil {
		return fmt.Errorf("%w: fecha de orden %q", domain.ErrInvalidInput, o.Date)
	}
	query := `
		INSERT INTO exit_orders (id, route_id, route_name, vendor_name, status, date, items,
			total_items, total_value, total_cost, sold_items, sold_value,
			created_at, updated_at, completed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.RouteID, o.RouteName, o.VendorName, o.Status, date, items,
		o.TotalItems, o.TotalValue, o.TotalCost, o.SoldItems, o.SoldValue,
		o.CreatedAt, o.UpdatedAt, o.CompletedAt, o.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == activeRouteConstraint {
				return fmt.Errorf("%w: %s", domain.ErrActiveOrderExists, o.RouteID)
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert exit order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *ExitOrderRepo) GetByID(ctx context.Context, id string) (*entity.ExitOrder, error) {
	return r.getOne(ctx, `SELECT `+exitOrderColumns+` FROM exit_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden bloqueando la fila (SELECT FOR UPDATE). Serializa ventas y cierres.
func (r *ExitOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ExitOrder, error) {
	return r.getOne(ctx, `SELECT `+exitOrderColumns+` FROM exit_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *ExitOrderRepo) getOne(ctx context.Context, query, id string) (*entity.ExitOrder, error) {
	o, err := scanExitOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get exit order: %w", err)
	}
	return o, nil
}

// Update reescribe estado, líneas, totales y marcas de tiempo.
func (r *ExitOrderRepo) Update(ctx context.Context, o *entity.ExitOrder) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE exit_orders SET status = $2, items = $3,
			total_items = $4, total_value = $5, total_cost = $6, sold_items = $7, sold_value = $8,
			updated_at = $9, completed_at = $10, cancelled_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.Status, items,
		o.TotalItems, o.TotalValue, o.TotalCost, o.SoldItems, o.SoldValue,
		o.UpdatedAt, o.CompletedAt, o.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update exit order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

// FindActiveByRoute orden activa de la ruta o nil.
func (r *ExitOrderRepo) FindActiveByRoute(ctx context.Context, routeID string) (*entity.ExitOrder, error) {
	o, err := scanExitOrder(r.q.QueryRow(ctx,
		`SELECT `+exitOrderColumns+` FROM exit_orders WHERE route_id = $1 AND status = 'active'`, routeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active exit order: %w", err)
	}
	return o, nil
}

// List órdenes que cumplen el filtro, de la más reciente a la más antigua.
func (r *ExitOrderRepo) List(ctx context.Context, f entity.ExitOrderFilter) ([]*entity.ExitOrder, error) {
	query := `
		SELECT ` + exitOrderColumns + ` FROM exit_orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR route_id = $2)
		  AND ($3 = '' OR to_char(date, 'YYYY-MM-DD') = $3)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, f.Status, f.RouteID, f.Date)
	if err != nil {
		return nil, fmt.Errorf("list exit orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExitOrder
	for rows.Next() {
		o, err := scanExitOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exit order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanExitOrder(row pgx.Row) (*entity.ExitOrder, error) {
	var o entity.ExitOrder
	var items []byte
	var completedAt, cancelledAt *time.Time
	err := row.Scan(
		&o.ID, &o.RouteID, &o.RouteName, &o.VendorName, &o.Status, &o.Date, &items,
		&o.TotalItems, &o.TotalValue, &o.TotalCost, &o.SoldItems, &o.SoldValue,
		&o.CreatedAt, &o.UpdatedAt, &completedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}
	o.CompletedAt, o.CancelledAt = completedAt, cancelledAt
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &o, nil
}

func encodeItems(items []entity.ExitOrderItem) ([]byte, error) {
	docs := make([]exitOrderItemDoc, len(items))
	for i, it := range items {
		docs[i] = exitOrderItemDoc(it)
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode exit order items: %w", err)
	}
	return b, nil
}

func decodeItems(b []byte) ([]entity.ExitOrderItem, error) {
	var docs []exitOrderItemDoc
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("decode exit order items: %w", err)
	}
	items := make([]entity.ExitOrderItem, len(docs))
	for i, d := range docs {
		items[i] = entity.ExitOrderItem(d)
	}
	return items, nil
}
