package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log de movimientos sobre PostgreSQL (usable con pool o tx). Sin UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append agrega un movimiento al log.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, transaction_id, product_id, product_name, type, quantity,
			previous_stock, new_stock, notes, date, exit_order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var exitOrderID *string
	if m.ExitOrderID != "" {
		exitOrderID = &m.ExitOrderID
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.ProductID, m.ProductName, m.Type, m.Quantity,
		m.PreviousStock, m.NewStock, m.Notes, m.Date, exitOrderID,
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// List movimientos que cumplen el filtro, del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, filter entity.StockMovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, transaction_id, product_id, product_name, type, quantity,
			previous_stock, new_stock, notes, date, exit_order_id
		FROM stock_movements WHERE true`
	var args []any
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.ExitOrderID != "" {
		query += fmt.Sprintf(" AND exit_order_id = $%d", pos)
		args = append(args, filter.ExitOrderID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var exitOrderID *string
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ProductID, &m.ProductName, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Notes, &m.Date, &exitOrderID); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		if exitOrderID != nil {
			m.ExitOrderID = *exitOrderID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
