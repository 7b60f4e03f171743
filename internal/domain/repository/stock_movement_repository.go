package repository

import (
	"context"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// StockMovementRepository puerto del log de movimientos: solo agrega y consulta, nunca modifica.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter entity.StockMovementFilter, limit, offset int) ([]*entity.StockMovement, error)
}
