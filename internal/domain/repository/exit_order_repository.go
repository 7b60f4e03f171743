package repository

import (
	"context"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// ExitOrderRepository puerto de persistencia de órdenes de salida.
// GetByID y GetForUpdate devuelven domain.ErrNotFound si la orden no existe.
type ExitOrderRepository interface {
	// Insert falla con domain.ErrActiveOrderExists si la ruta ya tiene una orden activa.
	Insert(ctx context.Context, order *entity.ExitOrder) error
	GetByID(ctx context.Context, id string) (*entity.ExitOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ExitOrder, error)
	Update(ctx context.Context, order *entity.ExitOrder) error
	// FindActiveByRoute devuelve nil, nil si la ruta no tiene orden activa.
	FindActiveByRoute(ctx context.Context, routeID string) (*entity.ExitOrder, error)
	// List ordena de la más reciente a la más antigua.
	List(ctx context.Context, filter entity.ExitOrderFilter) ([]*entity.ExitOrder, error)
}
