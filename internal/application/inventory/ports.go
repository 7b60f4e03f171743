package inventory

import (
	"context"

	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products   repository.ProductRepository
	ExitOrders repository.ExitOrderRepository
	Movements  repository.StockMovementRepository
	// Counters contadores atados a la tx; nil si la numeración vive fuera del almacén.
	Counters repository.CounterRepository
}

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda nada escrito (Rollback); si no, se confirma todo junto.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
