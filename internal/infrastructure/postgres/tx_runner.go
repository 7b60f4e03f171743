package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/candy-pos/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool       *pgxpool.Pool
	txCounters bool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTxCounters entrega en Repos.Counters los contadores atados a la tx. Se usa cuando la
// numeración vive en PostgreSQL: tomar el ID sobre la conexión de la tx evita pedir una segunda
// conexión al pool mientras se retienen los locks de fila.
func (r *TxRunner) WithTxCounters() *TxRunner {
	r.txCounters = true
	return r
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La consistencia entre llamadas concurrentes viene de los SELECT ... FOR UPDATE de los repositorios.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ReposFor(tx)
	if r.txCounters {
		repos.Counters = NewCounterRepository(tx)
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReposFor arma los repositorios sobre q (pool o tx).
func ReposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Products:   NewProductRepository(q),
		ExitOrders: NewExitOrderRepository(q),
		Movements:  NewStockMovementRepository(q),
	}
}
