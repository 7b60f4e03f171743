package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/candy-pos/internal/domain/repository"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// counterSequences secuencia de PostgreSQL detrás de cada contador.
var counterSequences = map[string]string{
	sequence.CounterExitOrder: "exit_order_seq",
	sequence.CounterMovement:  "stock_movement_seq",
}

// CounterRepo contadores sobre SEQUENCEs. nextval no toma locks de fila, así que puede correr
// dentro de la transacción de negocio sin serializar a las demás.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador sobre q (pool o tx).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Increment avanza el contador n veces y devuelve el último valor. Con n > 1 y escrituras
// concurrentes los valores tomados no son necesariamente contiguos.
func (r *CounterRepo) Increment(ctx context.Context, name string, n int64) (int64, error) {
	seq, ok := counterSequences[name]
	if !ok {
		return 0, fmt.Errorf("increment counter %s: contador desconocido", name)
	}
	if n < 1 {
		return 0, fmt.Errorf("increment counter %s: n debe ser mayor a 0", name)
	}
	var value int64
	err := r.q.QueryRow(ctx,
		`SELECT max(v) FROM (SELECT nextval($1::text::regclass) AS v FROM generate_series(1, $2::bigint)) s`,
		seq, n).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return value, nil
}
