package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepository)(nil)

// CounterRepository contadores en memoria del proceso. Tiene su propio lock, independiente de las
// transacciones del Store: un ID emitido dentro de una tx revertida no se reutiliza.
type CounterRepository struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounterRepository crea los contadores en cero.
func NewCounterRepository() *CounterRepository {
	return &CounterRepository{values: make(map[string]int64)}
}

func (r *CounterRepository) Increment(ctx context.Context, name string, n int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] += n
	return r.values[name], nil
}
