package redis

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepository)(nil)

// CounterRepository contadores de secuencia sobre INCRBY; cada clave es prefix+nombre.
// INCRBY es atómico en el servidor, así que varias instancias de la API comparten la numeración.
type CounterRepository struct {
	client goredis.Cmdable
	prefix string
}

// NewCounterRepository construye el adaptador. client puede ser *redis.Client o un cluster.
func NewCounterRepository(client goredis.Cmdable, prefix string) *CounterRepository {
	return &CounterRepository{client: client, prefix: prefix}
}

// Increment suma n al contador y devuelve el valor resultante (la clave nace en 0).
func (r *CounterRepository) Increment(ctx context.Context, name string, n int64) (int64, error) {
	v, err := r.client.IncrBy(ctx, r.prefix+name, n).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrby %s: %w", name, err)
	}
	return v, nil
}
