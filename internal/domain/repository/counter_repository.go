package repository

import "context"

// CounterRepository almacén de contadores con nombre.
// Increment suma n de forma atómica y devuelve el valor resultante; un contador nuevo parte de 0.
type CounterRepository interface {
	Increment(ctx context.Context, name string, n int64) (int64, error)
}
