// Package sequence genera los identificadores legibles de órdenes y movimientos.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

// Nombres de contador dentro del documento de contadores.
const (
	CounterExitOrder = "exit_order"
	CounterMovement  = "movement"
)

// Generator emite IDs a partir de contadores con incremento atómico; ningún valor se emite dos veces.
type Generator struct {
	counters repository.CounterRepository
}

// NewGenerator construye el generador sobre el almacén de contadores.
func NewGenerator(counters repository.CounterRepository) *Generator {
	return &Generator{counters: counters}
}

// NextExitOrderID devuelve EO-<YYYYMMDD>-<NNN>. El contador es global, no se reinicia por día.
func (g *Generator) NextExitOrderID(ctx context.Context, date time.Time) (string, error) {
	n, err := g.next(ctx, CounterExitOrder)
	if err != nil {
		return "", err
	}
	return FormatExitOrderID(date, n), nil
}

// NextMovementID devuelve el siguiente ID entero del log de movimientos.
func (g *Generator) NextMovementID(ctx context.Context) (int64, error) {
	return g.next(ctx, CounterMovement)
}

func (g *Generator) next(ctx context.Context, name string) (int64, error) {
	n, err := g.counters.Increment(ctx, name, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: contador %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	return n, nil
}

// FormatExitOrderID arma el ID de orden con el contador rellenado a 3 dígitos.
func FormatExitOrderID(date time.Time, n int64) string {
	return fmt.Sprintf("EO-%s-%03d", date.Format("20060102"), n)
}
