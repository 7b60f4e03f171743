package memory

import (
	"context"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepository)(nil)

// StockMovementRepository log de movimientos en memoria (solo agrega).
type StockMovementRepository struct {
	store *Store
	tx    *state
}

func (r *StockMovementRepository) Append(_ context.Context, movement *entity.StockMovement) error {
	cp := *movement
	return r.store.view(r.tx, func(st *state) error {
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// List del más reciente al más antiguo (orden inverso de inserción).
func (r *StockMovementRepository) List(_ context.Context, filter entity.StockMovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.store.view(r.tx, func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if filter.ProductID != "" && m.ProductID != filter.ProductID {
				continue
			}
			if filter.ExitOrderID != "" && m.ExitOrderID != filter.ExitOrderID {
				continue
			}
			if filter.Type != "" && m.Type != filter.Type {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	return paginate(out, limit, offset), err
}
