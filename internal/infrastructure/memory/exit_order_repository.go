package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.ExitOrderRepository = (*ExitOrderRepository)(nil)

// ExitOrderRepository órdenes de salida en memoria; devuelve siempre copias.
type ExitOrderRepository struct {
	store *Store
	tx    *state
}

func (r *ExitOrderRepository) Insert(_ context.Context, order *entity.ExitOrder) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("exit order repository: id is required")
	}
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		if order.IsActive() {
			for _, o := range st.orders {
				if o.RouteID == order.RouteID && o.IsActive() {
					return fmt.Errorf("%w: %s (%s)", domain.ErrActiveOrderExists, o.RouteID, o.ID)
				}
			}
		}
		st.nextSeq++
		st.orders[order.ID] = order.Clone()
		st.orderSeq[order.ID] = st.nextSeq
		return nil
	})
}

func (r *ExitOrderRepository) GetByID(_ context.Context, id string) (*entity.ExitOrder, error) {
	var out *entity.ExitOrder
	err := r.store.view(r.tx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
		}
		out = o.Clone()
		return nil
	})
	return out, err
}

func (r *ExitOrderRepository) GetForUpdate(ctx context.Context, id string) (*entity.ExitOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *ExitOrderRepository) Update(_ context.Context, order *entity.ExitOrder) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.orders[order.ID]; !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, order.ID)
		}
		st.orders[order.ID] = order.Clone()
		return nil
	})
}

func (r *ExitOrderRepository) FindActiveByRoute(_ context.Context, routeID string) (*entity.ExitOrder, error) {
	var out *entity.ExitOrder
	err := r.store.view(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if o.RouteID == routeID && o.IsActive() {
				out = o.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ExitOrderRepository) List(_ context.Context, filter entity.ExitOrderFilter) ([]*entity.ExitOrder, error) {
	var out []*entity.ExitOrder
	err := r.store.view(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if filter.Matches(o) {
				out = append(out, o.Clone())
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return st.orderSeq[out[i].ID] > st.orderSeq[out[j].ID]
		})
		return nil
	})
	return out, err
}
