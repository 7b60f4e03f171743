package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository productos en memoria.
type ProductRepository struct {
	store *Store
	tx    *state
}

func (r *ProductRepository) Create(_ context.Context, product *entity.Product) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *product
		st.products[product.ID] = &cp
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetForUpdate: dentro de Run el lock del store ya serializa todo; equivale a GetByID.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) UpdateStock(_ context.Context, productID string, stock int) error {
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.Stock = stock
		return nil
	})
}

func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		out = sortedProducts(st, func(*entity.Product) bool { return true })
		return nil
	})
	return paginate(out, limit, offset), err
}

func (r *ProductRepository) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		out = sortedProducts(st, (*entity.Product).IsLowStock)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
		return nil
	})
	return out, err
}

func sortedProducts(st *state, keep func(*entity.Product) bool) []*entity.Product {
	out := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
