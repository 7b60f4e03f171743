package repository

import (
	"context"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El stock solo se escribe con UpdateStock, desde el ledger de inventario.
// GetByID y GetForUpdate devuelven nil, nil si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, stock int) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
