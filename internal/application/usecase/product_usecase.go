package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
)

// ProductUseCase catálogo de bodega. El stock no se edita aquí: el inicial entra como movimiento
// "entrada" y el resto vía ajustes u órdenes de salida.
type ProductUseCase struct {
	repo   repository.ProductRepository
	ledger *inventory.Ledger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, ledger *inventory.Ledger) *ProductUseCase {
	return &ProductUseCase{repo: repo, ledger: ledger}
}

// Create crea el producto con stock 0 y, si hay stock inicial, registra la entrada en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es requerido", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: precio y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if !entity.IsMoney(in.Price) || !entity.IsMoney(in.Cost) {
		return nil, fmt.Errorf("%w: precio y costo admiten hasta 2 decimales", domain.ErrInvalidInput)
	}
	if in.InitialStock < 0 || in.MinStock < 0 {
		return nil, fmt.Errorf("%w: stock inicial y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.InitialStock > entity.MaxQuantity || in.MinStock > entity.MaxQuantity {
		return nil, fmt.Errorf("%w: stock inicial y mínimo admiten hasta %d", domain.ErrInvalidInput, entity.MaxQuantity)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.New().String()
	}
	now := uc.ledger.Now()
	product := &entity.Product{
		ID:        id,
		Name:      name,
		Price:     in.Price,
		Cost:      in.Cost,
		MinStock:  in.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := uc.ledger.AtomicStockTransition(ctx, func(ctx context.Context, repos inventory.Repos) (*inventory.StockTransition, error) {
		if err := repos.Products.Create(ctx, product); err != nil {
			return nil, err
		}
		if in.InitialStock == 0 {
			return nil, nil
		}
		return &inventory.StockTransition{Deltas: []inventory.StockDelta{{
			ProductID: product.ID,
			Type:      entity.MovementTypeEntrada,
			Delta:     in.InitialStock,
			Notes:     "Stock inicial",
		}}}, nil
	})
	if err != nil {
		return nil, err
	}
	product.Stock = in.InitialStock
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto; domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return dto.NewProductResponse(product), nil
}

// List lista productos por nombre con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListLowStock productos en o bajo su stock mínimo.
func (uc *ProductUseCase) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListLowStock(ctx)
	if err != nil {
		return nil, domain.WrapStoreError(err)
	}
	return toProductResponses(list), nil
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.NewProductResponse(p))
	}
	return items
}
