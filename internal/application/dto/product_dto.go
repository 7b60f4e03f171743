package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. InitialStock entra como movimiento "entrada".
type CreateProductRequest struct {
	ID           string          `json:"id" validate:"omitempty,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	InitialStock int             `json:"initial_stock" validate:"min=0,lte=1000000"`
	MinStock     int             `json:"min_stock" validate:"min=0,lte=1000000"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	LowStock  bool            `json:"low_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewProductResponse mapea la entidad a la salida HTTP.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Cost:      p.Cost,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		LowStock:  p.IsLowStock(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
