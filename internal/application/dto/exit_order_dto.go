package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// CreateExitOrderItemRequest una línea pedida para la ruta.
type CreateExitOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=1000000"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
}

// CreateExitOrderRequest body para POST /api/exit-orders.
type CreateExitOrderRequest struct {
	RouteID    string                       `json:"route_id" validate:"required,max=100"`
	RouteName  string                       `json:"route_name" validate:"max=200"`
	VendorName string                       `json:"vendor_name" validate:"max=200"`
	Items      []CreateExitOrderItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// SaleLineRequest cantidad vendida de un producto.
type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=1000000"`
}

// RecordSalesRequest body para POST /api/exit-orders/:id/sales.
type RecordSalesRequest struct {
	Items []SaleLineRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// ExitOrderFilterRequest query de GET /api/exit-orders.
type ExitOrderFilterRequest struct {
	Status  string `query:"status" validate:"omitempty,oneof=active completed cancelled"`
	RouteID string `query:"route_id"`
	Date    string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ExitOrderItemResponse línea de la orden con su saldo.
type ExitOrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Sold        int             `json:"sold"`
	Remaining   int             `json:"remaining"`
}

// ExitOrderResponse salida de una orden de salida.
type ExitOrderResponse struct {
	ID          string                  `json:"id"`
	RouteID     string                  `json:"route_id"`
	RouteName   string                  `json:"route_name"`
	VendorName  string                  `json:"vendor_name"`
	Status      string                  `json:"status"`
	Date        string                  `json:"date"`
	Items       []ExitOrderItemResponse `json:"items"`
	TotalItems  int                     `json:"total_items"`
	TotalValue  decimal.Decimal         `json:"total_value"`
	TotalCost   decimal.Decimal         `json:"total_cost"`
	SoldItems   int                     `json:"sold_items"`
	SoldValue   decimal.Decimal         `json:"sold_value"`
	Progress    int                     `json:"progress"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	CancelledAt *time.Time              `json:"cancelled_at,omitempty"`
}

// ExitOrderListResponse listado filtrado de órdenes.
type ExitOrderListResponse struct {
	Total int                 `json:"total"`
	Items []ExitOrderResponse `json:"items"`
}

// CreateExitOrderResponse respuesta de la creación.
type CreateExitOrderResponse struct {
	Success bool               `json:"success"`
	OrderID string             `json:"order_id"`
	Order   *ExitOrderResponse `json:"order"`
}

// ExitOrderOperationResponse respuesta de ventas, cierre y cancelación.
type ExitOrderOperationResponse struct {
	Success bool               `json:"success"`
	Order   *ExitOrderResponse `json:"order"`
}

// SellableProductResponse producto vendible desde la orden activa del vendedor.
type SellableProductResponse struct {
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	AvailableQuantity int             `json:"available_quantity"`
	ExitOrderID       string          `json:"exit_order_id"`
}

// NewExitOrderResponse mapea la entidad a la salida HTTP.
func NewExitOrderResponse(o *entity.ExitOrder) *ExitOrderResponse {
	if o == nil {
		return nil
	}
	items := make([]ExitOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ExitOrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Cost:        it.Cost,
			Sold:        it.Sold,
			Remaining:   it.Remaining(),
		})
	}
	return &ExitOrderResponse{
		ID:          o.ID,
		RouteID:     o.RouteID,
		RouteName:   o.RouteName,
		VendorName:  o.VendorName,
		Status:      o.Status,
		Date:        o.Date,
		Items:       items,
		TotalItems:  o.TotalItems,
		TotalValue:  o.TotalValue,
		TotalCost:   o.TotalCost,
		SoldItems:   o.SoldItems,
		SoldValue:   o.SoldValue,
		Progress:    o.Progress(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
	}
}
