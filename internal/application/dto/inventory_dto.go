package dto

import (
	"time"

	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/products/:id/adjustments.
// entrada/salida: unidades a sumar/restar; ajuste: nuevo stock absoluto.
type AdjustStockRequest struct {
	Type     string `json:"type" validate:"required,oneof=entrada salida ajuste"`
	Quantity int    `json:"quantity" validate:"min=0,lte=1000000"`
	Notes    string `json:"notes" validate:"max=500"`
}

// MovementFilterRequest query de GET /api/movements.
type MovementFilterRequest struct {
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset      int    `query:"offset" validate:"omitempty,min=0"`
	ProductID   string `query:"product_id"`
	ExitOrderID string `query:"exit_order_id"`
	Type        string `query:"type" validate:"omitempty,oneof=exit return entrada salida ajuste"`
}

// Page paginación con valores por defecto aplicados.
func (r MovementFilterRequest) Page() PageRequest {
	p := PageRequest{Limit: r.Limit, Offset: r.Offset}
	p.DefaultPage()
	return p
}

// StockMovementResponse un movimiento del log.
type StockMovementResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Notes         string    `json:"notes"`
	Date          time.Time `json:"date"`
	ExitOrderID   string    `json:"exit_order_id,omitempty"`
}

// MovementListResponse página del log de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// NewStockMovementResponse mapea la entidad a la salida HTTP.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Notes:         m.Notes,
		Date:          m.Date,
		ExitOrderID:   m.ExitOrderID,
	}
}

// NewMovementListResponse mapea una página de movimientos.
func NewMovementListResponse(list []*entity.StockMovement, page PageRequest) MovementListResponse {
	items := make([]StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, NewStockMovementResponse(m))
	}
	return MovementListResponse{Items: items, Page: PageResponse{Limit: page.Limit, Offset: page.Offset}}
}
