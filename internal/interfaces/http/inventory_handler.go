package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// InventoryHandler ajustes manuales y consulta del log de movimientos.
type InventoryHandler struct {
	adjust *inventory.AdjustStockUseCase
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustStockUseCase, ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, ledger: ledger}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  entrada suma, salida resta (nunca deja stock negativo), ajuste fija el valor absoluto.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "Tipo y cantidad"
// @Success      201   {object}  dto.StockMovementResponse
// @Success      204   "El stock ya tenía ese valor"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.adjust.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		ProductID: c.Params("id"),
		Type:      in.Type,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	if mov == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(mov))
}

// ProductMovements GET /api/products/:id/movements
func (h *InventoryHandler) ProductMovements(c *fiber.Ctx) error {
	var q dto.MovementFilterRequest
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	q.ProductID = c.Params("id")
	return h.list(c, q)
}

// Movements GET /api/movements?product_id=&exit_order_id=&type=
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementFilterRequest
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	return h.list(c, q)
}

func (h *InventoryHandler) list(c *fiber.Ctx, q dto.MovementFilterRequest) error {
	page := q.Page()
	list, err := h.ledger.ListMovements(c.UserContext(), entity.StockMovementFilter{
		ProductID:   q.ProductID,
		ExitOrderID: q.ExitOrderID,
		Type:        q.Type,
	}, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementListResponse(list, page))
}
