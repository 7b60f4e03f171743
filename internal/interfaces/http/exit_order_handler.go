package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/application/exitorder"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

// ExitOrderHandler maneja las peticiones HTTP de órdenes de salida.
type ExitOrderHandler struct {
	uc *exitorder.UseCase
}

// NewExitOrderHandler construye el handler.
func NewExitOrderHandler(uc *exitorder.UseCase) *ExitOrderHandler {
	return &ExitOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de salida
// @Description  Descuenta de bodega lo asignado a la ruta y deja la orden activa.
// @Tags         exit-orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateExitOrderRequest  true  "Ruta y productos"
// @Success      201   {object}  dto.CreateExitOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exit-orders [post]
func (h *ExitOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExitOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	items := make([]exitorder.CreateItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = exitorder.CreateItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Cost:      it.Cost,
		}
	}
	order, err := h.uc.Create(c.UserContext(), exitorder.CreateInput{
		RouteID:    in.RouteID,
		RouteName:  in.RouteName,
		VendorName: in.VendorName,
		Items:      items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateExitOrderResponse{
		Success: true,
		OrderID: order.ID,
		Order:   dto.NewExitOrderResponse(order),
	})
}

// List godoc
// @Summary      Listar órdenes de salida
// @Tags         exit-orders
// @Produce      json
// @Param        status    query  string  false  "active | completed | cancelled"
// @Param        route_id  query  string  false  "Ruta"
// @Param        date      query  string  false  "Fecha YYYY-MM-DD"
// @Success      200  {object}  dto.ExitOrderListResponse
// @Router       /api/exit-orders [get]
func (h *ExitOrderHandler) List(c *fiber.Ctx) error {
	var q dto.ExitOrderFilterRequest
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	list, err := h.uc.List(c.UserContext(), entity.ExitOrderFilter{
		Status:  q.Status,
		RouteID: q.RouteID,
		Date:    q.Date,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ExitOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *dto.NewExitOrderResponse(o))
	}
	return c.JSON(dto.ExitOrderListResponse{Total: len(items), Items: items})
}

// GetByID godoc
// @Summary      Obtener orden de salida
// @Tags         exit-orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden (EO-YYYYMMDD-NNN)"
// @Success      200  {object}  dto.ExitOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id} [get]
func (h *ExitOrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewExitOrderResponse(order))
}

// GetActiveByRoute godoc
// @Summary      Orden activa de una ruta
// @Tags         exit-orders
// @Produce      json
// @Param        routeId  path  string  true  "Ruta"
// @Success      200  {object}  dto.ExitOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/routes/{routeId}/active-exit-order [get]
func (h *ExitOrderHandler) GetActiveByRoute(c *fiber.Ctx) error {
	routeID := c.Params("routeId")
	order, err := h.uc.GetActiveByRoute(c.UserContext(), routeID)
	if err != nil {
		return writeError(c, err)
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code:  "NOT_FOUND",
			Error: "la ruta " + routeID + " no tiene una orden de salida activa",
		})
	}
	return c.JSON(dto.NewExitOrderResponse(order))
}

// RecordSales godoc
// @Summary      Registrar ventas de la ruta
// @Description  Suma lo vendido a cada línea; todo o nada. No toca el stock de bodega.
// @Tags         exit-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.RecordSalesRequest  true  "Ventas"
// @Success      200   {object}  dto.ExitOrderOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/sales [post]
func (h *ExitOrderHandler) RecordSales(c *fiber.Ctx) error {
	var in dto.RecordSalesRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]entity.SaleLine, len(in.Items))
	for i, l := range in.Items {
		lines[i] = entity.SaleLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	order, err := h.uc.RecordSales(c.UserContext(), c.Params("id"), lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExitOrderOperationResponse{Success: true, Order: dto.NewExitOrderResponse(order)})
}

// Complete godoc
// @Summary      Completar orden de salida
// @Description  Devuelve a bodega lo no vendido y cierra la orden.
// @Tags         exit-orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ExitOrderOperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/complete [post]
func (h *ExitOrderHandler) Complete(c *fiber.Ctx) error {
	order, err := h.uc.Complete(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExitOrderOperationResponse{Success: true, Order: dto.NewExitOrderResponse(order)})
}

// Cancel godoc
// @Summary      Cancelar orden de salida
// @Description  Solo sin ventas registradas; devuelve a bodega todo lo asignado.
// @Tags         exit-orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ExitOrderOperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/cancel [post]
func (h *ExitOrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.uc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExitOrderOperationResponse{Success: true, Order: dto.NewExitOrderResponse(order)})
}

// SellableProducts godoc
// @Summary      Productos vendibles de la orden
// @Tags         exit-orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}   dto.SellableProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/products [get]
func (h *ExitOrderHandler) SellableProducts(c *fiber.Ctx) error {
	list, err := h.uc.SellableProducts(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SellableProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.SellableProductResponse{
			ProductID:         p.ProductID,
			Name:              p.Name,
			Price:             p.Price,
			Cost:              p.Cost,
			AvailableQuantity: p.AvailableQuantity,
			ExitOrderID:       p.ExitOrderID,
		})
	}
	return c.JSON(out)
}
