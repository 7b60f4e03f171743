package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/application/exitorder"
	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ExitOrderUC   *exitorder.UseCase
	ProductUC     *usecase.ProductUseCase
	AdjustStockUC *inventory.AdjustStockUseCase
	Ledger        *inventory.Ledger
	// Metrics handler de Prometheus; nil = no se expone /metrics.
	Metrics     nethttp.Handler
	ServiceName string
	Storage     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName, Storage: deps.Storage})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Órdenes de salida
	exitOrderHandler := NewExitOrderHandler(deps.ExitOrderUC)
	orders := api.Group("/exit-orders")
	orders.Post("/", exitOrderHandler.Create)
	orders.Get("/", exitOrderHandler.List)
	orders.Get("/:id", exitOrderHandler.GetByID)
	orders.Get("/:id/products", exitOrderHandler.SellableProducts)
	orders.Post("/:id/sales", exitOrderHandler.RecordSales)
	orders.Post("/:id/complete", exitOrderHandler.Complete)
	orders.Post("/:id/cancel", exitOrderHandler.Cancel)
	api.Get("/routes/:routeId/active-exit-order", exitOrderHandler.GetActiveByRoute)

	// Productos (low-stock antes de /:id)
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.AdjustStockUC, deps.Ledger)
	products := api.Group("/products")
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/:id/adjustments", inventoryHandler.Adjust)
	products.Get("/:id/movements", inventoryHandler.ProductMovements)

	api.Get("/movements", inventoryHandler.Movements)
}
