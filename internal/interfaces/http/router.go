package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordOperation *stock.RecordOperationUseCase
	LedgerQuery     *stock.LedgerQueryUseCase
	MovementReport  *stock.MovementReportUseCase
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token de la plataforma)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock operations (ledger)
	ops := protected.Group("/stock-operations")
	handler := NewStockHandler(deps.RecordOperation, deps.LedgerQuery, deps.MovementReport)
	ops.Post("/", handler.RecordOperation)
	ops.Get("/", handler.ListOperations)
	ops.Get("/product/:productId", handler.ListByProduct)
	// Reporte PDF restringido a roles con acceso a toda la tienda
	ops.Get("/product/:productId/report", RequireRole("owner", "manager"), handler.ProductReport)
	ops.Get("/:id", handler.GetOperation)
}
