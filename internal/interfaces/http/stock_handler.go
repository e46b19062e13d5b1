package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/stock"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	record *stock.RecordOperationUseCase
	query  *stock.LedgerQueryUseCase
	report *stock.MovementReportUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(record *stock.RecordOperationUseCase, query *stock.LedgerQueryUseCase, report *stock.MovementReportUseCase) *StockHandler {
	return &StockHandler{record: record, query: query, report: report}
}

// RecordOperation godoc
// @Summary      Registrar operación de stock
// @Tags         stock-operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordOperationRequest  true  "product_id, type (in|out), quantity, reason?, order_id? (solo out)"
// @Success      201   {object}  dto.RecordOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-operations [post]
func (h *StockHandler) RecordOperation(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	staffID := GetStaffID(c)
	if storeID == "" || staffID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.record.RecordOperation(c.Context(), stock.OperationInput{
		StoreID:   storeID,
		StaffID:   staffID,
		ProductID: in.ProductID,
		OrderID:   in.OrderID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.RecordOperationResponse{
		Operation:    dto.FromOperation(result.Operation),
		OrderUpdated: result.OrderUpdated,
		OrderStatus:  result.OrderStatus,
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListOperations godoc
// @Summary      Listar operaciones de stock (filtrado y paginado)
// @Tags         stock-operations
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        order_id      query  string  false  "Filtrar por orden"
// @Param        type          query  string  false  "in | out"
// @Param        performed_by  query  string  false  "Filtrar por staff"
// @Param        limit         query  int     false  "Tamaño de página (def. 20, máx. 100)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.OperationListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock-operations [get]
func (h *StockHandler) ListOperations(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var filter dto.OperationListFilter
	if err := c.QueryParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	resp, err := h.query.List(c.Context(), storeID, filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// GetOperation godoc
// @Summary      Obtener una operación de stock por ID
// @Tags         stock-operations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del asiento"
// @Success      200  {object}  dto.StockOperationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-operations/{id} [get]
func (h *StockHandler) GetOperation(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	op, err := h.query.GetByID(c.Context(), storeID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(op)
}

// ListByProduct godoc
// @Summary      Historial de operaciones de un producto
// @Tags         stock-operations
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "Tamaño de página"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.OperationListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock-operations/product/{productId} [get]
func (h *StockHandler) ListByProduct(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	resp, err := h.query.ListByProduct(c.Context(), storeID, c.Params("productId"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// ProductReport godoc
// @Summary      Reporte PDF de movimientos de un producto
// @Tags         stock-operations
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-operations/product/{productId}/report [get]
func (h *StockHandler) ProductReport(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	pdfBytes, err := h.report.BuildProductReport(c.Context(), storeID, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.pdf"`)
	return c.Send(pdfBytes)
}

// writeError mapea errores de dominio a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
