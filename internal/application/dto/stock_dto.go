package dto

import (
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// RecordOperationRequest body para POST /api/stock-operations.
type RecordOperationRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"` // "in" | "out"
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
}

// StockOperationDTO asiento del ledger en respuestas HTTP.
type StockOperationDTO struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	ProductName      string    `json:"product_name,omitempty"`
	ProductSKU       string    `json:"product_sku,omitempty"`
	OrderID          string    `json:"order_id,omitempty"`
	Type             string    `json:"type"`
	Quantity         int64     `json:"quantity"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Reason           string    `json:"reason,omitempty"`
	PerformedBy      string    `json:"performed_by"`
	PerformedAt      time.Time `json:"performed_at"`
}

// RecordOperationResponse resultado del registro: la operación ya persistida
// más el avance (informativo) de la orden asociada, si lo hubo.
type RecordOperationResponse struct {
	Operation    StockOperationDTO `json:"operation"`
	OrderUpdated bool              `json:"order_updated"`
	OrderStatus  string            `json:"order_status,omitempty"`
}

// OperationListFilter filtros de GET /api/stock-operations.
type OperationListFilter struct {
	ProductID   string `query:"product_id"`
	OrderID     string `query:"order_id"`
	Type        string `query:"type"`
	PerformedBy string `query:"performed_by"`
}

// OperationListResponse página de asientos con el total filtrado.
type OperationListResponse struct {
	Operations []StockOperationDTO `json:"operations"`
	Total      int64               `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// FromOperation convierte la entidad a DTO.
func FromOperation(op *entity.StockOperation) StockOperationDTO {
	return StockOperationDTO{
		ID:               op.ID,
		ProductID:        op.ProductID,
		OrderID:          op.OrderID,
		Type:             op.Type,
		Quantity:         op.Quantity,
		PreviousQuantity: op.PreviousQuantity,
		NewQuantity:      op.NewQuantity,
		Reason:           op.Reason,
		PerformedBy:      op.PerformedBy,
		PerformedAt:      op.PerformedAt,
	}
}

// FromOperationWithProduct convierte la vista unida a DTO.
func FromOperationWithProduct(v *entity.OperationWithProduct) StockOperationDTO {
	d := FromOperation(&v.StockOperation)
	d.ProductName = v.ProductName
	d.ProductSKU = v.ProductSKU
	return d
}
