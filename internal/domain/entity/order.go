package entity

import "time"

// Estados de una orden. El motor de stock solo avanza pending/processing -> shipped;
// el resto de transiciones las realizan otros módulos de la plataforma.
const (
	OrderStatusPending          = "pending"
	OrderStatusProcessing       = "processing"
	OrderStatusShipped          = "shipped"
	OrderStatusDelivered        = "delivered"
	OrderStatusCancelled        = "cancelled"
	OrderStatusReturnProcessing = "return_processing"
	OrderStatusReturned         = "returned"
)

// Order orden de compra de la plataforma (colaborador; aquí solo se lee y se
// avanza su estado como efecto de salidas de stock).
type Order struct {
	ID        string
	StoreID   string
	Status    string
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem renglón de la orden.
type OrderItem struct {
	ProductID string
	Quantity  int64 // cantidad pedida
}

// CanShip indica si el estado actual admite la transición a shipped.
func (o *Order) CanShip() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
