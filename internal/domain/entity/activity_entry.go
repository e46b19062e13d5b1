package entity

import "time"

// ActivityEntry registro del log de actividad de la tienda (sink best-effort:
// un fallo al escribirlo nunca afecta la operación que lo originó).
type ActivityEntry struct {
	ID        string
	StoreID   string
	StaffID   string
	Action    string // ej. "stock_operation.recorded", "order.shipped"
	EntityID  string
	Detail    string
	CreatedAt time.Time
}
