package entity

import "time"

// Tipos de operación de stock.
const (
	OperationTypeIn  = "in"  // entrada (recepción de mercancía, devolución)
	OperationTypeOut = "out" // salida (despacho de orden, ajuste negativo)
)

// StockOperation es un asiento del ledger de inventario: registra un movimiento
// junto con la cantidad anterior y la resultante. Inmutable una vez creado;
// las correcciones son asientos compensatorios nuevos.
type StockOperation struct {
	ID               string
	StoreID          string
	ProductID        string
	OrderID          string // vacío salvo salidas ligadas a una orden
	Type             string // in | out
	Quantity         int64  // siempre positiva; el signo lo da Type
	PreviousQuantity int64
	NewQuantity      int64
	Reason           string
	PerformedBy      string // StaffID atribuido
	PerformedAt      time.Time
}

// OperationFilter criterios de consulta sobre el ledger. Campos vacíos no filtran.
type OperationFilter struct {
	StoreID     string
	ProductID   string
	OrderID     string
	Type        string
	PerformedBy string
}
