package entity

// OperationWithProduct asiento del ledger junto con los campos de presentación
// del producto (para listados; el join es de solo lectura).
type OperationWithProduct struct {
	StockOperation
	ProductName string
	ProductSKU  string
}
