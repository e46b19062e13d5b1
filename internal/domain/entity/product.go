package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto publicado por una tienda del marketplace.
// StockQuantity es el agregado materializado del ledger: solo se muta junto
// con la creación de una StockOperation, nunca por separado.
type Product struct {
	ID            string
	StoreID       string
	SKU           string
	Name          string
	Price         decimal.Decimal // precio de venta
	StockQuantity int64           // cantidad disponible actual
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
