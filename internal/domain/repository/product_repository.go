package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// El stock vive en la misma fila del producto; GetForUpdate y UpdateStock
// solo deben usarse dentro de la transacción que escribe el ledger.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar escrituras concurrentes sobre el mismo producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, quantity int64) error
}
