package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockOperationRepository define el puerto de persistencia del ledger de stock.
// El ledger es append-only: no existen operaciones de update ni delete.
type StockOperationRepository interface {
	// Append persiste un asiento; genera ID y timestamp si vienen vacíos.
	Append(ctx context.Context, op *entity.StockOperation) error
	GetByID(ctx context.Context, id string) (*entity.StockOperation, error)
	// Query devuelve la página (más recientes primero) y el total filtrado,
	// con los campos de presentación del producto ya unidos.
	Query(ctx context.Context, filter entity.OperationFilter, limit, offset int) ([]*entity.OperationWithProduct, int64, error)
	// SumOutByOrder suma las salidas ligadas a una orden, agrupadas por producto.
	SumOutByOrder(ctx context.Context, orderID string) (map[string]int64, error)
}
