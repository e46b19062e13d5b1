package stock

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el asiento del ledger y la
// actualización del agregado de stock se confirmen o reviertan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		opRepo repository.StockOperationRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// OperationCache cache de asientos por ID. Los asientos son inmutables, así
// que no se requiere invalidación; un miss siempre puede resolverse en BD.
type OperationCache interface {
	Get(ctx context.Context, id string) (*entity.StockOperation, error)
	Set(ctx context.Context, op *entity.StockOperation) error
}

// MovementReportGenerator genera el reporte PDF de movimientos de un producto.
type MovementReportGenerator interface {
	GenerateMovementReport(ctx context.Context, product *entity.Product, ops []*entity.OperationWithProduct, total int64) ([]byte, error)
}
