package stock

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// Límite de asientos incluidos en el reporte PDF. Más allá de esto el
// reporte indica el total y recorta a los más recientes.
const reportMaxEntries = 500

// MovementReportUseCase arma el reporte PDF de movimientos de un producto
// a partir del ledger.
type MovementReportUseCase struct {
	ledgerRepo  repository.StockOperationRepository
	productRepo repository.ProductRepository
	generator   MovementReportGenerator
}

// NewMovementReportUseCase construye el caso de uso.
func NewMovementReportUseCase(
	ledgerRepo repository.StockOperationRepository,
	productRepo repository.ProductRepository,
	generator MovementReportGenerator,
) *MovementReportUseCase {
	return &MovementReportUseCase{ledgerRepo: ledgerRepo, productRepo: productRepo, generator: generator}
}

// BuildProductReport genera el PDF con los movimientos del producto.
func (uc *MovementReportUseCase) BuildProductReport(ctx context.Context, storeID, productID string) ([]byte, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if product.StoreID != storeID {
		return nil, domain.ErrForbidden
	}

	filter := entity.OperationFilter{StoreID: storeID, ProductID: productID}
	ops, total, err := uc.ledgerRepo.Query(ctx, filter, reportMaxEntries, 0)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateMovementReport(ctx, product, ops, total)
}
