package stock

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// LedgerQueryUseCase fachada de solo lectura sobre el ledger: listados
// filtrados/paginados con campos de presentación del producto. El total es
// consistente al momento de la consulta; la obsolescencia bajo escrituras
// concurrentes es aceptable.
type LedgerQueryUseCase struct {
	ledgerRepo repository.StockOperationRepository
	cache      OperationCache // opcional; nil deshabilita el cache
	log        *logger.Logger
}

// NewLedgerQueryUseCase construye la fachada de consulta.
func NewLedgerQueryUseCase(ledgerRepo repository.StockOperationRepository, cache OperationCache, log *logger.Logger) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{ledgerRepo: ledgerRepo, cache: cache, log: log}
}

// List devuelve una página del ledger según los filtros, más reciente primero.
func (uc *LedgerQueryUseCase) List(ctx context.Context, storeID string, filter dto.OperationListFilter, page dto.PageRequest) (*dto.OperationListResponse, error) {
	page.DefaultPage()
	f := entity.OperationFilter{
		StoreID:     storeID,
		ProductID:   filter.ProductID,
		OrderID:     filter.OrderID,
		Type:        filter.Type,
		PerformedBy: filter.PerformedBy,
	}
	views, total, err := uc.ledgerRepo.Query(ctx, f, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.OperationListResponse{
		Operations: make([]dto.StockOperationDTO, 0, len(views)),
		Total:      total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	for _, v := range views {
		resp.Operations = append(resp.Operations, dto.FromOperationWithProduct(v))
	}
	return resp, nil
}

// ListByProduct página del ledger de un producto concreto.
func (uc *LedgerQueryUseCase) ListByProduct(ctx context.Context, storeID, productID string, page dto.PageRequest) (*dto.OperationListResponse, error) {
	return uc.List(ctx, storeID, dto.OperationListFilter{ProductID: productID}, page)
}

// GetByID devuelve un asiento puntual. Como los asientos son inmutables se
// sirven cache-aside desde Redis sin invalidación alguna.
func (uc *LedgerQueryUseCase) GetByID(ctx context.Context, storeID, id string) (*dto.StockOperationDTO, error) {
	if uc.cache != nil {
		if op, err := uc.cache.Get(ctx, id); err != nil {
			uc.log.Debug().Err(err).Str("operation_id", id).Msg("cache de asientos no disponible")
		} else if op != nil {
			if op.StoreID != storeID {
				return nil, domain.ErrNotFound
			}
			d := dto.FromOperation(op)
			return &d, nil
		}
	}

	op, err := uc.ledgerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Un asiento de otra tienda no se distingue de uno inexistente
	if op == nil || op.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, op); err != nil {
			uc.log.Debug().Err(err).Str("operation_id", id).Msg("no se pudo poblar el cache")
		}
	}
	d := dto.FromOperation(op)
	return &d, nil
}
