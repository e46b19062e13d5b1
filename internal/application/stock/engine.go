package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// RecordOperationUseCase es el único punto de escritura del inventario:
// registra el asiento en el ledger y actualiza el stock del producto en la
// misma transacción, con bloqueo de fila (SELECT FOR UPDATE) para serializar
// escrituras concurrentes sobre el mismo producto.
type RecordOperationUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	reconciler   *FulfillmentReconciler
	activityRepo repository.ActivityLogRepository
	log          *logger.Logger
}

// NewRecordOperationUseCase construye el caso de uso.
func NewRecordOperationUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	reconciler *FulfillmentReconciler,
	activityRepo repository.ActivityLogRepository,
	log *logger.Logger,
) *RecordOperationUseCase {
	return &RecordOperationUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		reconciler:   reconciler,
		activityRepo: activityRepo,
		log:          log,
	}
}

// OperationInput entrada para registrar una operación de stock.
type OperationInput struct {
	StoreID   string
	StaffID   string
	ProductID string
	OrderID   string // solo válido en salidas ligadas a una orden
	Type      string // in | out
	Quantity  int64
	Reason    string
}

// RecordResult resultado del registro. OrderUpdated/OrderStatus son
// informativos: la mutación de stock ya quedó confirmada aunque la
// reconciliación de la orden haya fallado.
type RecordResult struct {
	Operation    *entity.StockOperation
	OrderUpdated bool
	OrderStatus  string
}

// RecordOperation valida la entrada, ejecuta la escritura atómica
// (ledger + agregado) y dispara la reconciliación best-effort de la orden.
func (uc *RecordOperationUseCase) RecordOperation(ctx context.Context, input OperationInput) (*RecordResult, error) {
	switch input.Type {
	case entity.OperationTypeIn:
		if input.OrderID != "" {
			// Las entradas nunca van ligadas a una orden
			return nil, domain.ErrInvalidInput
		}
	case entity.OperationTypeOut:
	default:
		return nil, domain.ErrInvalidInput
	}
	if input.ProductID == "" || input.StaffID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	// Validar que el producto exista y pertenezca a la tienda del staff
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if product.StoreID != input.StoreID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	op := &entity.StockOperation{
		ID:          uuid.New().String(),
		StoreID:     input.StoreID,
		ProductID:   input.ProductID,
		OrderID:     input.OrderID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		Reason:      input.Reason,
		PerformedBy: input.StaffID,
		PerformedAt: now,
	}

	// Transacción: bloquea la fila del producto, calcula el nuevo stock y
	// escribe asiento + agregado. Commit o Rollback de ambos, nunca uno solo.
	err = uc.txRunner.Run(ctx, func(
		opRepo repository.StockOperationRepository,
		productRepo repository.ProductRepository,
	) error {
		locked, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrProductNotFound
		}
		op.PreviousQuantity = locked.StockQuantity
		switch input.Type {
		case entity.OperationTypeIn:
			op.NewQuantity = locked.StockQuantity + input.Quantity
		case entity.OperationTypeOut:
			op.NewQuantity = locked.StockQuantity - input.Quantity
			if op.NewQuantity < 0 {
				return domain.ErrInsufficientStock
			}
		}
		if err := productRepo.UpdateStock(ctx, input.ProductID, op.NewQuantity); err != nil {
			return err
		}
		return opRepo.Append(ctx, op)
	})
	if err != nil {
		return nil, err
	}

	result := &RecordResult{Operation: op}

	// Reconciliación best-effort: el asiento ya es real y durable; un fallo
	// aquí se reporta como order_updated=false, nunca revierte el stock.
	if input.Type == entity.OperationTypeOut && input.OrderID != "" {
		updated, status, recErr := uc.reconciler.Reconcile(ctx, input.StoreID, input.OrderID)
		if recErr != nil {
			uc.log.Warn().Err(recErr).
				Str("order_id", input.OrderID).
				Str("operation_id", op.ID).
				Msg("reconciliación de orden falló tras registrar la salida")
		} else {
			result.OrderUpdated = updated
			result.OrderStatus = status
		}
	}

	uc.logActivity(op, result)

	return result, nil
}

// logActivity escribe en el log de actividad (fire-and-forget).
func (uc *RecordOperationUseCase) logActivity(op *entity.StockOperation, result *RecordResult) {
	if uc.activityRepo == nil {
		return
	}
	detail := fmt.Sprintf("%s x%d producto=%s (%d -> %d)",
		op.Type, op.Quantity, op.ProductID, op.PreviousQuantity, op.NewQuantity)
	entry := &entity.ActivityEntry{
		StoreID:  op.StoreID,
		StaffID:  op.PerformedBy,
		Action:   "stock_operation.recorded",
		EntityID: op.ID,
		Detail:   detail,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.activityRepo.Append(ctx, entry); err != nil {
			uc.log.Debug().Err(err).Str("operation_id", op.ID).Msg("log de actividad no registrado")
		}
		if result.OrderUpdated {
			shipped := &entity.ActivityEntry{
				StoreID:  op.StoreID,
				StaffID:  op.PerformedBy,
				Action:   "order.shipped",
				EntityID: op.OrderID,
				Detail:   "orden completamente despachada desde el ledger",
			}
			if err := uc.activityRepo.Append(ctx, shipped); err != nil {
				uc.log.Debug().Err(err).Str("order_id", op.OrderID).Msg("log de actividad no registrado")
			}
		}
	}()
}
