package stock

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// FulfillmentReconciler deriva el estado de cumplimiento de una orden desde
// el ledger. No persiste contadores propios: recalcula las salidas acumuladas
// en cada invocación, lo que lo hace idempotente y seguro de reintentar.
type FulfillmentReconciler struct {
	orderRepo  repository.OrderRepository
	ledgerRepo repository.StockOperationRepository
	log        *logger.Logger
}

// NewFulfillmentReconciler construye el reconciliador.
func NewFulfillmentReconciler(
	orderRepo repository.OrderRepository,
	ledgerRepo repository.StockOperationRepository,
	log *logger.Logger,
) *FulfillmentReconciler {
	return &FulfillmentReconciler{orderRepo: orderRepo, ledgerRepo: ledgerRepo, log: log}
}

// Reconcile compara las salidas acumuladas por producto contra lo pedido en
// cada renglón de la orden. Si todo renglón está cubierto y el estado actual
// es pending o processing, la avanza a shipped. Cualquier otro estado se deja
// intacto: esta es la única transición que realiza el motor.
func (r *FulfillmentReconciler) Reconcile(ctx context.Context, storeID, orderID string) (updated bool, status string, err error) {
	order, err := r.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return false, "", err
	}
	if order == nil || order.StoreID != storeID {
		return false, "", domain.ErrOrderNotFound
	}
	if !order.CanShip() {
		// shipped/delivered/cancelled/etc.: nada que hacer, jamás se revierte
		return false, order.Status, nil
	}
	if len(order.Items) == 0 {
		return false, order.Status, nil
	}

	shippedByProduct, err := r.ledgerRepo.SumOutByOrder(ctx, orderID)
	if err != nil {
		return false, order.Status, err
	}
	for _, item := range order.Items {
		if shippedByProduct[item.ProductID] < item.Quantity {
			return false, order.Status, nil
		}
	}

	if err := r.orderRepo.UpdateStatus(ctx, orderID, entity.OrderStatusShipped); err != nil {
		return false, order.Status, err
	}
	r.log.Info().Str("order_id", orderID).Msg("orden avanzada a shipped desde el ledger")
	return true, entity.OrderStatusShipped, nil
}
