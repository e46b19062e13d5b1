package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.StockOperationRepository = (*StockOperationRepo)(nil)

// StockOperationRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// La tabla stock_operations es append-only: este repo no expone UPDATE ni DELETE.
type StockOperationRepo struct {
	q Querier
}

// NewStockOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockOperationRepository(q Querier) *StockOperationRepo {
	return &StockOperationRepo{q: q}
}

// Append persiste un asiento del ledger. Genera ID y timestamp si faltan.
func (r *StockOperationRepo) Append(ctx context.Context, op *entity.StockOperation) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.PerformedAt.IsZero() {
		op.PerformedAt = time.Now()
	}
	query := `
		INSERT INTO stock_operations
			(id, store_id, product_id, order_id, type, quantity, previous_quantity, new_quantity, reason, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	orderID := (*string)(nil)
	if op.OrderID != "" {
		orderID = &op.OrderID
	}
	reason := (*string)(nil)
	if op.Reason != "" {
		reason = &op.Reason
	}
	_, err := r.q.Exec(ctx, query,
		op.ID, op.StoreID, op.ProductID, orderID, op.Type,
		op.Quantity, op.PreviousQuantity, op.NewQuantity,
		reason, op.PerformedBy, op.PerformedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Reintento con el mismo ID: el asiento ya quedó registrado
			return domain.ErrConflict
		}
		return fmt.Errorf("append stock operation: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID, o nil si no existe.
func (r *StockOperationRepo) GetByID(ctx context.Context, id string) (*entity.StockOperation, error) {
	query := `
		SELECT id, store_id, product_id, order_id, type, quantity, previous_quantity, new_quantity, reason, performed_by, performed_at
		FROM stock_operations WHERE id = $1`
	var op entity.StockOperation
	var orderID, reason *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&op.ID, &op.StoreID, &op.ProductID, &orderID, &op.Type,
		&op.Quantity, &op.PreviousQuantity, &op.NewQuantity,
		&reason, &op.PerformedBy, &op.PerformedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock operation: %w", err)
	}
	if orderID != nil {
		op.OrderID = *orderID
	}
	if reason != nil {
		op.Reason = *reason
	}
	return &op, nil
}

// Query lista asientos filtrados, más recientes primero, con campos de
// presentación del producto y el total que satisface el filtro.
func (r *StockOperationRepo) Query(ctx context.Context, filter entity.OperationFilter, limit, offset int) ([]*entity.OperationWithProduct, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.StoreID != "" {
		where += fmt.Sprintf(" AND o.store_id = $%d", pos)
		args = append(args, filter.StoreID)
		pos++
	}
	if filter.ProductID != "" {
		where += fmt.Sprintf(" AND o.product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.OrderID != "" {
		where += fmt.Sprintf(" AND o.order_id = $%d", pos)
		args = append(args, filter.OrderID)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND o.type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.PerformedBy != "" {
		where += fmt.Sprintf(" AND o.performed_by = $%d", pos)
		args = append(args, filter.PerformedBy)
		pos++
	}

	countQuery := "SELECT COUNT(*) FROM stock_operations o" + where
	var total int64
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock operations: %w", err)
	}

	query := `
		SELECT o.id, o.store_id, o.product_id, o.order_id, o.type, o.quantity,
		       o.previous_quantity, o.new_quantity, o.reason, o.performed_by, o.performed_at,
		       p.name, p.sku
		FROM stock_operations o
		JOIN products p ON p.id = o.product_id` + where +
		fmt.Sprintf(" ORDER BY o.performed_at DESC, o.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query stock operations: %w", err)
	}
	defer rows.Close()

	var list []*entity.OperationWithProduct
	for rows.Next() {
		var v entity.OperationWithProduct
		var orderID, reason *string
		if err := rows.Scan(
			&v.ID, &v.StoreID, &v.ProductID, &orderID, &v.Type,
			&v.Quantity, &v.PreviousQuantity, &v.NewQuantity,
			&reason, &v.PerformedBy, &v.PerformedAt,
			&v.ProductName, &v.ProductSKU,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock operation: %w", err)
		}
		if orderID != nil {
			v.OrderID = *orderID
		}
		if reason != nil {
			v.Reason = *reason
		}
		list = append(list, &v)
	}
	return list, total, rows.Err()
}

// SumOutByOrder agrupa las salidas ligadas a una orden por producto.
// Es la lectura con la que el reconciliador deriva el cumplimiento.
func (r *StockOperationRepo) SumOutByOrder(ctx context.Context, orderID string) (map[string]int64, error) {
	query := `
		SELECT product_id, COALESCE(SUM(quantity), 0)
		FROM stock_operations
		WHERE order_id = $1 AND type = 'out'
		GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("sum out by order: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var productID string
		var qty int64
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan order sum: %w", err)
		}
		sums[productID] = qty
	}
	return sums, rows.Err()
}
