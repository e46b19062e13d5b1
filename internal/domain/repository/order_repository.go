package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// OrderRepository puerto de lectura/avance de órdenes (colaborador).
type OrderRepository interface {
	// GetByID devuelve la orden con sus renglones, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}
