package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ActivityLogRepository puerto del log de actividad (solo escritura desde este módulo).
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *entity.ActivityEntry) error
}
