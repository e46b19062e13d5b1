package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stockledger-api/internal/application/stock"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/pkg/config"
)

var _ stock.OperationCache = (*OperationCache)(nil)

// TTL del cache. Los asientos son inmutables, así que el TTL solo acota
// memoria: nunca hay riesgo de servir un valor desactualizado.
const operationTTL = 30 * time.Minute

const keyPrefix = "stockop:"

// OperationCache cache-aside de asientos del ledger sobre Redis.
type OperationCache struct {
	client *redis.Client
}

// NewClient crea el cliente Redis y verifica conectividad.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewOperationCache construye el cache sobre un cliente existente.
func NewOperationCache(client *redis.Client) *OperationCache {
	return &OperationCache{client: client}
}

// Get devuelve el asiento cacheado, o nil si no está.
func (c *OperationCache) Get(ctx context.Context, id string) (*entity.StockOperation, error) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached operation: %w", err)
	}
	var op entity.StockOperation
	if err := json.Unmarshal(raw, &op); err != nil {
		// Entrada corrupta: descartarla y resolver en BD
		_ = c.client.Del(ctx, keyPrefix+id).Err()
		return nil, nil
	}
	return &op, nil
}

// Set guarda el asiento con TTL.
func (c *OperationCache) Set(ctx context.Context, op *entity.StockOperation) error {
	raw, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+op.ID, raw, operationTTL).Err(); err != nil {
		return fmt.Errorf("set cached operation: %w", err)
	}
	return nil
}
