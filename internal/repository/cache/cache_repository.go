package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// EstimateKey - ключ оценки: ключ места (plus code центра + входы оценщика) + тип участка
func EstimateKey(placeKey string, propertyType domain.PropertyType) string {
	return fmt.Sprintf("estimate:%s:%s", placeKey, propertyType)
}

// GetEstimate получает оценку из кеша
func (r *cacheRepository) GetEstimate(ctx context.Context, placeKey string, propertyType domain.PropertyType) (*domain.Estimate, error) {
	data, err := r.Get(ctx, EstimateKey(placeKey, propertyType))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var estimate domain.Estimate
	if err := json.Unmarshal(data, &estimate); err != nil {
		r.logger.Error("Failed to unmarshal estimate from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal estimate: %w", err)
	}

	return &estimate, nil
}

// SetEstimate сохраняет оценку в кеше
func (r *cacheRepository) SetEstimate(
	ctx context.Context,
	placeKey string,
	propertyType domain.PropertyType,
	estimate *domain.Estimate,
	ttl time.Duration,
) error {
	data, err := json.Marshal(estimate)
	if err != nil {
		r.logger.Error("Failed to marshal estimate", zap.Error(err))
		return fmt.Errorf("marshal estimate: %w", err)
	}

	return r.Set(ctx, EstimateKey(placeKey, propertyType), data, ttl)
}
