package repository

import (
	"context"
	"time"

	"github.com/lawn-quote-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil, nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetEstimate получает кешированную оценку по ключу места и типу участка
	GetEstimate(ctx context.Context, placeKey string, propertyType domain.PropertyType) (*domain.Estimate, error)

	// SetEstimate сохраняет оценку
	SetEstimate(ctx context.Context, placeKey string, propertyType domain.PropertyType, estimate *domain.Estimate, ttl time.Duration) error
}
