package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/domain"
)

// PricingSettingsRepository - настройки цен аккаунтов
type PricingSettingsRepository interface {
	// Get возвращает настройки или nil, nil если аккаунт их не сохранял
	Get(ctx context.Context, accountID uuid.UUID) (*domain.PricingSettings, error)
	Upsert(ctx context.Context, settings *domain.PricingSettings) error
}
