package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/engine/pricing"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// PricingUseCase - настройки цен аккаунта и расчёт цены по площади
type PricingUseCase struct {
	settingsRepo repository.PricingSettingsRepository
	defaults     config.PricingConfig
	logger       *zap.Logger
}

// NewPricingUseCase - создание нового PricingUseCase
func NewPricingUseCase(
	settingsRepo repository.PricingSettingsRepository,
	defaults config.PricingConfig,
	logger *zap.Logger,
) *PricingUseCase {
	return &PricingUseCase{
		settingsRepo: settingsRepo,
		defaults:     defaults,
		logger:       logger,
	}
}

// GetSettings - настройки аккаунта, либо значения по умолчанию если он их не сохранял
func (uc *PricingUseCase) GetSettings(ctx context.Context, accountID uuid.UUID) (*domain.PricingSettings, error) {
	settings, err := uc.settingsRepo.Get(ctx, accountID)
	if err != nil {
		uc.logger.Error("Failed to load pricing settings",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}

	if settings == nil {
		defaults := pricing.DefaultSettings(uc.defaults.DefaultFlatRatePerSqFt, uc.defaults.DefaultUseTiered)
		defaults.AccountID = accountID
		return &defaults, nil
	}

	if len(settings.SqftPricingTiers) == 0 {
		settings.SqftPricingTiers = pricing.DefaultPricingTiers()
	}
	return settings, nil
}

// UpdateSettings - частичное обновление настроек.
// Невалидная шкала отклоняется целиком со списком всех проблем.
func (uc *PricingUseCase) UpdateSettings(
	ctx context.Context,
	accountID uuid.UUID,
	req dto.UpdatePricingSettingsRequest,
) (*domain.PricingSettings, error) {
	settings, err := uc.GetSettings(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.SqftPricingTiers != nil {
		if result := pricing.ValidatePricingTiers(req.SqftPricingTiers); !result.Valid {
			return nil, invalidTiersError(result)
		}
		settings.SqftPricingTiers = domain.CloneTiers(req.SqftPricingTiers)
	}
	if req.UseTieredSqftPricing != nil {
		settings.UseTieredSqftPricing = *req.UseTieredSqftPricing
	}
	if req.FlatRatePerSqFt != nil {
		settings.FlatRatePerSqFt = *req.FlatRatePerSqFt
	}

	if err := uc.settingsRepo.Upsert(ctx, settings); err != nil {
		uc.logger.Error("Failed to save pricing settings",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}

	uc.logger.Info("Pricing settings updated",
		zap.String("account_id", accountID.String()),
		zap.String("mode", string(settings.Mode())),
		zap.Int("tiers", len(settings.SqftPricingTiers)),
	)

	return settings, nil
}

// Calculate - цена площади по действующему режиму аккаунта
func (uc *PricingUseCase) Calculate(ctx context.Context, req dto.CalculatePriceRequest) (*domain.PricingSnapshot, error) {
	snapshot, err := uc.Snapshot(ctx, req.AccountID, req.AreaSqFt)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Snapshot замораживает текущие ставки аккаунта для указанной площади
func (uc *PricingUseCase) Snapshot(ctx context.Context, accountID uuid.UUID, areaSqFt float64) (domain.PricingSnapshot, error) {
	settings, err := uc.GetSettings(ctx, accountID)
	if err != nil {
		return domain.PricingSnapshot{}, err
	}

	// сохранённая ранее шкала могла стать невалидной: считаем как есть, но пишем в лог
	if settings.Mode() == domain.PricingModeTiered {
		if result := pricing.ValidatePricingTiers(settings.SqftPricingTiers); !result.Valid {
			uc.logger.Warn("Pricing with invalid tiers",
				zap.String("account_id", accountID.String()),
				zap.Error(result.Err()),
			)
		}
	}

	return pricing.NewSnapshot(*settings, areaSqFt), nil
}

// ValidateTiers - проверка шкалы без сохранения
func (uc *PricingUseCase) ValidateTiers(tiers []domain.PricingTier) pricing.ValidationResult {
	return pricing.ValidatePricingTiers(tiers)
}

// Compare - сравнение шкалы с единой ставкой
func (uc *PricingUseCase) Compare(ctx context.Context, req dto.ComparePricingRequest) (*pricing.Comparison, error) {
	tiers := req.Tiers
	flatRate := uc.defaults.DefaultFlatRatePerSqFt
	if req.FlatRate != nil {
		flatRate = *req.FlatRate
	}

	if req.AccountID != nil && (tiers == nil || req.FlatRate == nil) {
		settings, err := uc.GetSettings(ctx, *req.AccountID)
		if err != nil {
			return nil, err
		}
		if tiers == nil {
			tiers = settings.SqftPricingTiers
		}
		if req.FlatRate == nil {
			flatRate = settings.FlatRatePerSqFt
		}
	}
	if tiers == nil {
		tiers = pricing.DefaultPricingTiers()
	}

	if result := pricing.ValidatePricingTiers(tiers); !result.Valid {
		return nil, invalidTiersError(result)
	}

	comparison := pricing.ComparePricing(req.AreaSqFt, tiers, flatRate)
	return &comparison, nil
}

func invalidTiersError(result pricing.ValidationResult) error {
	return errors.ErrInvalidPricingTiers.WithDetails(map[string]interface{}{
		"errors": result.Errors,
		"issues": result.Issues,
	})
}
