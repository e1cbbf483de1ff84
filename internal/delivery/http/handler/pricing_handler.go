package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// PricingHandler - настройки цен и расчёт цены по площади
type PricingHandler struct {
	pricingUC *usecase.PricingUseCase
	logger    *zap.Logger
}

// NewPricingHandler - создание нового PricingHandler
func NewPricingHandler(pricingUC *usecase.PricingUseCase, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		pricingUC: pricingUC,
		logger:    logger,
	}
}

// Calculate godoc
// @Summary Цена площади по настройкам аккаунта
// @Description Считает цену по действующему режиму аккаунта (маржинальная шкала или единая ставка) и возвращает снимок ставок с разбивкой по уровням
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.CalculatePriceRequest true "Аккаунт и площадь"
// @Success 200 {object} utils.SuccessResponse{data=domain.PricingSnapshot}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/pricing/calculate [post]
func (h *PricingHandler) Calculate(c *fiber.Ctx) error {
	var req dto.CalculatePriceRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.pricingUC.Calculate(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Validate godoc
// @Summary Проверка шкалы цен
// @Description Возвращает все проблемы шкалы сразу; valid=false не является ошибкой запроса
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.ValidateTiersRequest true "Шкала"
// @Success 200 {object} utils.SuccessResponse{data=pricing.ValidationResult}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/pricing/validate [post]
func (h *PricingHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateTiersRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, h.pricingUC.ValidateTiers(req.Tiers), nil)
}

// Compare godoc
// @Summary Сравнение шкалы и единой ставки
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.ComparePricingRequest true "Площадь и (опционально) шкала, ставка или аккаунт"
// @Success 200 {object} utils.SuccessResponse{data=pricing.Comparison}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/pricing/compare [post]
func (h *PricingHandler) Compare(c *fiber.Ctx) error {
	var req dto.ComparePricingRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.pricingUC.Compare(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// GetSettings godoc
// @Summary Настройки цен аккаунта
// @Tags Pricing
// @Produce json
// @Param accountId path string true "ID аккаунта"
// @Success 200 {object} utils.SuccessResponse{data=domain.PricingSettings}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/accounts/{accountId}/pricing [get]
func (h *PricingHandler) GetSettings(c *fiber.Ctx) error {
	accountID, err := uuidParam(c, "accountId")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.pricingUC.GetSettings(c.UserContext(), accountID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// UpdateSettings godoc
// @Summary Изменение настроек цен аккаунта
// @Description Частичное обновление. Невалидная шкала отклоняется целиком, details.errors содержит все сообщения.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param accountId path string true "ID аккаунта"
// @Param request body dto.UpdatePricingSettingsRequest true "Изменяемые поля"
// @Success 200 {object} utils.SuccessResponse{data=domain.PricingSettings}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/accounts/{accountId}/pricing [put]
func (h *PricingHandler) UpdateSettings(c *fiber.Ctx) error {
	accountID, err := uuidParam(c, "accountId")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdatePricingSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.pricingUC.UpdateSettings(c.UserContext(), accountID, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
