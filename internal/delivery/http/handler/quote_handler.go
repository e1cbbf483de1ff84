package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/pkg/validator"
	"github.com/lawn-quote-service/internal/usecase"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// QuoteHandler - квоты, воронка продаж и использование тарифа
type QuoteHandler struct {
	quoteUC *usecase.QuoteUseCase
	logger  *zap.Logger
}

// NewQuoteHandler - создание нового QuoteHandler
func NewQuoteHandler(quoteUC *usecase.QuoteUseCase, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteUC: quoteUC,
		logger:  logger,
	}
}

// Create godoc
// @Summary Сохранение квоты
// @Description Цена считается по текущим настройкам аккаунта и замораживается в квоте. Площадь берётся из сессии рисования, полигонов или area_sqft.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Квота"
// @Success 201 {object} utils.SuccessResponse{data=domain.Quote}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateQuoteRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.Create(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, result)
}

// Get godoc
// @Summary Квота по ID
// @Tags Quotes
// @Produce json
// @Param id path string true "ID квоты"
// @Success 200 {object} utils.SuccessResponse{data=domain.Quote}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// List godoc
// @Summary Квоты аккаунта
// @Tags Quotes
// @Produce json
// @Param accountId path string true "ID аккаунта"
// @Param status query string false "pending, won или lost"
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} utils.SuccessResponse{data=dto.ListQuotesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/accounts/{accountId}/quotes [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	accountID, err := uuidParam(c, "accountId")
	if err != nil {
		return utils.SendError(c, err)
	}

	req := dto.ListQuotesRequest{
		AccountID: accountID,
		Limit:     c.QueryInt("limit", 20),
		Offset:    c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		s := domain.QuoteStatus(status)
		req.Status = &s
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.List(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{
		Total:  result.Total,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// UpdateStatus godoc
// @Summary Закрытие квоты
// @Description Разрешены только переходы pending -> won и pending -> lost
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "ID квоты"
// @Param request body dto.UpdateQuoteStatusRequest true "Новый статус"
// @Success 200 {object} utils.SuccessResponse{data=domain.Quote}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateQuoteStatusRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// MarkEmailSent godoc
// @Summary Отметка об отправке квоты клиенту
// @Tags Quotes
// @Produce json
// @Param id path string true "ID квоты"
// @Success 200 {object} utils.SuccessResponse{data=domain.Quote}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/quotes/{id}/email-sent [post]
func (h *QuoteHandler) MarkEmailSent(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.MarkEmailSent(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Pipeline godoc
// @Summary Воронка продаж аккаунта
// @Tags Quotes
// @Produce json
// @Param accountId path string true "ID аккаунта"
// @Success 200 {object} utils.SuccessResponse{data=domain.PipelineSummary}
// @Router /api/v1/accounts/{accountId}/pipeline [get]
func (h *QuoteHandler) Pipeline(c *fiber.Ctx) error {
	accountID, err := uuidParam(c, "accountId")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.quoteUC.Pipeline(c.UserContext(), accountID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Usage godoc
// @Summary Использование квот за текущий месяц
// @Description Тариф передаётся параметром plan; неизвестный тариф считается starter
// @Tags Quotes
// @Produce json
// @Param accountId path string true "ID аккаунта"
// @Param plan query string false "starter, professional или enterprise" default(starter)
// @Success 200 {object} utils.SuccessResponse{data=domain.OverageInfo}
// @Router /api/v1/accounts/{accountId}/usage [get]
func (h *QuoteHandler) Usage(c *fiber.Ctx) error {
	accountID, err := uuidParam(c, "accountId")
	if err != nil {
		return utils.SendError(c, err)
	}

	plan := domain.PlanTier(c.Query("plan", string(domain.DefaultPlanTier)))
	result, err := h.quoteUC.Usage(c.UserContext(), accountID, plan)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
