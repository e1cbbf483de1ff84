package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// EstimateHandler - оценка площади газона
type EstimateHandler struct {
	estimationUC *usecase.EstimationUseCase
	logger       *zap.Logger
}

// NewEstimateHandler - создание нового EstimateHandler
func NewEstimateHandler(estimationUC *usecase.EstimationUseCase, logger *zap.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimationUC: estimationUC,
		logger:       logger,
	}
}

// Estimate godoc
// @Summary Оценка площади газона по месту
// @Description Оценивает площадь газона по viewport/bounds геокодера, строит прямоугольные полигоны двора и пересчитывает их площадь из вершин. С account_id добавляет цену, с session_id подставляет полигоны в сессию рисования.
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body dto.EstimateRequest true "Место и тип участка"
// @Success 200 {object} utils.SuccessResponse{data=dto.EstimateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/estimates [post]
func (h *EstimateHandler) Estimate(c *fiber.Ctx) error {
	var req dto.EstimateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.estimationUC.Estimate(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
