package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// SessionHandler - ручное рисование зон
type SessionHandler struct {
	sessionUC *usecase.SessionUseCase
	logger    *zap.Logger
}

// NewSessionHandler - создание нового SessionHandler
func NewSessionHandler(sessionUC *usecase.SessionUseCase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

// Create godoc
// @Summary Новая сессия рисования
// @Tags Sessions
// @Produce json
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	result, err := h.sessionUC.Create(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, result)
}

// Get godoc
// @Summary Состояние сессии рисования
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.Get)
}

// Delete godoc
// @Summary Удаление сессии рисования
// @Tags Sessions
// @Param id path string true "ID сессии"
// @Success 204
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessionUC.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartDrawing godoc
// @Summary Начать новый контур
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/start [post]
func (h *SessionHandler) StartDrawing(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.StartDrawing)
}

// MapClick godoc
// @Summary Клик по карте
// @Description В режиме рисования добавляет точку в текущий контур, иначе клик игнорируется (accepted=false)
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.MapClickRequest true "Точка"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/click [post]
func (h *SessionHandler) MapClick(c *fiber.Ctx) error {
	var req dto.MapClickRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	return h.respond(c, func(ctx context.Context, id string) (*dto.SessionResponse, error) {
		return h.sessionUC.MapClick(ctx, id, req.Point)
	})
}

// FinishDrawing godoc
// @Summary Замкнуть контур
// @Description Нужно минимум 3 точки; иначе состояние не меняется и committed отсутствует
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/finish [post]
func (h *SessionHandler) FinishDrawing(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.FinishDrawing)
}

// AddNewZone godoc
// @Summary Сохранить контур и начать следующую зону
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/zones [post]
func (h *SessionHandler) AddNewZone(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.AddNewZone)
}

// CancelDrawing godoc
// @Summary Отменить текущий контур
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Router /api/v1/sessions/{id}/cancel [post]
func (h *SessionHandler) CancelDrawing(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.CancelDrawing)
}

// ClearAll godoc
// @Summary Удалить все зоны
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Router /api/v1/sessions/{id}/clear [post]
func (h *SessionHandler) ClearAll(c *fiber.Ctx) error {
	return h.respond(c, h.sessionUC.ClearAll)
}

// UpdateVertex godoc
// @Summary Переместить вершину
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param polygonId path string true "ID полигона"
// @Param index path int true "Индекс вершины"
// @Param request body dto.VertexRequest true "Новая позиция"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/polygons/{polygonId}/vertices/{index} [put]
func (h *SessionHandler) UpdateVertex(c *fiber.Ctx) error {
	return h.vertexEdit(c, h.sessionUC.UpdateVertex)
}

// InsertVertex godoc
// @Summary Вставить вершину перед index
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param polygonId path string true "ID полигона"
// @Param index path int true "Позиция вставки (равна числу вершин - в конец)"
// @Param request body dto.VertexRequest true "Точка"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/polygons/{polygonId}/vertices/{index} [post]
func (h *SessionHandler) InsertVertex(c *fiber.Ctx) error {
	return h.vertexEdit(c, h.sessionUC.InsertVertex)
}

// RemoveVertex godoc
// @Summary Удалить вершину
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Param polygonId path string true "ID полигона"
// @Param index path int true "Индекс вершины"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/polygons/{polygonId}/vertices/{index} [delete]
func (h *SessionHandler) RemoveVertex(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	polygonID := c.Params("polygonId")
	return h.respond(c, func(ctx context.Context, id string) (*dto.SessionResponse, error) {
		return h.sessionUC.RemoveVertex(ctx, id, polygonID, index)
	})
}

// DeletePolygon godoc
// @Summary Удалить зону
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Param polygonId path string true "ID полигона"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/polygons/{polygonId} [delete]
func (h *SessionHandler) DeletePolygon(c *fiber.Ctx) error {
	polygonID := c.Params("polygonId")
	return h.respond(c, func(ctx context.Context, id string) (*dto.SessionResponse, error) {
		return h.sessionUC.DeletePolygon(ctx, id, polygonID)
	})
}

type vertexEditFunc func(ctx context.Context, id, polygonID string, index int, point domain.LatLng) (*dto.SessionResponse, error)

func (h *SessionHandler) vertexEdit(c *fiber.Ctx, edit vertexEditFunc) error {
	index, err := indexParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.VertexRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	polygonID := c.Params("polygonId")
	return h.respond(c, func(ctx context.Context, id string) (*dto.SessionResponse, error) {
		return edit(ctx, id, polygonID, index, req.Point)
	})
}

func (h *SessionHandler) respond(c *fiber.Ctx, op func(ctx context.Context, id string) (*dto.SessionResponse, error)) error {
	result, err := op(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
