package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/validator"
)

var errInvalidBody = errors.ErrInvalidRequest.WithMessage("Invalid request body")

// parseBody - разбор JSON тела и проверка validate-тегов
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validator.Validate(out)
}

// uuidParam - path-параметр в виде UUID
func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			name: "uuid",
		})
	}
	return id, nil
}

// indexParam - неотрицательный индекс вершины из пути
func indexParam(c *fiber.Ctx) (int, error) {
	index, err := c.ParamsInt("index")
	if err != nil {
		return 0, errors.ErrVertexOutOfRange
	}
	return index, nil
}
