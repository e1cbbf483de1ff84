package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/delivery/http/handler"
	"github.com/lawn-quote-service/internal/delivery/http/middleware"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

// Handlers - обработчики, которые монтирует сервер
type Handlers struct {
	Health   *handler.HealthHandler
	Estimate *handler.EstimateHandler
	Session  *handler.SessionHandler
	Pricing  *handler.PricingHandler
	Quote    *handler.QuoteHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Collector
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	collector *metrics.Collector,
	handlers Handlers,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Lawn Quote Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		metrics:  collector,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - доступ к fiber.App (используется в тестах через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger, s.metrics))
	s.app.Use(middleware.CORS(s.config.Server.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	api := s.app.Group("/api/v1")
	h := s.handlers

	api.Get("/health", h.Health.Health)

	api.Post("/estimates", h.Estimate.Estimate)

	// Сессии рисования
	sessions := api.Group("/sessions")
	sessions.Post("/", h.Session.Create)
	sessions.Get("/:id", h.Session.Get)
	sessions.Delete("/:id", h.Session.Delete)
	sessions.Post("/:id/start", h.Session.StartDrawing)
	sessions.Post("/:id/click", h.Session.MapClick)
	sessions.Post("/:id/finish", h.Session.FinishDrawing)
	sessions.Post("/:id/zones", h.Session.AddNewZone)
	sessions.Post("/:id/cancel", h.Session.CancelDrawing)
	sessions.Post("/:id/clear", h.Session.ClearAll)
	sessions.Delete("/:id/polygons/:polygonId", h.Session.DeletePolygon)
	sessions.Put("/:id/polygons/:polygonId/vertices/:index", h.Session.UpdateVertex)
	sessions.Post("/:id/polygons/:polygonId/vertices/:index", h.Session.InsertVertex)
	sessions.Delete("/:id/polygons/:polygonId/vertices/:index", h.Session.RemoveVertex)

	// Цены
	api.Post("/pricing/calculate", h.Pricing.Calculate)
	api.Post("/pricing/validate", h.Pricing.Validate)
	api.Post("/pricing/compare", h.Pricing.Compare)

	// Квоты
	api.Post("/quotes", h.Quote.Create)
	api.Get("/quotes/:id", h.Quote.Get)
	api.Patch("/quotes/:id/status", h.Quote.UpdateStatus)
	api.Post("/quotes/:id/email-sent", h.Quote.MarkEmailSent)

	// Аккаунт
	accounts := api.Group("/accounts/:accountId")
	accounts.Get("/pricing", h.Pricing.GetSettings)
	accounts.Put("/pricing", h.Pricing.UpdateSettings)
	accounts.Get("/quotes", h.Quote.List)
	accounts.Get("/pipeline", h.Quote.Pipeline)
	accounts.Get("/usage", h.Quote.Usage)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, слишком большое тело)
// в том же конверте {error}, что и ответы обработчиков
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(utils.ErrorResponse{
				Error: errors.New(errorCode(fe.Code), fe.Message, fe.Code),
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	}
	if status >= fiber.StatusInternalServerError {
		return errors.ErrInternalServer.Code
	}
	return errors.ErrInvalidRequest.Code
}
