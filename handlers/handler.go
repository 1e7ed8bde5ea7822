// handlers/handler.go - Shared dependencies of the HTTP handlers
package handlers

import (
	"context"
	"errors"
	"time"

	"hangeul/config"
	"hangeul/middleware"
	"hangeul/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Handler serves the JSON API. Writes go through the Engine hooks so derived
// state stays in step with the primary rows.
type Handler struct {
	db       *gorm.DB
	auth     *middleware.Auth
	clock    *services.Clock
	engine   *services.Engine
	content  *services.ContentService
	quizzes  *services.QuizTracker
	importer *services.VocabularyImporter
	hub      *services.Hub
	log      zerolog.Logger

	// requestTimeout bounds work done outside the HTTP middleware chain,
	// such as websocket frames.
	requestTimeout time.Duration
}

func New(
	conf *config.Config,
	db *gorm.DB,
	auth *middleware.Auth,
	clock *services.Clock,
	engine *services.Engine,
	content *services.ContentService,
	quizzes *services.QuizTracker,
	importer *services.VocabularyImporter,
	hub *services.Hub,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		db:       db,
		auth:     auth,
		clock:    clock,
		engine:   engine,
		content:  content,
		quizzes:  quizzes,
		importer: importer,
		hub:      hub,
		log:      log.With().Str("component", "http").Logger(),

		requestTimeout: conf.Server.RequestTimeout,
	}
}

// boundedContext derives a context carrying the configured request timeout.
func (h *Handler) boundedContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.requestTimeout)
}

// serviceError maps service sentinels to HTTP errors; anything else is left
// for the error handler to report as a 500.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidQuizType),
		errors.Is(err, services.ErrInvalidDomain),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrMalformedImport):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

// ErrorHandler writes {"success": false, "error": ...}. Messages of internal
// errors are hidden in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else if !production {
			message = err.Error()
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
