// handlers/routes.go - Fiber application and route table
package handlers

import (
	"hangeul/config"
	"hangeul/metrics"
	"hangeul/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// NewApp builds the Fiber application with every route registered.
func NewApp(conf *config.Config, h *Handler, auth *middleware.Auth, limiters *middleware.Limiters, rec metrics.Recorder, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "hangeul",
		ErrorHandler:          ErrorHandler(conf.IsProduction()),
		BodyLimit:             conf.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:           conf.Server.ReadTimeout,
		WriteTimeout:          conf.Server.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log, rec))
	app.Use(middleware.RequestTimeout(conf.Server.RequestTimeout))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     conf.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: conf.Server.CORSOrigins != "*",
	}))
	app.Use(limiters.General())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(rec.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth", limiters.Auth())
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	requireAuth := auth.Required()

	users := api.Group("/users", requireAuth)
	users.Get("/me", h.Me)
	users.Put("/me", h.UpdateMe)

	grammar := api.Group("/grammar", requireAuth)
	grammar.Get("", h.ListGrammar)
	grammar.Post("", h.CreateGrammar)
	grammar.Put("/:id", h.UpdateGrammar)
	grammar.Delete("/:id", h.DeleteGrammar)

	vocabulary := api.Group("/vocabulary", requireAuth)
	vocabulary.Get("", h.ListVocabulary)
	vocabulary.Post("", h.CreateVocabulary)
	vocabulary.Post("/import", h.ImportVocabulary)
	vocabulary.Delete("/:id", h.DeleteVocabulary)

	api.Post("/activity/heartbeat", requireAuth, limiters.Heartbeat(), h.Heartbeat)

	quiz := api.Group("/quiz", requireAuth)
	quiz.Post("/check-answer", h.CheckAnswer)
	quiz.Post("/reset/:domain", h.ResetAsked)
	quiz.Get("/:type", h.GetQuiz)
	quiz.Post("/:type/submit", h.SubmitQuiz)

	progress := api.Group("/progress", requireAuth)
	progress.Get("/dashboard", h.Dashboard)
	progress.Get("/streak", h.Streak)
	progress.Get("/achievements", h.Achievements)
	progress.Get("/challenges", h.Challenges)

	app.Use("/ws", UpgradeWebSocket)
	app.Get("/ws", auth.WebSocket(), h.WebSocket())

	return app
}
