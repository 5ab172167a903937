package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type RouterOptions struct {
	Version     string
	Env         string
	CORSOrigins []string
}

func SetupRouter(app *fiber.App, handler *Handler, opts RouterOptions) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	if len(opts.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(opts.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": opts.Version,
			"env":     opts.Env,
		})
	})

	// API Versioning
	v1 := app.Group("/api/v1")
	v1.Post("/chat", handler.HandleChat)
	v1.Post("/personalize", handler.HandlePersonalize)
	v1.Post("/translate", handler.HandleTranslate)
	v1.Get("/config/check", handler.HandleConfigCheck)
	v1.Get("/retrieval/health", handler.HandleRetrievalHealth)
}
