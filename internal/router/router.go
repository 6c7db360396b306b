package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gradefetcher-api/internal/config"
	"github.com/noah-isme/gradefetcher-api/internal/handler"
	"github.com/noah-isme/gradefetcher-api/internal/middleware"
	"github.com/noah-isme/gradefetcher-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	BlockHandler  *handler.BlockHandler
	GradeHandler  *handler.GradeHandler
	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	blocks := api.Group("/blocks", jwtMiddleware)

	if deps.BlockHandler != nil {
		deps.BlockHandler.Register(blocks)
	}

	if deps.GradeHandler != nil {
		// Grade fetches hit an external grading service, so keep the
		// per-user rate limit tight.
		blocks.Use("/:id/grade", middleware.RateLimit("grade", 10, time.Minute))
		deps.GradeHandler.Register(blocks)
	}
}
