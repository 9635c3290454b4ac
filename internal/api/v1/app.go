package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"taskmanager/internal/config"
	"taskmanager/internal/middleware"
	myws "taskmanager/internal/websocket"
)

// NewApp builds the fiber app with the global middleware and all routes.
// rateLimit is requests per minute per client IP; 0 disables the limiter.
func NewApp(deps config.Dependencies, hub *myws.Hub, rateLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "taskmanager",
	})

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: 1 * time.Minute,
		}))
	}

	RegisterRoutes(app, deps, hub)
	return app
}
