package v1

import (
	"github.com/gofiber/fiber/v2"

	"taskmanager/internal/api/v1/handlers"
	"taskmanager/internal/config"
	"taskmanager/internal/middleware"
	myws "taskmanager/internal/websocket"
)

// RegisterRoutes mounts the static-gate pages, the user API and the task
// manager API. hub may be nil, in which case the events route is omitted.
func RegisterRoutes(app *fiber.App, deps config.Dependencies, hub *myws.Hub) {
	h := handlers.New(deps)
	requireUser := middleware.BasicAuth(deps.Store)
	requireStatic := middleware.StaticBasicAuth(deps.StaticUsername, deps.StaticPassword)

	// Pages
	app.Get("/", handlers.Index)
	app.Get("/page", requireStatic, handlers.Page)
	app.Get("/otherpage", requireStatic, handlers.OtherPage)

	// User
	users := app.Group("/api/users")
	users.Post("/", h.CreateUser)
	users.Get("/:id", requireUser, h.GetUser)

	// Task
	tasks := app.Group("/taskmanager/api/v1.0/tasks")
	if hub != nil {
		tasks.Get("/events", requireUser, handlers.RequireUpgrade, handlers.TaskEvents(hub))
	}
	tasks.Post("/", requireUser, h.CreateTask)
	tasks.Get("/", requireUser, h.ListTasks)
	tasks.Get("/:id", requireUser, h.GetTask)
	tasks.Put("/:id", requireUser, h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
}
