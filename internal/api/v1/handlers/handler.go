package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager/internal/config"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/pkg/logger"
)

type Handler struct {
	deps config.Dependencies
}

func New(deps config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

// fail writes the JSON error envelope.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// storeError maps a store error to a response. Validation, conflict and
// not-found all answer 400; the message tells them apart.
func storeError(c *fiber.Ctx, err error, action string) error {
	var message string
	switch {
	case errors.Is(err, repository.ErrValidation):
		message = "Missing arguments"
	case errors.Is(err, repository.ErrConflict):
		message = "Already exists"
	case errors.Is(err, repository.ErrNotFound):
		message = "Not found"
	default:
		logger.ErrorLogger.Error("Error "+action, zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error "+action)
	}
	logger.AuditLogger.Warn("Rejected "+action, zap.String("reason", message), zap.Error(err))
	return fail(c, fiber.StatusBadRequest, message)
}

// parseID reads the :id route parameter.
func parseID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		logger.AuditLogger.Warn("Invalid id", zap.String("id", c.Params("id")))
		return 0, false
	}
	return id, true
}

// actor names the authenticated user for audit logs.
func actor(c *fiber.Ctx) zap.Field {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return zap.String("user", p.Username)
	}
	return zap.Skip()
}
