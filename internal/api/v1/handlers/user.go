package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager/pkg/logger"
)

type createUserRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// CreateUser registers a new user. No authentication required.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.AuditLogger.Warn("Bad request in create user", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.deps.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create user", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Missing arguments")
	}

	user, err := h.deps.Store.CreateUser(c.UserContext(), *req.Username, *req.Password)
	if err != nil {
		return storeError(c, err, "creating user")
	}

	logger.AuditLogger.Info("User created", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	c.Location(fmt.Sprintf("%s/api/users/%d", c.BaseURL(), user.ID))
	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.deps.Store.GetUser(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "fetching user")
	}
	return c.JSON(user.Public())
}
