package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager/internal/models"
	"taskmanager/pkg/logger"
)

const tasksPath = "/taskmanager/api/v1.0/tasks"

type createTaskRequest struct {
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Done        *bool   `json:"done" validate:"required"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.AuditLogger.Warn("Bad request in create task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.deps.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Missing arguments")
	}

	task, err := h.deps.Store.CreateTask(c.UserContext(), *req.Title, *req.Description, req.Done)
	if err != nil {
		return storeError(c, err, "creating task")
	}

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), actor(c))
	h.deps.Events.Publish(models.TaskEvent{Event: models.TaskCreated, Task: task})

	c.Location(fmt.Sprintf("%s%s/%d", c.BaseURL(), tasksPath, task.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task.Title})
}

// ListTasks answers 400 when there are no tasks.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.deps.Store.ListTasks(c.UserContext())
	if err != nil {
		return storeError(c, err, "listing tasks")
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}
	task, err := h.deps.Store.GetTask(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "fetching task")
	}
	return c.JSON(fiber.Map{"task": task.Title})
}

// UpdateTask applies whichever of title, description and done the body
// carries.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}
	var patch models.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		logger.AuditLogger.Warn("Bad request in update task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	task, err := h.deps.Store.UpdateTask(c.UserContext(), id, patch)
	if err != nil {
		return storeError(c, err, "updating task")
	}

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", id), actor(c))
	h.deps.Events.Publish(models.TaskEvent{Event: models.TaskUpdated, Task: task})
	return c.JSON(fiber.Map{"task": task.Title})
}

// DeleteTask is reachable without credentials.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}
	if err := h.deps.Store.DeleteTask(c.UserContext(), id); err != nil {
		return storeError(c, err, "deleting task")
	}

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", id))
	h.deps.Events.Publish(models.TaskEvent{Event: models.TaskDeleted, Task: models.Task{ID: id}})
	return c.JSON(fiber.Map{"Delete Status": "Success"})
}
