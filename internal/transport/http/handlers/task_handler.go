package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/transport/http/dto"
	"github.com/csvflow/backend/internal/transport/http/middleware"
)

type TaskHandler struct {
	submit ports.SubmitService
	query  ports.QueryService
	tasks  ports.TaskRepository
	logger *logger.Logger
}

func NewTaskHandler(submit ports.SubmitService, query ports.QueryService, tasks ports.TaskRepository, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{submit: submit, query: query, tasks: tasks, logger: logger}
}

func (h *TaskHandler) Submit(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req dto.SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if details := req.Validate(); len(details) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	task, err := h.submit.Submit(c.Context(), userID, req.DatasetID, req.ToOperation())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrDatasetNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "dataset not found"})
		case errors.Is(err, domain.ErrDispatch):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("task_submit_handler_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id": task.TaskID,
		"status":  task.Status,
	})
}

func (h *TaskHandler) Status(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	taskID := c.Params("id")

	previewRows := 0
	if raw := c.Query("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid rows parameter"})
		}
		previewRows = n
	}

	view, err := h.query.Query(c.Context(), taskID, userID, previewRows)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "task not found"})
		case errors.Is(err, domain.ErrStorageRead):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("task_status_handler_failed", "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(view)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	tasks, err := h.tasks.GetByUser(c.Context(), userID)
	if err != nil {
		h.logger.Errorw("task_list_failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(tasks)
}
