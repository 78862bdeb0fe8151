// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/app/middleware"
	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// TaskHandlerInterface defines the contract for task and note endpoints
type TaskHandlerInterface interface {
	CreateTask(c fiber.Ctx) error
	UpdateTask(c fiber.Ctx) error
	CompleteTask(c fiber.Ctx) error
	ListTasks(c fiber.Ctx) error
	DeleteTask(c fiber.Ctx) error
}

// TaskHandler implements TaskHandlerInterface
type TaskHandler struct {
	flow      businessflow.TaskFlow
	validator *validator.Validate
}

func NewTaskHandler(flow businessflow.TaskFlow) TaskHandlerInterface {
	return &TaskHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// CreateTask creates a task or note against an account
// @Summary Create task or note
// @Description Attach a task or note to an account, optionally pinned to one member
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task data"
// @Success 201 {object} dto.APIResponse{data=dto.TaskResponse} "Task created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Router /api/v1/admin/tasks [post]
func (h *TaskHandler) CreateTask(c fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	resp, err := h.flow.CreateTask(createRequestContext(c, "/api/v1/admin/tasks"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		log.Println("Task creation failed", err)
		return businessErrorResponse(c, err, "Failed to create task", "TASK_CREATE_FAILED")
	}

	return successResponse(c, fiber.StatusCreated, resp.Message, resp)
}

// UpdateTask edits a task or note
// @Summary Update task
// @Description Edit the title, body, or due date of a task or note
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.UpdateTaskRequest true "Task data"
// @Success 200 {object} dto.APIResponse{data=dto.TaskResponse} "Task updated"
// @Failure 404 {object} dto.APIResponse "Task not found"
// @Router /api/v1/admin/tasks [put]
func (h *TaskHandler) UpdateTask(c fiber.Ctx) error {
	var req dto.UpdateTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	resp, err := h.flow.UpdateTask(createRequestContext(c, "/api/v1/admin/tasks"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Task not found", "TASK_NOT_FOUND", nil)
		}
		log.Println("Task update failed", err)
		return businessErrorResponse(c, err, "Failed to update task", "TASK_UPDATE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// CompleteTask marks a task done
// @Summary Complete task
// @Description Mark a task completed. Notes carry no completion state.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.CompleteTaskRequest true "Task data"
// @Success 200 {object} dto.APIResponse{data=dto.TaskResponse} "Task completed"
// @Failure 404 {object} dto.APIResponse "Task not found"
// @Failure 409 {object} dto.APIResponse "Task already completed"
// @Failure 422 {object} dto.APIResponse "Notes cannot be completed"
// @Router /api/v1/admin/tasks/complete [post]
func (h *TaskHandler) CompleteTask(c fiber.Ctx) error {
	var req dto.CompleteTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	resp, err := h.flow.CompleteTask(createRequestContext(c, "/api/v1/admin/tasks/complete"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Task not found", "TASK_NOT_FOUND", nil)
		}
		if businessflow.IsTaskAlreadyCompleted(err) {
			return errorResponse(c, fiber.StatusConflict, "Task already completed", "TASK_ALREADY_COMPLETED", nil)
		}
		if businessflow.IsNoteNotCompletable(err) {
			return errorResponse(c, fiber.StatusUnprocessableEntity, "Notes cannot be completed", "NOTE_NOT_COMPLETABLE", nil)
		}
		log.Println("Task completion failed", err)
		return businessErrorResponse(c, err, "Failed to complete task", "TASK_COMPLETE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// ListTasks pages through the tasks of one account
// @Summary List tasks
// @Description Page through the tasks and notes of one account
// @Tags Tasks
// @Produce json
// @Param id path string true "Account ID"
// @Param kind query string false "Kind filter" Enums(task, note)
// @Param status query string false "Status filter" Enums(open, completed)
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListTasksResponse} "Tasks retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/admin/accounts/{id}/tasks [get]
func (h *TaskHandler) ListTasks(c fiber.Ctx) error {
	req := dto.ListTasksRequest{
		AccountID: c.Params("id"),
		Page:      fiber.Query[int](c, "page"),
		PageSize:  fiber.Query[int](c, "page_size"),
	}
	if kind := c.Query("kind"); kind != "" {
		req.Kind = &kind
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.ListTasks(createRequestContext(c, "/api/v1/admin/accounts/:id/tasks"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Task list failed", err)
		return businessErrorResponse(c, err, "Failed to list tasks", "TASK_LIST_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// DeleteTask removes a task or note
// @Summary Delete task
// @Description Delete one task or note
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.APIResponse "Task deleted"
// @Failure 404 {object} dto.APIResponse "Task not found"
// @Router /api/v1/admin/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c fiber.Ctx) error {
	taskID := fiber.Params[uint](c, "id")
	if taskID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "Task id is required", "INVALID_REQUEST", nil)
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	if err := h.flow.DeleteTask(createRequestContext(c, "/api/v1/admin/tasks/:id"), taskID, adminID, clientMetadata(c)); err != nil {
		if businessflow.IsTaskNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Task not found", "TASK_NOT_FOUND", nil)
		}
		log.Println("Task deletion failed", err)
		return businessErrorResponse(c, err, "Failed to delete task", "TASK_DELETE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Task deleted", nil)
}
