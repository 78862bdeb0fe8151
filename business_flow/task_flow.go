// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"context"
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"gorm.io/gorm"
)

// TaskFlow manages admin tasks and notes attached to accounts
type TaskFlow interface {
	CreateTask(ctx context.Context, req *dto.CreateTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error)
	CompleteTask(ctx context.Context, req *dto.CompleteTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, req *dto.ListTasksRequest, metadata *ClientMetadata) (*dto.ListTasksResponse, error)
	DeleteTask(ctx context.Context, taskID uint, adminID uint, metadata *ClientMetadata) error
}

// TaskFlowImpl implements TaskFlow
type TaskFlowImpl struct {
	taskRepo    repository.TaskRepository
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewTaskFlow(
	taskRepo repository.TaskRepository,
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) TaskFlow {
	return &TaskFlowImpl{
		taskRepo:    taskRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// CreateTask creates a task or note against an account
func (f *TaskFlowImpl) CreateTask(ctx context.Context, req *dto.CreateTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error) {
	if req == nil || req.Title == "" {
		return nil, NewBusinessError("TASK_VALIDATION_FAILED", "Task title is required", ErrTaskTitleRequired)
	}

	account, err := f.accountRepo.ByID(ctx, req.AccountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	task := &models.Task{
		Kind:      req.Kind,
		AccountID: account.ID,
		MemberID:  req.MemberID,
		Title:     req.Title,
		Body:      req.Body,
		Status:    models.TaskStatusOpen,
		AdminID:   utils.ToPtr(adminID),
		DueAt:     req.DueAt,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.taskRepo.Save(txCtx, task); err != nil {
			return err
		}
		action := models.AuditActionTaskCreated
		if task.IsNote() {
			action = models.AuditActionNoteCreated
		}
		return f.recordTaskEvent(txCtx, action, task, adminID, metadata)
	})
	if err != nil {
		return nil, NewBusinessError("TASK_CREATE_FAILED", "Failed to create task", err)
	}

	return &dto.TaskResponse{Message: "Task created", Task: ToTaskDTO(*task)}, nil
}

// UpdateTask edits a task or note
func (f *TaskFlowImpl) UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error) {
	if req == nil || req.TaskID == 0 {
		return nil, NewBusinessError("TASK_VALIDATION_FAILED", "Task id is required", ErrTaskNotFound)
	}

	task, err := f.taskRepo.ByID(ctx, req.TaskID)
	if err != nil {
		return nil, NewBusinessError("TASK_LOOKUP_FAILED", "Failed to lookup task", err)
	}
	if task == nil {
		return nil, NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Body != nil {
		task.Body = req.Body
	}
	if req.DueAt != nil {
		task.DueAt = req.DueAt
	}

	if err := f.taskRepo.Update(ctx, task); err != nil {
		return nil, NewBusinessError("TASK_UPDATE_FAILED", "Failed to update task", err)
	}

	return &dto.TaskResponse{Message: "Task updated", Task: ToTaskDTO(*task)}, nil
}

// CompleteTask marks a task done. Notes carry no completion state.
func (f *TaskFlowImpl) CompleteTask(ctx context.Context, req *dto.CompleteTaskRequest, adminID uint, metadata *ClientMetadata) (*dto.TaskResponse, error) {
	if req == nil || req.TaskID == 0 {
		return nil, NewBusinessError("TASK_VALIDATION_FAILED", "Task id is required", ErrTaskNotFound)
	}

	task, err := f.taskRepo.ByID(ctx, req.TaskID)
	if err != nil {
		return nil, NewBusinessError("TASK_LOOKUP_FAILED", "Failed to lookup task", err)
	}
	if task == nil {
		return nil, NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}
	if task.IsNote() {
		return nil, NewBusinessError("NOTE_NOT_COMPLETABLE", "Notes have no completion state", ErrNoteNotCompletable)
	}
	if task.Status == models.TaskStatusCompleted {
		return nil, NewBusinessError("TASK_ALREADY_COMPLETED", "Task already completed", ErrTaskAlreadyCompleted)
	}

	task.Status = models.TaskStatusCompleted
	task.DoneAt = utils.UTCNowPtr()

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.taskRepo.Update(txCtx, task); err != nil {
			return err
		}
		return f.recordTaskEvent(txCtx, models.AuditActionTaskCompleted, task, adminID, metadata)
	})
	if err != nil {
		return nil, NewBusinessError("TASK_COMPLETE_FAILED", "Failed to complete task", err)
	}

	return &dto.TaskResponse{Message: "Task completed", Task: ToTaskDTO(*task)}, nil
}

// ListTasks pages through the tasks and notes of one account
func (f *TaskFlowImpl) ListTasks(ctx context.Context, req *dto.ListTasksRequest, metadata *ClientMetadata) (*dto.ListTasksResponse, error) {
	if req == nil || req.AccountID == "" {
		return nil, NewBusinessError("TASK_VALIDATION_FAILED", "Account id is required", ErrAccountNotFound)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("TASK_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.TaskFilter{
		AccountID: utils.ToPtr(req.AccountID),
		Kind:      req.Kind,
		Status:    req.Status,
	}

	tasks, err := f.taskRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("TASK_LIST_FAILED", "Failed to list tasks", err)
	}
	total, err := f.taskRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("TASK_LIST_FAILED", "Failed to count tasks", err)
	}

	items := make([]dto.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, ToTaskDTO(*t))
	}

	return &dto.ListTasksResponse{
		Message:    "Tasks retrieved",
		Items:      items,
		Pagination: dto.Pagination{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// DeleteTask removes a task or note
func (f *TaskFlowImpl) DeleteTask(ctx context.Context, taskID uint, adminID uint, metadata *ClientMetadata) error {
	task, err := f.taskRepo.ByID(ctx, taskID)
	if err != nil {
		return NewBusinessError("TASK_LOOKUP_FAILED", "Failed to lookup task", err)
	}
	if task == nil {
		return NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}

	if err := f.taskRepo.Delete(ctx, taskID); err != nil {
		return NewBusinessError("TASK_DELETE_FAILED", "Failed to delete task", err)
	}
	return nil
}

func (f *TaskFlowImpl) recordTaskEvent(ctx context.Context, action string, task *models.Task, adminID uint, metadata *ClientMetadata) error {
	entry := &models.AuditLog{
		AccountID:   utils.ToPtr(task.AccountID),
		MemberID:    task.MemberID,
		AdminID:     utils.ToPtr(adminID),
		Action:      action,
		Description: utils.ToPtr(task.Title),
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		entry.RequestID = utils.ToPtr(metadata.RequestID)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record task event %s: %v", action, err)
		return err
	}
	return nil
}
