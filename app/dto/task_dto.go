package dto

import "time"

// TaskDTO is one task or note attached to an account
type TaskDTO struct {
	ID        uint       `json:"id"`
	Kind      string     `json:"kind" example:"task"`
	AccountID string     `json:"account_id"`
	MemberID  *string    `json:"member_id,omitempty"`
	Title     string     `json:"title"`
	Body      *string    `json:"body,omitempty"`
	Status    string     `json:"status" example:"open"`
	AdminID   *uint      `json:"admin_id,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateTaskRequest creates a task or note against an account
type CreateTaskRequest struct {
	Kind      string     `json:"kind" validate:"required,oneof=task note"`
	AccountID string     `json:"account_id" validate:"required,max=128"`
	MemberID  *string    `json:"member_id,omitempty" validate:"omitempty,max=128"`
	Title     string     `json:"title" validate:"required,max=255"`
	Body      *string    `json:"body,omitempty" validate:"omitempty,max=10000"`
	DueAt     *time.Time `json:"due_at,omitempty"`
}

// UpdateTaskRequest edits a task or note
type UpdateTaskRequest struct {
	TaskID uint       `json:"task_id" validate:"required,min=1"`
	Title  *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Body   *string    `json:"body,omitempty" validate:"omitempty,max=10000"`
	DueAt  *time.Time `json:"due_at,omitempty"`
}

// CompleteTaskRequest marks a task done
type CompleteTaskRequest struct {
	TaskID uint `json:"task_id" validate:"required,min=1"`
}

// ListTasksRequest filters the tasks of one account
type ListTasksRequest struct {
	AccountID string  `json:"account_id" validate:"required,max=128"`
	Kind      *string `json:"kind,omitempty" validate:"omitempty,oneof=task note"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=open completed"`
	Page      int     `json:"page" validate:"omitempty,min=1"`
	PageSize  int     `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// TaskResponse wraps one task
type TaskResponse struct {
	Message string  `json:"message"`
	Task    TaskDTO `json:"task"`
}

// ListTasksResponse is the paged task list
type ListTasksResponse struct {
	Message    string     `json:"message"`
	Items      []TaskDTO  `json:"items"`
	Pagination Pagination `json:"pagination"`
}
