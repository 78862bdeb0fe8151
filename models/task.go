package models

import (
	"time"
)

// Task kind constants. Tasks and notes share one table; a note is a task
// with no completion state.
const (
	TaskKindTask = "task"
	TaskKindNote = "note"
)

// Task status constants
const (
	TaskStatusOpen      = "open"
	TaskStatusCompleted = "completed"
)

// Task is an admin work item or note attached to an account. AccountID points
// at the account the item concerns; MemberID is set when the item concerns a
// specific member sub-record under a corporate account.
type Task struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Kind      string   `gorm:"size:10;not null;default:task;index:idx_tasks_kind" json:"kind"`
	AccountID string   `gorm:"size:128;not null;index:idx_tasks_account_id" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	MemberID  *string  `gorm:"size:128;index:idx_tasks_member_id" json:"member_id,omitempty"`

	Title    string  `gorm:"size:255;not null" json:"title"`
	Body     *string `gorm:"type:text" json:"body,omitempty"`
	Status   string  `gorm:"size:20;not null;default:open;index:idx_tasks_status" json:"status"`
	AdminID  *uint   `gorm:"index:idx_tasks_admin_id" json:"admin_id,omitempty"`
	Admin    *Admin  `gorm:"foreignKey:AdminID;references:ID" json:"admin,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
	DoneAt   *time.Time `json:"done_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tasks_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskFilter represents filter criteria for task queries
type TaskFilter struct {
	ID            *uint
	Kind          *string
	AccountID     *string
	MemberID      *string
	Status        *string
	AdminID       *uint
	DueBefore     *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (t *Task) IsNote() bool {
	return t.Kind == TaskKindNote
}

func (t *Task) IsOpen() bool {
	return t.Kind == TaskKindTask && t.Status == TaskStatusOpen
}
