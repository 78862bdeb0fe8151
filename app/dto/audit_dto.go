package dto

import "time"

// AuditEntryDTO is one activity feed entry
type AuditEntryDTO struct {
	ID          uint      `json:"id"`
	AccountID   *string   `json:"account_id,omitempty"`
	MemberID    *string   `json:"member_id,omitempty"`
	AdminID     *uint     `json:"admin_id,omitempty"`
	Action      string    `json:"action"`
	Description *string   `json:"description,omitempty"`
	Success     *bool     `json:"success"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityFeedRequest pages through one account's activity
type ActivityFeedRequest struct {
	AccountID string `json:"account_id" validate:"required,max=128"`
	Page      int    `json:"page" validate:"omitempty,min=1"`
	PageSize  int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ActivityFeedResponse is the paged activity feed
type ActivityFeedResponse struct {
	Message    string          `json:"message"`
	Items      []AuditEntryDTO `json:"items"`
	Pagination Pagination      `json:"pagination"`
}
