package models

import (
	"encoding/json"
	"time"
)

// AuditLog records back-office and resolution events. It doubles as the
// per-account activity feed shown to admins.
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AccountID    *string         `gorm:"size:128;index:idx_audit_account_id" json:"account_id,omitempty"`
	Account      *Account        `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	MemberID     *string         `gorm:"size:128;index:idx_audit_member_id" json:"member_id,omitempty"`
	AdminID      *uint           `gorm:"index:idx_audit_admin_id" json:"admin_id,omitempty"`
	Admin        *Admin          `gorm:"foreignKey:AdminID;references:ID" json:"admin,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;index:idx_audit_metadata,type:gin" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionAccountCreated      = "account_created"
	AuditActionAccountUpdated      = "account_updated"
	AuditActionStatusChanged       = "status_changed"
	AuditActionMemberAdded         = "member_added"
	AuditActionMemberUpdated       = "member_updated"
	AuditActionMemberRemoved       = "member_removed"
	AuditActionMemberResolved      = "member_resolved"
	AuditActionAmbiguousMembership = "ambiguous_membership"
	AuditActionLogoUploaded        = "logo_uploaded"
	AuditActionDirectoryExported   = "directory_exported"
	AuditActionTaskCreated         = "task_created"
	AuditActionTaskCompleted       = "task_completed"
	AuditActionNoteCreated         = "note_created"
	AuditActionAdminLoginSuccess   = "admin_login_success"
	AuditActionAdminLoginFailed    = "admin_login_failed"
	AuditActionAdminLogout         = "admin_logout"
	AuditActionConsistencySweep    = "consistency_sweep"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	AccountID     *string
	MemberID      *string
	AdminID       *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

// IsIntegrityEvent reports whether the entry flags a data consistency
// problem rather than a routine operation.
func (a *AuditLog) IsIntegrityEvent() bool {
	integrityActions := map[string]bool{
		AuditActionAmbiguousMembership: true,
		AuditActionConsistencySweep:    true,
	}
	return integrityActions[a.Action]
}
