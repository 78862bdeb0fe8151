// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/fasehq/backoffice/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// Repository is the shared surface of every repository. ByID is declared on
// the concrete interfaces instead: accounts and member sub-records are keyed
// by opaque string identity ids, operational tables by serial uints.
type Repository[T any, F any] interface {
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByID(ctx context.Context, id string) (*models.Account, error)
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Account, error)
	ListCorporate(ctx context.Context, limit, offset int) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	UpdateStatus(ctx context.Context, accountID, status string) error
	UpdateLogoURL(ctx context.Context, accountID, logoURL string) error
}

// OrganizationMemberRepository defines operations for member sub-records
type OrganizationMemberRepository interface {
	Repository[models.OrganizationMember, models.OrganizationMemberFilter]
	ByID(ctx context.Context, id string) (*models.OrganizationMember, error)
	ByOrganizationAndID(ctx context.Context, organizationID, memberID string) (*models.OrganizationMember, error)
	ByMemberID(ctx context.Context, memberID string) ([]*models.OrganizationMember, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*models.OrganizationMember, error)
	Update(ctx context.Context, member *models.OrganizationMember) error
	Delete(ctx context.Context, organizationID, memberID string) error
	ListDuplicateMemberIDs(ctx context.Context) ([]string, error)
}

// AdminRepository defines operations for back-office operator accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByID(ctx context.Context, id uint) (*models.Admin, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}

// TaskRepository defines operations for tasks and notes
type TaskRepository interface {
	Repository[models.Task, models.TaskFilter]
	ByID(ctx context.Context, id uint) (*models.Task, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ByID(ctx context.Context, id uint) (*models.AuditLog, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListIntegrityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
