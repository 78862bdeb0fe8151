// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"gorm.io/gorm"
)

// AdminAccountFlow covers the back-office account views and the application
// review lifecycle
type AdminAccountFlow interface {
	ListAccounts(ctx context.Context, req *dto.ListAccountsRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error)
	GetAccount(ctx context.Context, accountID string, metadata *ClientMetadata) (*dto.GetAccountResponse, error)
	UpdateAccountStatus(ctx context.Context, req *dto.UpdateAccountStatusRequest, adminID uint, metadata *ClientMetadata) (*dto.UpdateAccountStatusResponse, error)
	ActivityFeed(ctx context.Context, req *dto.ActivityFeedRequest, metadata *ClientMetadata) (*dto.ActivityFeedResponse, error)
}

// AdminAccountFlowImpl implements AdminAccountFlow
type AdminAccountFlowImpl struct {
	accountRepo repository.AccountRepository
	memberRepo  repository.OrganizationMemberRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewAdminAccountFlow(
	accountRepo repository.AccountRepository,
	memberRepo repository.OrganizationMemberRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdminAccountFlow {
	return &AdminAccountFlowImpl{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListAccounts pages through accounts with optional filters
func (f *AdminAccountFlowImpl) ListAccounts(ctx context.Context, req *dto.ListAccountsRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error) {
	if req == nil {
		req = &dto.ListAccountsRequest{}
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LIST_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.AccountFilter{
		Status:           req.Status,
		MembershipType:   req.MembershipType,
		OrganizationType: req.OrganizationType,
		NameContains:     req.NameContains,
	}

	accounts, err := f.accountRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LIST_FAILED", "Failed to list accounts", err)
	}
	total, err := f.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LIST_FAILED", "Failed to count accounts", err)
	}

	items := make([]dto.AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, ToAccountDTO(*a))
	}

	return &dto.ListAccountsResponse{
		Message:    "Accounts retrieved",
		Items:      items,
		Pagination: dto.Pagination{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// GetAccount returns one account with its roster and recent activity
func (f *AdminAccountFlowImpl) GetAccount(ctx context.Context, accountID string, metadata *ClientMetadata) (*dto.GetAccountResponse, error) {
	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	resp := &dto.GetAccountResponse{
		Message: "Account retrieved",
		Account: ToAccountDTO(*account),
	}

	if account.IsCorporate() {
		roster, err := f.memberRepo.ListByOrganization(ctx, account.ID)
		if err != nil {
			return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to load roster", err)
		}
		for _, m := range roster {
			resp.Members = append(resp.Members, ToOrganizationMemberDTO(*m))
		}
	}

	activity, err := f.auditRepo.ListByAccount(ctx, account.ID, 20, 0)
	if err != nil {
		log.Printf("failed to load activity for %s: %v", account.ID, err)
	} else {
		for _, e := range activity {
			resp.Activity = append(resp.Activity, ToAuditEntryDTO(*e))
		}
	}

	return resp, nil
}

// UpdateAccountStatus applies a review decision. Status changes and the audit
// trail entry commit together.
func (f *AdminAccountFlowImpl) UpdateAccountStatus(ctx context.Context, req *dto.UpdateAccountStatusRequest, adminID uint, metadata *ClientMetadata) (*dto.UpdateAccountStatusResponse, error) {
	if req == nil || req.AccountID == "" {
		return nil, NewBusinessError("STATUS_VALIDATION_FAILED", "Account id is required", ErrAccountNotFound)
	}
	if !models.IsValidStatus(req.Status) {
		return nil, NewBusinessError("STATUS_VALIDATION_FAILED", "Unknown status", ErrInvalidStatus)
	}

	account, err := f.accountRepo.ByID(ctx, req.AccountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	previous := account.Status
	if previous == req.Status {
		return &dto.UpdateAccountStatusResponse{
			Message:        "Status unchanged",
			AccountID:      account.ID,
			PreviousStatus: previous,
			Status:         req.Status,
		}, nil
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.accountRepo.UpdateStatus(txCtx, account.ID, req.Status); err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]any{
			"previous_status": previous,
			"new_status":      req.Status,
			"reason":          utils.StringValue(req.Reason),
		})
		entry := &models.AuditLog{
			AccountID:   utils.ToPtr(account.ID),
			AdminID:     utils.ToPtr(adminID),
			Action:      models.AuditActionStatusChanged,
			Description: utils.ToPtr(fmt.Sprintf("status changed from %s to %s", previous, req.Status)),
			Metadata:    meta,
			Success:     utils.ToPtr(true),
			CreatedAt:   utils.UTCNow(),
		}
		if metadata != nil {
			if metadata.IPAddress != "" {
				entry.IPAddress = utils.ToPtr(metadata.IPAddress)
			}
			if metadata.RequestID != "" {
				entry.RequestID = utils.ToPtr(metadata.RequestID)
			}
		}
		return f.auditRepo.Save(txCtx, entry)
	})
	if err != nil {
		return nil, NewBusinessError("STATUS_UPDATE_FAILED", "Failed to update account status", err)
	}

	return &dto.UpdateAccountStatusResponse{
		Message:        "Status updated",
		AccountID:      account.ID,
		PreviousStatus: previous,
		Status:         req.Status,
	}, nil
}

// ActivityFeed pages through one account's audit entries
func (f *AdminAccountFlowImpl) ActivityFeed(ctx context.Context, req *dto.ActivityFeedRequest, metadata *ClientMetadata) (*dto.ActivityFeedResponse, error) {
	if req == nil || req.AccountID == "" {
		return nil, NewBusinessError("ACTIVITY_VALIDATION_FAILED", "Account id is required", ErrAccountNotFound)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_VALIDATION_FAILED", "Invalid pagination", err)
	}

	entries, err := f.auditRepo.ListByAccount(ctx, req.AccountID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_LIST_FAILED", "Failed to list activity", err)
	}
	total, err := f.auditRepo.Count(ctx, models.AuditLogFilter{AccountID: utils.ToPtr(req.AccountID)})
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_LIST_FAILED", "Failed to count activity", err)
	}

	items := make([]dto.AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, ToAuditEntryDTO(*e))
	}

	return &dto.ActivityFeedResponse{
		Message:    "Activity retrieved",
		Items:      items,
		Pagination: dto.Pagination{Page: page, PageSize: pageSize, Total: total},
	}, nil
}
