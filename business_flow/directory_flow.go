// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"github.com/xuri/excelize/v2"
)

// DirectoryFlow answers the member directory queries and builds exports
type DirectoryFlow interface {
	MembersByStatus(ctx context.Context, req *dto.MembersByStatusRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error)
	AccountsByStatus(ctx context.Context, req *dto.AccountsByStatusRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error)
	MembersWithPortalAccess(ctx context.Context, req *dto.MembersWithPortalAccessRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error)
	MembersByOrganizationType(ctx context.Context, req *dto.MembersByOrganizationTypeRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error)
	ExportDirectory(ctx context.Context, req *dto.ExportDirectoryRequest, metadata *ClientMetadata) ([]byte, string, error)
}

// DirectoryFlowImpl implements DirectoryFlow
type DirectoryFlowImpl struct {
	accountRepo repository.AccountRepository
	memberRepo  repository.OrganizationMemberRepository
	auditRepo   repository.AuditLogRepository
}

func NewDirectoryFlow(
	accountRepo repository.AccountRepository,
	memberRepo repository.OrganizationMemberRepository,
	auditRepo repository.AuditLogRepository,
) DirectoryFlow {
	return &DirectoryFlowImpl{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
	}
}

// MembersByStatus lists every person holding the given status: individual
// accounts directly, plus the full rosters of corporate accounts carrying it
func (f *DirectoryFlowImpl) MembersByStatus(ctx context.Context, req *dto.MembersByStatusRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error) {
	if req == nil || req.Status == "" {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Status is required", ErrStatusRequired)
	}
	if !models.IsValidStatus(req.Status) {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Unknown status", ErrInvalidStatus)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Invalid pagination", err)
	}

	members, err := f.collectByStatuses(ctx, []string{req.Status})
	if err != nil {
		return nil, err
	}

	items, pagination := paginateMembers(members, page, pageSize)
	return &dto.MemberListResponse{
		Message:    fmt.Sprintf("Members with status %s", req.Status),
		Items:      items,
		Pagination: pagination,
	}, nil
}

// AccountsByStatus lists accounts holding the given status. Corporate rows
// carry the account administrator as their stand-in person, falling back to
// the primary contact and then to the account's own contact fields.
func (f *DirectoryFlowImpl) AccountsByStatus(ctx context.Context, req *dto.AccountsByStatusRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error) {
	if req == nil || req.Status == "" {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Status is required", ErrStatusRequired)
	}
	if !models.IsValidStatus(req.Status) {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Unknown status", ErrInvalidStatus)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.AccountFilter{Status: utils.ToPtr(req.Status)}
	accounts, err := f.accountRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to list accounts", err)
	}
	total, err := f.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to count accounts", err)
	}

	items := make([]dto.AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		item := ToAccountDTO(*a)
		if !a.IsIndividual() {
			roster, err := f.memberRepo.ListByOrganization(ctx, a.ID)
			if err != nil {
				return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to list organization roster", err)
			}
			if standIn := corporateStandIn(roster); standIn != nil {
				item.Email = standIn.Email
				item.PersonalName = utils.ToPtr(standIn.PersonalName)
				item.JobTitle = standIn.JobTitle
			}
		}
		items = append(items, item)
	}

	return &dto.ListAccountsResponse{
		Message:    fmt.Sprintf("Accounts with status %s", req.Status),
		Items:      items,
		Pagination: dto.Pagination{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// MembersWithPortalAccess lists members clearing the given capability tier.
// Guest access is universal, so that tier returns the whole directory.
func (f *DirectoryFlowImpl) MembersWithPortalAccess(ctx context.Context, req *dto.MembersWithPortalAccessRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error) {
	if req == nil {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Access level is required", ErrUnknownAccess)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Invalid pagination", err)
	}

	var statuses []string
	switch models.AccessLevel(req.AccessLevel) {
	case models.AccessLevelGuest:
		statuses = models.AllStatuses
	case models.AccessLevelMember:
		statuses = []string{models.StatusApproved, models.StatusAdmin}
	case models.AccessLevelAdmin:
		statuses = []string{models.StatusAdmin}
	default:
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Unknown access level", ErrUnknownAccess)
	}

	members, err := f.collectByStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}

	items, pagination := paginateMembers(members, page, pageSize)
	return &dto.MemberListResponse{
		Message:    fmt.Sprintf("Members with %s access", req.AccessLevel),
		Items:      items,
		Pagination: pagination,
	}, nil
}

// MembersByOrganizationType filters the portal-access member set by
// organization type: corporate rosters plus individual accounts carrying the
// type on their own organization fields, approved and admin statuses only
func (f *DirectoryFlowImpl) MembersByOrganizationType(ctx context.Context, req *dto.MembersByOrganizationTypeRequest, metadata *ClientMetadata) (*dto.MemberListResponse, error) {
	if req == nil || req.OrganizationType == "" {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Organization type is required", ErrUnknownOrgType)
	}
	switch req.OrganizationType {
	case models.OrganizationTypeMGA, models.OrganizationTypeCarrier, models.OrganizationTypeProvider:
	default:
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Unknown organization type", ErrUnknownOrgType)
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("DIRECTORY_VALIDATION_FAILED", "Invalid pagination", err)
	}

	var accounts []*models.Account
	for _, status := range []string{models.StatusApproved, models.StatusAdmin} {
		batch, err := f.accountRepo.ByFilter(ctx, models.AccountFilter{
			Status:           utils.ToPtr(status),
			OrganizationType: utils.ToPtr(req.OrganizationType),
		}, "id ASC", 0, 0)
		if err != nil {
			return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to list organizations", err)
		}
		accounts = append(accounts, batch...)
	}

	members, err := f.expandAccounts(ctx, accounts)
	if err != nil {
		return nil, err
	}

	items, pagination := paginateMembers(members, page, pageSize)
	return &dto.MemberListResponse{
		Message:    fmt.Sprintf("Members of %s organizations", req.OrganizationType),
		Items:      items,
		Pagination: pagination,
	}, nil
}

// ExportDirectory builds an xlsx workbook of unified members matching the
// optional status and organization type filters
func (f *DirectoryFlowImpl) ExportDirectory(ctx context.Context, req *dto.ExportDirectoryRequest, metadata *ClientMetadata) ([]byte, string, error) {
	filter := models.AccountFilter{}
	if req != nil && req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			return nil, "", NewBusinessError("EXPORT_VALIDATION_FAILED", "Unknown status", ErrInvalidStatus)
		}
		filter.Status = req.Status
	}
	if req != nil && req.OrganizationType != nil {
		filter.OrganizationType = req.OrganizationType
	}

	accounts, err := f.accountRepo.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to list accounts for export", err)
	}

	members, err := f.expandAccounts(ctx, accounts)
	if err != nil {
		return nil, "", err
	}
	if len(members) > utils.DirectoryExportMaxRows {
		return nil, "", NewBusinessErrorf("EXPORT_TOO_LARGE", "Export of %d rows exceeds the cap", ErrExportTooLarge, len(members))
	}

	data, err := buildDirectoryWorkbook(members)
	if err != nil {
		return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
	}

	filename := fmt.Sprintf("member-directory-%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	f.recordExport(ctx, len(members), metadata)
	return data, filename, nil
}

// corporateStandIn picks the roster member representing a corporate account:
// the account administrator first, the primary contact next, nil when the
// roster holds neither
func corporateStandIn(roster []*models.OrganizationMember) *models.OrganizationMember {
	for _, m := range roster {
		if m.IsAdministrator() {
			return m
		}
	}
	for _, m := range roster {
		if m.IsPrimary() {
			return m
		}
	}
	return nil
}

// collectByStatuses expands every account holding one of the statuses into
// unified members
func (f *DirectoryFlowImpl) collectByStatuses(ctx context.Context, statuses []string) ([]models.UnifiedMember, error) {
	var out []models.UnifiedMember
	for _, status := range statuses {
		accounts, err := f.accountRepo.ByFilter(ctx, models.AccountFilter{Status: utils.ToPtr(status)}, "id ASC", 0, 0)
		if err != nil {
			return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to list accounts", err)
		}
		members, err := f.expandAccounts(ctx, accounts)
		if err != nil {
			return nil, err
		}
		out = append(out, members...)
	}
	return out, nil
}

// expandAccounts flattens accounts into unified members: individuals map
// one-to-one, corporate accounts contribute their whole roster
func (f *DirectoryFlowImpl) expandAccounts(ctx context.Context, accounts []*models.Account) ([]models.UnifiedMember, error) {
	var out []models.UnifiedMember
	for _, account := range accounts {
		if account.IsIndividual() {
			out = append(out, *models.UnifiedFromIndividual(account))
			continue
		}
		roster, err := f.memberRepo.ListByOrganization(ctx, account.ID)
		if err != nil {
			return nil, NewBusinessError("DIRECTORY_QUERY_FAILED", "Failed to list organization roster", err)
		}
		for _, m := range roster {
			out = append(out, *models.UnifiedFromCorporate(account, m))
		}
	}
	return out, nil
}

func paginateMembers(members []models.UnifiedMember, page, pageSize int) ([]dto.UnifiedMemberDTO, dto.Pagination) {
	total := int64(len(members))
	start := (page - 1) * pageSize
	if start > len(members) {
		start = len(members)
	}
	end := start + pageSize
	if end > len(members) {
		end = len(members)
	}

	items := make([]dto.UnifiedMemberDTO, 0, end-start)
	for _, m := range members[start:end] {
		items = append(items, ToUnifiedMemberDTO(m))
	}
	return items, dto.Pagination{Page: page, PageSize: pageSize, Total: total}
}

var directoryExportHeader = []string{
	"ID", "Membership Type", "Status", "Email", "Name", "Job Title",
	"Organization ID", "Organization Name", "Organization Type",
	"Primary Contact", "Account Administrator", "Joined At",
}

func buildDirectoryWorkbook(members []models.UnifiedMember) ([]byte, error) {
	wb := excelize.NewFile()
	defer func() {
		if err := wb.Close(); err != nil {
			log.Printf("failed to close workbook: %v", err)
		}
	}()

	const sheet = "Directory"
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, title := range directoryExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, m := range members {
		joined := ""
		if m.JoinedAt != nil {
			joined = m.JoinedAt.Format("2006-01-02")
		}
		row := []any{
			m.ID, m.MembershipType, m.Status, m.Email, m.PersonalName, utils.StringValue(m.JobTitle),
			m.OrganizationID, utils.StringValue(m.OrganizationName), utils.StringValue(m.OrganizationType),
			m.IsPrimaryContact, m.IsAccountAdministrator, joined,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *DirectoryFlowImpl) recordExport(ctx context.Context, rows int, metadata *ClientMetadata) {
	entry := &models.AuditLog{
		Action:      models.AuditActionDirectoryExported,
		Description: utils.ToPtr(fmt.Sprintf("directory exported with %d rows", rows)),
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
	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record directory export: %v", err)
	}
}
