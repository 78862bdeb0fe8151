// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"gorm.io/gorm"
)

// MembershipFlow manages corporate account rosters
type MembershipFlow interface {
	GetRoster(ctx context.Context, organizationID string, metadata *ClientMetadata) (*dto.RosterResponse, error)
	AddMember(ctx context.Context, req *dto.AddMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.MemberMutationResponse, error)
	UpdateMember(ctx context.Context, req *dto.UpdateMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.MemberMutationResponse, error)
	RemoveMember(ctx context.Context, req *dto.RemoveMemberRequest, adminID uint, metadata *ClientMetadata) error
}

// MembershipFlowImpl implements MembershipFlow
type MembershipFlowImpl struct {
	accountRepo repository.AccountRepository
	memberRepo  repository.OrganizationMemberRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewMembershipFlow(
	accountRepo repository.AccountRepository,
	memberRepo repository.OrganizationMemberRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) MembershipFlow {
	return &MembershipFlowImpl{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// GetRoster returns the full member list of one corporate account
func (f *MembershipFlowImpl) GetRoster(ctx context.Context, organizationID string, metadata *ClientMetadata) (*dto.RosterResponse, error) {
	account, err := f.requireCorporate(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	roster, err := f.memberRepo.ListByOrganization(ctx, account.ID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LIST_FAILED", "Failed to list roster", err)
	}

	members := make([]dto.OrganizationMemberDTO, 0, len(roster))
	for _, m := range roster {
		members = append(members, ToOrganizationMemberDTO(*m))
	}

	return &dto.RosterResponse{
		Message:        "Roster retrieved",
		OrganizationID: account.ID,
		Members:        members,
	}, nil
}

// AddMember appends a person to a corporate roster. An id already present in
// another organization is allowed but logged: the resolver surfaces such
// duplicates instead of hiding them.
func (f *MembershipFlowImpl) AddMember(ctx context.Context, req *dto.AddMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.MemberMutationResponse, error) {
	if req == nil || req.OrganizationID == "" {
		return nil, NewBusinessError("ROSTER_VALIDATION_FAILED", "Organization id is required", ErrOrganizationIDRequired)
	}
	if req.Email == "" {
		return nil, NewBusinessError("ROSTER_VALIDATION_FAILED", "Member email is required", ErrMemberEmailRequired)
	}
	if req.PersonalName == "" {
		return nil, NewBusinessError("ROSTER_VALIDATION_FAILED", "Member name is required", ErrMemberNameRequired)
	}

	account, err := f.requireCorporate(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	existing, err := f.memberRepo.ByOrganizationAndID(ctx, account.ID, req.MemberID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to check roster", err)
	}
	if existing != nil {
		return nil, NewBusinessError("MEMBER_ALREADY_IN_ROSTER", "Member already in roster", ErrMemberAlreadyInRoster)
	}

	elsewhere, err := f.memberRepo.ByMemberID(ctx, req.MemberID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to check other rosters", err)
	}

	member := &models.OrganizationMember{
		ID:                     req.MemberID,
		OrganizationID:         account.ID,
		Email:                  req.Email,
		PersonalName:           req.PersonalName,
		JobTitle:               req.JobTitle,
		IsPrimaryContact:       utils.ToPtr(req.IsPrimaryContact),
		IsAccountAdministrator: utils.ToPtr(req.IsAccountAdministrator),
		JoinedAt:               req.JoinedAt,
		CreatedAt:              utils.UTCNow(),
		UpdatedAt:              utils.UTCNow(),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.memberRepo.Save(txCtx, member); err != nil {
			return err
		}
		return f.recordRosterChange(txCtx, models.AuditActionMemberAdded, account.ID, member.ID, adminID, map[string]any{
			"email":        member.Email,
			"also_in_orgs": organizationIDs(elsewhere),
		}, metadata)
	})
	if err != nil {
		return nil, NewBusinessError("ROSTER_ADD_FAILED", "Failed to add member", err)
	}

	if len(elsewhere) > 0 {
		log.Printf("member %s added to %s but already present in %d other organizations",
			member.ID, account.ID, len(elsewhere))
	}

	return &dto.MemberMutationResponse{
		Message: "Member added",
		Member:  ToOrganizationMemberDTO(*member),
	}, nil
}

// UpdateMember edits one roster entry
func (f *MembershipFlowImpl) UpdateMember(ctx context.Context, req *dto.UpdateMemberRequest, adminID uint, metadata *ClientMetadata) (*dto.MemberMutationResponse, error) {
	if req == nil || req.OrganizationID == "" {
		return nil, NewBusinessError("ROSTER_VALIDATION_FAILED", "Organization id is required", ErrOrganizationIDRequired)
	}

	member, err := f.memberRepo.ByOrganizationAndID(ctx, req.OrganizationID, req.MemberID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to lookup member", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_IN_ROSTER", "Member not in roster", ErrMemberNotInRoster)
	}

	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.PersonalName != nil {
		member.PersonalName = *req.PersonalName
	}
	if req.JobTitle != nil {
		member.JobTitle = req.JobTitle
	}
	if req.IsPrimaryContact != nil {
		member.IsPrimaryContact = req.IsPrimaryContact
	}
	if req.IsAccountAdministrator != nil {
		member.IsAccountAdministrator = req.IsAccountAdministrator
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.memberRepo.Update(txCtx, member); err != nil {
			return err
		}
		return f.recordRosterChange(txCtx, models.AuditActionMemberUpdated, member.OrganizationID, member.ID, adminID, nil, metadata)
	})
	if err != nil {
		return nil, NewBusinessError("ROSTER_UPDATE_FAILED", "Failed to update member", err)
	}

	return &dto.MemberMutationResponse{
		Message: "Member updated",
		Member:  ToOrganizationMemberDTO(*member),
	}, nil
}

// RemoveMember deletes one roster entry. The last account administrator of a
// roster cannot be removed.
func (f *MembershipFlowImpl) RemoveMember(ctx context.Context, req *dto.RemoveMemberRequest, adminID uint, metadata *ClientMetadata) error {
	if req == nil || req.OrganizationID == "" {
		return NewBusinessError("ROSTER_VALIDATION_FAILED", "Organization id is required", ErrOrganizationIDRequired)
	}

	member, err := f.memberRepo.ByOrganizationAndID(ctx, req.OrganizationID, req.MemberID)
	if err != nil {
		return NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to lookup member", err)
	}
	if member == nil {
		return NewBusinessError("MEMBER_NOT_IN_ROSTER", "Member not in roster", ErrMemberNotInRoster)
	}

	if member.IsAdministrator() {
		admins, err := f.memberRepo.Count(ctx, models.OrganizationMemberFilter{
			OrganizationID:         utils.ToPtr(req.OrganizationID),
			IsAccountAdministrator: utils.ToPtr(true),
		})
		if err != nil {
			return NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to count administrators", err)
		}
		if admins <= 1 {
			return NewBusinessError("LAST_ADMINISTRATOR", "Cannot remove the last account administrator", ErrLastAdministrator)
		}
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.memberRepo.Delete(txCtx, req.OrganizationID, req.MemberID); err != nil {
			return err
		}
		return f.recordRosterChange(txCtx, models.AuditActionMemberRemoved, req.OrganizationID, req.MemberID, adminID, nil, metadata)
	})
	if err != nil {
		return NewBusinessError("ROSTER_REMOVE_FAILED", "Failed to remove member", err)
	}

	return nil
}

func (f *MembershipFlowImpl) requireCorporate(ctx context.Context, organizationID string) (*models.Account, error) {
	if organizationID == "" {
		return nil, NewBusinessError("ROSTER_VALIDATION_FAILED", "Organization id is required", ErrOrganizationIDRequired)
	}

	account, err := f.accountRepo.ByID(ctx, organizationID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}
	if !account.IsCorporate() {
		return nil, NewBusinessError("ACCOUNT_NOT_CORPORATE", "Account has no roster", ErrAccountNotCorporate)
	}
	return account, nil
}

func (f *MembershipFlowImpl) recordRosterChange(ctx context.Context, action, organizationID, memberID string, adminID uint, extra map[string]any, metadata *ClientMetadata) error {
	var meta json.RawMessage
	if extra != nil {
		meta, _ = json.Marshal(extra)
	}

	entry := &models.AuditLog{
		AccountID: utils.ToPtr(organizationID),
		MemberID:  utils.ToPtr(memberID),
		AdminID:   utils.ToPtr(adminID),
		Action:    action,
		Metadata:  meta,
		Success:   utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}
	return f.auditRepo.Save(ctx, entry)
}

func organizationIDs(members []*models.OrganizationMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.OrganizationID)
	}
	return out
}
