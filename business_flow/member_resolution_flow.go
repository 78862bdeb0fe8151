// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	memberResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fase_member_resolutions_total",
			Help: "Total number of unified member resolutions by outcome",
		},
		[]string{"outcome"},
	)

	ambiguousMembershipTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fase_ambiguous_membership_total",
			Help: "Total number of resolutions that found one member id under multiple organizations",
		},
	)
)

// MemberResolutionFlow resolves an identity id to its unified member view and
// answers portal access checks against it
type MemberResolutionFlow interface {
	ResolveUnifiedMember(ctx context.Context, memberID string, metadata *ClientMetadata) (*models.UnifiedMember, error)
	CheckAccess(ctx context.Context, memberID string, level models.AccessLevel, metadata *ClientMetadata) (bool, error)
}

// MemberResolutionFlowImpl implements MemberResolutionFlow
type MemberResolutionFlowImpl struct {
	accountRepo repository.AccountRepository
	memberRepo  repository.OrganizationMemberRepository
	auditRepo   repository.AuditLogRepository
}

func NewMemberResolutionFlow(
	accountRepo repository.AccountRepository,
	memberRepo repository.OrganizationMemberRepository,
	auditRepo repository.AuditLogRepository,
) MemberResolutionFlow {
	return &MemberResolutionFlowImpl{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
	}
}

// ResolveUnifiedMember finds the person behind an identity id.
//
// Individual accounts resolve directly. For corporate ids the roster of the
// account itself is checked first (historically an organization's id doubles
// as its primary contact's person id), then every roster is consulted through
// the indexed member lookup. A not-found result means no record anywhere
// carries the id; any lookup failure is reported as a resolution failure
// instead so callers can tell "absent" from "unknown".
func (f *MemberResolutionFlowImpl) ResolveUnifiedMember(ctx context.Context, memberID string, metadata *ClientMetadata) (*models.UnifiedMember, error) {
	if memberID == "" {
		memberResolutionsTotal.WithLabelValues("not_found").Inc()
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "Member not found", ErrMemberNotFound)
	}

	account, err := f.accountRepo.ByID(ctx, memberID)
	if err != nil {
		memberResolutionsTotal.WithLabelValues("failed").Inc()
		return nil, NewBusinessErrorf("RESOLUTION_FAILED", "Failed to resolve member %s", ErrResolutionFailed, memberID)
	}

	if account != nil && account.IsIndividual() {
		memberResolutionsTotal.WithLabelValues("individual").Inc()
		return models.UnifiedFromIndividual(account), nil
	}

	// Scoped lookup: the id as a member of its own corporate account
	if account != nil {
		member, err := f.memberRepo.ByOrganizationAndID(ctx, account.ID, memberID)
		if err != nil {
			memberResolutionsTotal.WithLabelValues("failed").Inc()
			return nil, NewBusinessErrorf("RESOLUTION_FAILED", "Failed to resolve member %s", ErrResolutionFailed, memberID)
		}
		if member != nil {
			memberResolutionsTotal.WithLabelValues("corporate").Inc()
			return models.UnifiedFromCorporate(account, member), nil
		}
	}

	// Fallback: the id as a member of any organization
	memberships, err := f.memberRepo.ByMemberID(ctx, memberID)
	if err != nil {
		memberResolutionsTotal.WithLabelValues("failed").Inc()
		return nil, NewBusinessErrorf("RESOLUTION_FAILED", "Failed to resolve member %s", ErrResolutionFailed, memberID)
	}
	if len(memberships) == 0 {
		memberResolutionsTotal.WithLabelValues("not_found").Inc()
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "Member not found", ErrMemberNotFound)
	}

	chosen := memberships[0]
	if len(memberships) > 1 {
		// Duplicated id across organizations: surface it, never dedupe.
		// Tie-break prefers the roster whose owning account email matches
		// the member's own email, but only when exactly one roster does;
		// otherwise the lowest organization id wins.
		ambiguousMembershipTotal.Inc()
		var emailMatches []*models.OrganizationMember
		for _, m := range memberships {
			if m.Organization != nil && m.Organization.Email == m.Email {
				emailMatches = append(emailMatches, m)
			}
		}
		if len(emailMatches) == 1 {
			chosen = emailMatches[0]
		}
		log.Printf("ambiguous membership: id %s appears in %d organizations, resolved to %s",
			memberID, len(memberships), chosen.OrganizationID)
		f.recordAmbiguity(ctx, memberID, memberships, chosen.OrganizationID, metadata)
	}

	owner := chosen.Organization
	if owner == nil {
		owner, err = f.accountRepo.ByID(ctx, chosen.OrganizationID)
		if err != nil || owner == nil {
			// Orphaned sub-record: the roster row exists but its account is gone
			memberResolutionsTotal.WithLabelValues("failed").Inc()
			return nil, NewBusinessErrorf("RESOLUTION_FAILED", "Failed to resolve member %s", ErrResolutionFailed, memberID)
		}
	}

	memberResolutionsTotal.WithLabelValues("corporate").Inc()
	return models.UnifiedFromCorporate(owner, chosen), nil
}

// CheckAccess evaluates the portal access policy for an identity id. Guest
// access never requires resolution; member and admin tiers deny unknown ids
// without surfacing an error.
func (f *MemberResolutionFlowImpl) CheckAccess(ctx context.Context, memberID string, level models.AccessLevel, metadata *ClientMetadata) (bool, error) {
	if level == models.AccessLevelGuest {
		return true, nil
	}

	member, err := f.ResolveUnifiedMember(ctx, memberID, metadata)
	if err != nil {
		if IsMemberNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return models.HasAccessLevel(member, level), nil
}

func (f *MemberResolutionFlowImpl) recordAmbiguity(ctx context.Context, memberID string, memberships []*models.OrganizationMember, resolvedOrg string, metadata *ClientMetadata) {
	orgIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrganizationID)
	}

	meta, _ := json.Marshal(map[string]any{
		"organization_ids": orgIDs,
		"resolved_to":      resolvedOrg,
	})

	entry := &models.AuditLog{
		MemberID:    utils.ToPtr(memberID),
		AccountID:   utils.ToPtr(resolvedOrg),
		Action:      models.AuditActionAmbiguousMembership,
		Description: utils.ToPtr("member id present in multiple organization rosters"),
		Metadata:    meta,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = utils.ToPtr(metadata.UserAgent)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}

	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record ambiguous membership for %s: %v", memberID, err)
	}
}
