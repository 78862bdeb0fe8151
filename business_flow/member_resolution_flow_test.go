package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/fasehq/backoffice/models"
	testingutil "github.com/fasehq/backoffice/testing"
	"github.com/fasehq/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolutionFixture struct {
	flow     MemberResolutionFlow
	accounts *testingutil.FakeAccountRepository
	members  *testingutil.FakeOrganizationMemberRepository
	audit    *testingutil.FakeAuditLogRepository
}

func newResolutionFixture() *resolutionFixture {
	accounts := testingutil.NewFakeAccountRepository()
	members := testingutil.NewFakeOrganizationMemberRepository(accounts)
	audit := testingutil.NewFakeAuditLogRepository()
	return &resolutionFixture{
		flow:     NewMemberResolutionFlow(accounts, members, audit),
		accounts: accounts,
		members:  members,
		audit:    audit,
	}
}

func TestResolveUnifiedMember_Individual(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	account := testingutil.IndividualAccount("ind-1", models.StatusApproved)
	require.NoError(t, fx.accounts.Save(ctx, account))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "ind-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "ind-1", member.ID)
	assert.Equal(t, models.MembershipTypeIndividual, member.MembershipType)
	assert.Equal(t, models.StatusApproved, member.Status)
	assert.Equal(t, account.Email, member.Email)
	assert.Empty(t, member.OrganizationID)
}

func TestResolveUnifiedMember_LegacyEmptyMembershipType(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	// Legacy rows predate the membership type field; they resolve as individuals
	account := testingutil.IndividualAccount("legacy-1", models.StatusApproved)
	account.MembershipType = ""
	require.NoError(t, fx.accounts.Save(ctx, account))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "legacy-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipTypeIndividual, member.MembershipType)
}

func TestResolveUnifiedMember_CorporateSelfRoster(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	// The organization's id doubles as its primary contact's person id
	org := testingutil.CorporateAccount("org-1", models.StatusApproved, models.OrganizationTypeMGA)
	require.NoError(t, fx.accounts.Save(ctx, org))
	require.NoError(t, fx.members.Save(ctx, testingutil.AdministratorMember("org-1", "org-1")))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "org-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "org-1", member.ID)
	assert.Equal(t, models.MembershipTypeCorporate, member.MembershipType)
	assert.Equal(t, "org-1", member.OrganizationID)
	assert.True(t, member.IsAccountAdministrator)
	assert.Equal(t, models.StatusApproved, member.Status)
}

func TestResolveUnifiedMember_CrossOrganizationFallback(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	org := testingutil.CorporateAccount("org-1", models.StatusAdmin, models.OrganizationTypeCarrier)
	require.NoError(t, fx.accounts.Save(ctx, org))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-1", "org-1")))

	// No account row carries p-1; only the roster does
	member, err := fx.flow.ResolveUnifiedMember(ctx, "p-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "p-1", member.ID)
	assert.Equal(t, models.MembershipTypeCorporate, member.MembershipType)
	assert.Equal(t, "org-1", member.OrganizationID)
	assert.Equal(t, org.OrganizationName, member.OrganizationName)
	// Status comes from the owning account
	assert.Equal(t, models.StatusAdmin, member.Status)
}

func TestResolveUnifiedMember_NotFound(t *testing.T) {
	fx := newResolutionFixture()

	_, err := fx.flow.ResolveUnifiedMember(context.Background(), "nobody", nil)
	require.Error(t, err)
	assert.True(t, IsMemberNotFound(err))
	assert.False(t, IsResolutionFailed(err))
}

func TestResolveUnifiedMember_EmptyID(t *testing.T) {
	fx := newResolutionFixture()

	_, err := fx.flow.ResolveUnifiedMember(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, IsMemberNotFound(err))
}

func TestResolveUnifiedMember_AmbiguousPrefersEmailMatch(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	orgA := testingutil.CorporateAccount("org-a", models.StatusApproved, models.OrganizationTypeMGA)
	orgB := testingutil.CorporateAccount("org-b", models.StatusApproved, models.OrganizationTypeMGA)
	// org-b's account email matches the member's own email
	orgB.Email = "p-1@example.org"
	require.NoError(t, fx.accounts.Save(ctx, orgA))
	require.NoError(t, fx.accounts.Save(ctx, orgB))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-1", "org-a")))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-1", "org-b")))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "p-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "org-b", member.OrganizationID)

	// The ambiguity is surfaced, never silently deduped
	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionAmbiguousMembership, entries[0].Action)
	require.NotNil(t, entries[0].MemberID)
	assert.Equal(t, "p-1", *entries[0].MemberID)
}

func TestResolveUnifiedMember_AmbiguousSeveralEmailMatches(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	// Two of the three owning accounts share the member's email, so the
	// email tie-break is itself ambiguous and the lowest organization wins
	orgA := testingutil.CorporateAccount("org-a", models.StatusApproved, models.OrganizationTypeMGA)
	orgB := testingutil.CorporateAccount("org-b", models.StatusApproved, models.OrganizationTypeMGA)
	orgC := testingutil.CorporateAccount("org-c", models.StatusApproved, models.OrganizationTypeMGA)
	orgB.Email = "p-4@example.org"
	orgC.Email = "p-4@example.org"
	require.NoError(t, fx.accounts.Save(ctx, orgA))
	require.NoError(t, fx.accounts.Save(ctx, orgB))
	require.NoError(t, fx.accounts.Save(ctx, orgC))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-4", "org-a")))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-4", "org-b")))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-4", "org-c")))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "p-4", nil)
	require.NoError(t, err)
	assert.Equal(t, "org-a", member.OrganizationID)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionAmbiguousMembership, entries[0].Action)
}

func TestResolveUnifiedMember_AmbiguousFallsBackToLowestOrganization(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-a", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-b", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-2", "org-b")))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-2", "org-a")))

	member, err := fx.flow.ResolveUnifiedMember(ctx, "p-2", nil)
	require.NoError(t, err)
	assert.Equal(t, "org-a", member.OrganizationID)
}

func TestResolveUnifiedMember_OrphanedSubRecord(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	// Roster row exists but its owning account is gone
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-3", "org-gone")))

	_, err := fx.flow.ResolveUnifiedMember(ctx, "p-3", nil)
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
	assert.False(t, IsMemberNotFound(err))
}

func TestResolveUnifiedMember_LookupFailure(t *testing.T) {
	fx := newResolutionFixture()
	fx.accounts.FailWith = errors.New("connection refused")

	_, err := fx.flow.ResolveUnifiedMember(context.Background(), "ind-1", nil)
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
}

func TestCheckAccess(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	statuses := map[string]string{
		"approved-1": models.StatusApproved,
		"pending-1":  models.StatusPending,
		"admin-1":    models.StatusAdmin,
		"guest-1":    models.StatusGuest,
		"rejected-1": models.StatusRejected,
	}
	for id, status := range statuses {
		require.NoError(t, fx.accounts.Save(ctx, testingutil.IndividualAccount(id, status)))
	}

	tests := []struct {
		name     string
		memberID string
		level    models.AccessLevel
		granted  bool
	}{
		{"guest access is universal", "nobody", models.AccessLevelGuest, true},
		{"guest access for empty id", "", models.AccessLevelGuest, true},
		{"approved clears member", "approved-1", models.AccessLevelMember, true},
		{"admin status clears member", "admin-1", models.AccessLevelMember, true},
		{"pending denied member", "pending-1", models.AccessLevelMember, false},
		{"guest status denied member", "guest-1", models.AccessLevelMember, false},
		{"rejected denied member", "rejected-1", models.AccessLevelMember, false},
		{"admin status clears admin", "admin-1", models.AccessLevelAdmin, true},
		{"approved denied admin", "approved-1", models.AccessLevelAdmin, false},
		{"unknown id denied without error", "nobody", models.AccessLevelMember, false},
		{"unknown level denied", "approved-1", models.AccessLevel("superuser"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			granted, err := fx.flow.CheckAccess(ctx, tt.memberID, tt.level, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.granted, granted)
		})
	}
}

func TestCheckAccess_LookupFailureSurfaces(t *testing.T) {
	fx := newResolutionFixture()
	fx.accounts.FailWith = errors.New("connection refused")

	_, err := fx.flow.CheckAccess(context.Background(), "ind-1", models.AccessLevelMember, nil)
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
}

func TestCheckAccess_RecordsClientMetadataOnAmbiguity(t *testing.T) {
	fx := newResolutionFixture()
	ctx := context.Background()

	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-a", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-b", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-9", "org-a")))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("p-9", "org-b")))

	metadata := &ClientMetadata{IPAddress: "203.0.113.9", UserAgent: "portal", RequestID: "req-42"}
	granted, err := fx.flow.CheckAccess(ctx, "p-9", models.AccessLevelMember, metadata)
	require.NoError(t, err)
	assert.True(t, granted)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, utils.ToPtr("req-42"), entries[0].RequestID)
	assert.Equal(t, utils.ToPtr("203.0.113.9"), entries[0].IPAddress)
}
