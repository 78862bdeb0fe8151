package businessflow

import (
	"context"
	"testing"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	testingutil "github.com/fasehq/backoffice/testing"
	"github.com/fasehq/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directoryFixture struct {
	flow     DirectoryFlow
	accounts *testingutil.FakeAccountRepository
	members  *testingutil.FakeOrganizationMemberRepository
	audit    *testingutil.FakeAuditLogRepository
}

// newDirectoryFixture seeds a small directory:
//   - ind-1: individual, approved
//   - ind-2: individual, pending
//   - org-1: corporate MGA, approved, roster of two
//   - org-2: corporate carrier, admin status, roster of one
func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	ctx := context.Background()

	accounts := testingutil.NewFakeAccountRepository()
	members := testingutil.NewFakeOrganizationMemberRepository(accounts)
	audit := testingutil.NewFakeAuditLogRepository()

	require.NoError(t, accounts.Save(ctx, testingutil.IndividualAccount("ind-1", models.StatusApproved)))
	require.NoError(t, accounts.Save(ctx, testingutil.IndividualAccount("ind-2", models.StatusPending)))

	require.NoError(t, accounts.Save(ctx, testingutil.CorporateAccount("org-1", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, members.Save(ctx, testingutil.AdministratorMember("org-1-admin", "org-1")))
	require.NoError(t, members.Save(ctx, testingutil.RosterMember("org-1-uw", "org-1")))

	require.NoError(t, accounts.Save(ctx, testingutil.CorporateAccount("org-2", models.StatusAdmin, models.OrganizationTypeCarrier)))
	require.NoError(t, members.Save(ctx, testingutil.AdministratorMember("org-2-admin", "org-2")))

	return &directoryFixture{
		flow:     NewDirectoryFlow(accounts, members, audit),
		accounts: accounts,
		members:  members,
		audit:    audit,
	}
}

func memberIDs(items []dto.UnifiedMemberDTO) []string {
	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestMembersByStatus_ExpandsCorporateRosters(t *testing.T) {
	fx := newDirectoryFixture(t)

	resp, err := fx.flow.MembersByStatus(context.Background(), &dto.MembersByStatusRequest{Status: models.StatusApproved}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ind-1", "org-1-admin", "org-1-uw"}, memberIDs(resp.Items))
	assert.Equal(t, int64(3), resp.Pagination.Total)
}

func TestMembersByStatus_UnknownStatus(t *testing.T) {
	fx := newDirectoryFixture(t)

	_, err := fx.flow.MembersByStatus(context.Background(), &dto.MembersByStatusRequest{Status: "vip"}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidStatus(err))
}

func TestMembersByStatus_StatusRequired(t *testing.T) {
	fx := newDirectoryFixture(t)

	_, err := fx.flow.MembersByStatus(context.Background(), &dto.MembersByStatusRequest{}, nil)
	require.Error(t, err)

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "DIRECTORY_VALIDATION_FAILED", bizErr.Code)
}

func TestMembersByStatus_Pagination(t *testing.T) {
	fx := newDirectoryFixture(t)

	resp, err := fx.flow.MembersByStatus(context.Background(), &dto.MembersByStatusRequest{
		Status:   models.StatusApproved,
		Page:     2,
		PageSize: 2,
	}, nil)
	require.NoError(t, err)

	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
}

func TestAccountsByStatus(t *testing.T) {
	fx := newDirectoryFixture(t)

	resp, err := fx.flow.AccountsByStatus(context.Background(), &dto.AccountsByStatusRequest{Status: models.StatusApproved}, nil)
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Items))
	for _, a := range resp.Items {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"ind-1", "org-1"}, ids)
}

func TestAccountsByStatus_CorporateRowsCarryAdministrator(t *testing.T) {
	fx := newDirectoryFixture(t)

	resp, err := fx.flow.AccountsByStatus(context.Background(), &dto.AccountsByStatusRequest{Status: models.StatusApproved}, nil)
	require.NoError(t, err)

	byID := make(map[string]dto.AccountDTO, len(resp.Items))
	for _, a := range resp.Items {
		byID[a.ID] = a
	}

	// The corporate row presents its account administrator as the person
	org := byID["org-1"]
	assert.Equal(t, "org-1-admin@example.org", org.Email)
	assert.Equal(t, strPtr("Alex Underwriter"), org.PersonalName)
	assert.Equal(t, strPtr("Underwriter"), org.JobTitle)

	// Individual rows keep their own contact fields
	ind := byID["ind-1"]
	assert.Equal(t, "ind-1@example.org", ind.Email)
}

func TestAccountsByStatus_StandInFallbackChain(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	// org-3's roster has a primary contact but no administrator
	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-3", models.StatusApproved, models.OrganizationTypeMGA)))
	contact := testingutil.RosterMember("org-3-contact", "org-3")
	contact.IsPrimaryContact = utils.ToPtr(true)
	require.NoError(t, fx.members.Save(ctx, contact))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("org-3-uw", "org-3")))

	// org-4 has an empty roster
	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-4", models.StatusApproved, models.OrganizationTypeCarrier)))

	resp, err := fx.flow.AccountsByStatus(ctx, &dto.AccountsByStatusRequest{Status: models.StatusApproved}, nil)
	require.NoError(t, err)

	byID := make(map[string]dto.AccountDTO, len(resp.Items))
	for _, a := range resp.Items {
		byID[a.ID] = a
	}

	assert.Equal(t, "org-3-contact@example.org", byID["org-3"].Email)
	assert.Equal(t, "office@org-4.example.org", byID["org-4"].Email)
}

func TestMembersWithPortalAccess(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		accessLevel string
		expected    []string
	}{
		{
			name:        "member tier is approved plus admin statuses",
			accessLevel: "member",
			expected:    []string{"ind-1", "org-1-admin", "org-1-uw", "org-2-admin"},
		},
		{
			name:        "admin tier is admin status only",
			accessLevel: "admin",
			expected:    []string{"org-2-admin"},
		},
		{
			name:        "guest tier is the whole directory",
			accessLevel: "guest",
			expected:    []string{"ind-1", "ind-2", "org-1-admin", "org-1-uw", "org-2-admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := fx.flow.MembersWithPortalAccess(ctx, &dto.MembersWithPortalAccessRequest{AccessLevel: tt.accessLevel}, nil)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, memberIDs(resp.Items))
		})
	}
}

func TestMembersWithPortalAccess_UnknownLevel(t *testing.T) {
	fx := newDirectoryFixture(t)

	_, err := fx.flow.MembersWithPortalAccess(context.Background(), &dto.MembersWithPortalAccessRequest{AccessLevel: "superuser"}, nil)
	require.Error(t, err)

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "DIRECTORY_VALIDATION_FAILED", bizErr.Code)
}

func TestMembersByOrganizationType(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	resp, err := fx.flow.MembersByOrganizationType(ctx, &dto.MembersByOrganizationTypeRequest{OrganizationType: models.OrganizationTypeMGA}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"org-1-admin", "org-1-uw"}, memberIDs(resp.Items))

	resp, err = fx.flow.MembersByOrganizationType(ctx, &dto.MembersByOrganizationTypeRequest{OrganizationType: models.OrganizationTypeCarrier}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"org-2-admin"}, memberIDs(resp.Items))
}

func TestMembersByOrganizationType_IncludesIndividualWithOrgFields(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	// An individual account carrying organization fields of its own
	sole := testingutil.IndividualAccount("ind-3", models.StatusApproved)
	sole.OrganizationName = strPtr("Solo Provider Services")
	sole.OrganizationType = strPtr(models.OrganizationTypeProvider)
	require.NoError(t, fx.accounts.Save(ctx, sole))

	resp, err := fx.flow.MembersByOrganizationType(ctx, &dto.MembersByOrganizationTypeRequest{OrganizationType: models.OrganizationTypeProvider}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ind-3"}, memberIDs(resp.Items))
}

func TestMembersByOrganizationType_ExcludesNonPortalStatuses(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	// A pending MGA organization must not leak into the type listing
	require.NoError(t, fx.accounts.Save(ctx, testingutil.CorporateAccount("org-5", models.StatusPending, models.OrganizationTypeMGA)))
	require.NoError(t, fx.members.Save(ctx, testingutil.RosterMember("org-5-uw", "org-5")))

	resp, err := fx.flow.MembersByOrganizationType(ctx, &dto.MembersByOrganizationTypeRequest{OrganizationType: models.OrganizationTypeMGA}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"org-1-admin", "org-1-uw"}, memberIDs(resp.Items))
}

func TestMembersByOrganizationType_Unknown(t *testing.T) {
	fx := newDirectoryFixture(t)

	_, err := fx.flow.MembersByOrganizationType(context.Background(), &dto.MembersByOrganizationTypeRequest{OrganizationType: "retailer"}, nil)
	require.Error(t, err)
	assert.True(t, IsUnknownOrgType(err))
}

func TestExportDirectory(t *testing.T) {
	fx := newDirectoryFixture(t)

	data, filename, err := fx.flow.ExportDirectory(context.Background(), &dto.ExportDirectoryRequest{}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	// xlsx files are zip archives
	assert.Equal(t, []byte("PK"), data[:2])
	assert.Contains(t, filename, "member-directory-")

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionDirectoryExported, entries[0].Action)
}

func TestExportDirectory_UnknownStatus(t *testing.T) {
	fx := newDirectoryFixture(t)

	_, _, err := fx.flow.ExportDirectory(context.Background(), &dto.ExportDirectoryRequest{Status: strPtr("vip")}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidStatus(err))
}

func strPtr(s string) *string { return &s }
