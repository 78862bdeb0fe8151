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

type membershipFixture struct {
	flow     MembershipFlow
	accounts *testingutil.FakeAccountRepository
	members  *testingutil.FakeOrganizationMemberRepository
	audit    *testingutil.FakeAuditLogRepository
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()
	ctx := context.Background()

	accounts := testingutil.NewFakeAccountRepository()
	members := testingutil.NewFakeOrganizationMemberRepository(accounts)
	audit := testingutil.NewFakeAuditLogRepository()

	require.NoError(t, accounts.Save(ctx, testingutil.CorporateAccount("org-1", models.StatusApproved, models.OrganizationTypeMGA)))
	require.NoError(t, accounts.Save(ctx, testingutil.CorporateAccount("org-2", models.StatusApproved, models.OrganizationTypeCarrier)))
	require.NoError(t, accounts.Save(ctx, testingutil.IndividualAccount("ind-1", models.StatusApproved)))
	require.NoError(t, members.Save(ctx, testingutil.AdministratorMember("org-1-admin", "org-1")))
	require.NoError(t, members.Save(ctx, testingutil.RosterMember("org-1-uw", "org-1")))

	return &membershipFixture{
		flow:     NewMembershipFlow(accounts, members, audit, nil),
		accounts: accounts,
		members:  members,
		audit:    audit,
	}
}

func TestGetRoster(t *testing.T) {
	fx := newMembershipFixture(t)

	resp, err := fx.flow.GetRoster(context.Background(), "org-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "org-1", resp.OrganizationID)
	assert.Len(t, resp.Members, 2)
}

func TestGetRoster_AccountNotFound(t *testing.T) {
	fx := newMembershipFixture(t)

	_, err := fx.flow.GetRoster(context.Background(), "org-missing", nil)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))
}

func TestGetRoster_NotCorporate(t *testing.T) {
	fx := newMembershipFixture(t)

	_, err := fx.flow.GetRoster(context.Background(), "ind-1", nil)
	require.Error(t, err)
	assert.True(t, IsAccountNotCorporate(err))
}

func TestAddMember(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	resp, err := fx.flow.AddMember(ctx, &dto.AddMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "p-new",
		Email:          "p-new@example.org",
		PersonalName:   "Pat Newman",
	}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "p-new", resp.Member.ID)

	stored, err := fx.members.ByOrganizationAndID(ctx, "org-1", "p-new")
	require.NoError(t, err)
	require.NotNil(t, stored)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionMemberAdded, entries[0].Action)
}

func TestAddMember_DuplicateInSameRoster(t *testing.T) {
	fx := newMembershipFixture(t)

	_, err := fx.flow.AddMember(context.Background(), &dto.AddMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "org-1-uw",
		Email:          "dup@example.org",
		PersonalName:   "Dup Licate",
	}, 1, nil)
	require.Error(t, err)
	assert.True(t, IsMemberAlreadyInRoster(err))
}

func TestAddMember_SameIDInAnotherOrganizationAllowed(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	// org-1-uw already sits on org-1's roster; adding the same id to org-2
	// is legitimate and must succeed
	resp, err := fx.flow.AddMember(ctx, &dto.AddMemberRequest{
		OrganizationID: "org-2",
		MemberID:       "org-1-uw",
		Email:          "org-1-uw@example.org",
		PersonalName:   "Alex Underwriter",
	}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "org-1-uw", resp.Member.ID)

	memberships, err := fx.members.ByMemberID(ctx, "org-1-uw")
	require.NoError(t, err)
	assert.Len(t, memberships, 2)
}

func TestAddMember_Validation(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	_, err := fx.flow.AddMember(ctx, &dto.AddMemberRequest{MemberID: "x", Email: "x@example.org", PersonalName: "X"}, 1, nil)
	require.Error(t, err)

	_, err = fx.flow.AddMember(ctx, &dto.AddMemberRequest{OrganizationID: "org-1", MemberID: "x", PersonalName: "X"}, 1, nil)
	require.Error(t, err)

	_, err = fx.flow.AddMember(ctx, &dto.AddMemberRequest{OrganizationID: "org-1", MemberID: "x", Email: "x@example.org"}, 1, nil)
	require.Error(t, err)
}

func TestUpdateMember(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	resp, err := fx.flow.UpdateMember(ctx, &dto.UpdateMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "org-1-uw",
		PersonalName:   strPtr("Alexandra Underwriter"),
		JobTitle:       strPtr("Senior Underwriter"),
	}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra Underwriter", resp.Member.PersonalName)

	stored, err := fx.members.ByOrganizationAndID(ctx, "org-1", "org-1-uw")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Alexandra Underwriter", stored.PersonalName)
	assert.Equal(t, utils.ToPtr("Senior Underwriter"), stored.JobTitle)
}

func TestUpdateMember_NotInRoster(t *testing.T) {
	fx := newMembershipFixture(t)

	_, err := fx.flow.UpdateMember(context.Background(), &dto.UpdateMemberRequest{
		OrganizationID: "org-2",
		MemberID:       "org-1-uw",
	}, 1, nil)
	require.Error(t, err)
	assert.True(t, IsMemberNotInRoster(err))
}

func TestRemoveMember(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	err := fx.flow.RemoveMember(ctx, &dto.RemoveMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "org-1-uw",
	}, 1, nil)
	require.NoError(t, err)

	stored, err := fx.members.ByOrganizationAndID(ctx, "org-1", "org-1-uw")
	require.NoError(t, err)
	assert.Nil(t, stored)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionMemberRemoved, entries[0].Action)
}

func TestRemoveMember_LastAdministratorGuard(t *testing.T) {
	fx := newMembershipFixture(t)
	ctx := context.Background()

	err := fx.flow.RemoveMember(ctx, &dto.RemoveMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "org-1-admin",
	}, 1, nil)
	require.Error(t, err)
	assert.True(t, IsLastAdministrator(err))

	// With a second administrator on the roster the removal goes through
	second := testingutil.AdministratorMember("org-1-admin2", "org-1")
	require.NoError(t, fx.members.Save(ctx, second))

	err = fx.flow.RemoveMember(ctx, &dto.RemoveMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "org-1-admin",
	}, 1, nil)
	require.NoError(t, err)
}

func TestRemoveMember_NotInRoster(t *testing.T) {
	fx := newMembershipFixture(t)

	err := fx.flow.RemoveMember(context.Background(), &dto.RemoveMemberRequest{
		OrganizationID: "org-1",
		MemberID:       "ghost",
	}, 1, nil)
	require.Error(t, err)
	assert.True(t, IsMemberNotInRoster(err))
}
