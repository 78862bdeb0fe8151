package testing

import (
	"fmt"
	"math/rand"

	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IndividualAccount builds an individual member account for tests.
func IndividualAccount(id, status string) *models.Account {
	now := utils.UTCNow()
	return &models.Account{
		ID:             id,
		MembershipType: models.MembershipTypeIndividual,
		Status:         status,
		Email:          fmt.Sprintf("%s@example.org", id),
		PersonalName:   utils.ToPtr("Jane Broker"),
		JobTitle:       utils.ToPtr("Account Executive"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CorporateAccount builds a corporate account for tests.
func CorporateAccount(id, status, organizationType string) *models.Account {
	now := utils.UTCNow()
	return &models.Account{
		ID:               id,
		MembershipType:   models.MembershipTypeCorporate,
		Status:           status,
		Email:            fmt.Sprintf("office@%s.example.org", id),
		OrganizationName: utils.ToPtr(fmt.Sprintf("%s Underwriting Ltd", id)),
		OrganizationType: utils.ToPtr(organizationType),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// RosterMember builds a member sub-record on one organization's roster.
func RosterMember(memberID, organizationID string) *models.OrganizationMember {
	now := utils.UTCNow()
	return &models.OrganizationMember{
		ID:             memberID,
		OrganizationID: organizationID,
		Email:          fmt.Sprintf("%s@example.org", memberID),
		PersonalName:   "Alex Underwriter",
		JobTitle:       utils.ToPtr("Underwriter"),
		JoinedAt:       &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AdministratorMember builds a roster member flagged as the organization's
// account administrator.
func AdministratorMember(memberID, organizationID string) *models.OrganizationMember {
	m := RosterMember(memberID, organizationID)
	m.IsAccountAdministrator = utils.ToPtr(true)
	m.IsPrimaryContact = utils.ToPtr(true)
	return m
}

// TestAdmin builds a back-office admin with the given plaintext password hashed.
func TestAdmin(username, password string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := utils.UTCNow()
	return &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TestTask builds an open task attached to an account.
func TestTask(accountID, title string) *models.Task {
	now := utils.UTCNow()
	return &models.Task{
		Kind:      models.TaskKindTask,
		AccountID: accountID,
		Title:     title,
		Status:    models.TaskStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestNote builds a note attached to an account.
func TestNote(accountID, title string) *models.Task {
	t := TestTask(accountID, title)
	t.Kind = models.TaskKindNote
	return t
}

// TestFixtures persists fixture entities into a real test database.
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateAccount persists an account, generating an id when none is set.
func (tf *TestFixtures) CreateAccount(account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = fmt.Sprintf("acct-%06d", rand.Intn(1000000))
	}
	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}
	return account, nil
}

// CreateRosterMember persists a member sub-record.
func (tf *TestFixtures) CreateRosterMember(member *models.OrganizationMember) (*models.OrganizationMember, error) {
	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create test roster member: %w", err)
	}
	return member, nil
}

// CreateAdmin persists a back-office admin.
func (tf *TestFixtures) CreateAdmin(username, password string) (*models.Admin, error) {
	admin, err := TestAdmin(username, password)
	if err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateOrganizationWithRoster persists a corporate account plus n roster
// members; the first member is the account administrator.
func (tf *TestFixtures) CreateOrganizationWithRoster(orgID, status string, n int) (*models.Account, []*models.OrganizationMember, error) {
	org, err := tf.CreateAccount(CorporateAccount(orgID, status, models.OrganizationTypeMGA))
	if err != nil {
		return nil, nil, err
	}

	var members []*models.OrganizationMember
	for i := 0; i < n; i++ {
		var m *models.OrganizationMember
		memberID := fmt.Sprintf("%s-member-%d", orgID, i+1)
		if i == 0 {
			m = AdministratorMember(memberID, orgID)
		} else {
			m = RosterMember(memberID, orgID)
		}
		if _, err := tf.CreateRosterMember(m); err != nil {
			return nil, nil, err
		}
		members = append(members, m)
	}

	return org, members, nil
}
