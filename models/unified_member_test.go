package models

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestEffectiveMembershipType(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		expected string
	}{
		{"corporate stays corporate", MembershipTypeCorporate, MembershipTypeCorporate},
		{"individual stays individual", MembershipTypeIndividual, MembershipTypeIndividual},
		{"empty legacy value is individual", "", MembershipTypeIndividual},
		{"unknown value is individual", "something-else", MembershipTypeIndividual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{MembershipType: tt.stored}
			assert.Equal(t, tt.expected, a.EffectiveMembershipType())
		})
	}
}

func TestUnifiedFromIndividual(t *testing.T) {
	account := &Account{
		ID:           "ind-1",
		Status:       StatusApproved,
		Email:        "jane@example.org",
		PersonalName: strPtr("Jane Broker"),
		JobTitle:     strPtr("Director"),
	}

	u := UnifiedFromIndividual(account)
	assert.Equal(t, "ind-1", u.ID)
	assert.Equal(t, MembershipTypeIndividual, u.MembershipType)
	assert.Equal(t, StatusApproved, u.Status)
	assert.Equal(t, "jane@example.org", u.Email)
	assert.Equal(t, "Jane Broker", u.PersonalName)
	// No organization fields, no organization context
	assert.Empty(t, u.OrganizationID)
	assert.Nil(t, u.OrganizationName)
}

func TestUnifiedFromIndividual_WithOrganizationFields(t *testing.T) {
	account := &Account{
		ID:               "ind-2",
		Status:           StatusApproved,
		Email:            "solo@example.org",
		OrganizationName: strPtr("Solo Services"),
		OrganizationType: strPtr(OrganizationTypeProvider),
	}

	u := UnifiedFromIndividual(account)
	// The organization fields travel along, but an OrganizationID marks a
	// corporate sub-record's owner, so an individual never carries one
	assert.Empty(t, u.OrganizationID)
	assert.Equal(t, strPtr("Solo Services"), u.OrganizationName)
	assert.Equal(t, strPtr(OrganizationTypeProvider), u.OrganizationType)
}

func TestUnifiedFromCorporate(t *testing.T) {
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	account := &Account{
		ID:                   "org-1",
		MembershipType:       MembershipTypeCorporate,
		Status:               StatusAdmin,
		Email:                "office@org-1.example.org",
		OrganizationName:     strPtr("Org One Ltd"),
		OrganizationType:     strPtr(OrganizationTypeMGA),
		Portfolio:            &PortfolioProfile{PremiumBand: "10m-50m"},
		HasOtherAssociations: boolPtr(true),
		PrimaryContact:       &ContactInfo{Name: "Pat Chair", Email: "pat@org-1.example.org"},
		RegisteredAddress:    &Address{Line1: "1 Lime St", City: "London", Country: "GB"},
		LogoURL:              strPtr("/assets/logos/org-1.png"),
		LinesOfBusiness:      pq.StringArray{"property", "casualty"},
	}
	member := &OrganizationMember{
		ID:                     "p-1",
		OrganizationID:         "org-1",
		Email:                  "p-1@example.org",
		PersonalName:           "Alex Underwriter",
		IsAccountAdministrator: boolPtr(true),
		JoinedAt:               &joined,
		UpdatedAt:              updated,
	}

	u := UnifiedFromCorporate(account, member)
	assert.Equal(t, "p-1", u.ID)
	assert.Equal(t, MembershipTypeCorporate, u.MembershipType)
	// Person fields from the member, status from the account
	assert.Equal(t, "p-1@example.org", u.Email)
	assert.Equal(t, "Alex Underwriter", u.PersonalName)
	assert.Equal(t, StatusAdmin, u.Status)
	assert.Equal(t, "org-1", u.OrganizationID)
	assert.True(t, u.IsAccountAdministrator)
	assert.Equal(t, &joined, u.JoinedAt)
	assert.Equal(t, updated, u.UpdatedAt)
	// Organization profile fields come from the owning account
	assert.Equal(t, account.Portfolio, u.Portfolio)
	assert.Equal(t, boolPtr(true), u.HasOtherAssociations)
	assert.Equal(t, account.PrimaryContact, u.PrimaryContact)
	assert.Equal(t, account.RegisteredAddress, u.RegisteredAddress)
	assert.Equal(t, strPtr("/assets/logos/org-1.png"), u.LogoURL)
	assert.Equal(t, pq.StringArray{"property", "casualty"}, u.LinesOfBusiness)
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("vip"))
	assert.False(t, IsValidStatus("Approved"))
}

func TestTaskStateHelpers(t *testing.T) {
	task := &Task{Kind: TaskKindTask, Status: TaskStatusOpen}
	assert.True(t, task.IsOpen())
	assert.False(t, task.IsNote())

	task.Status = TaskStatusCompleted
	assert.False(t, task.IsOpen())

	note := &Task{Kind: TaskKindNote, Status: TaskStatusOpen}
	assert.True(t, note.IsNote())
	// Notes are never "open" work items
	assert.False(t, note.IsOpen())
}

func TestAuditLogIntegrityEvents(t *testing.T) {
	assert.True(t, (&AuditLog{Action: AuditActionAmbiguousMembership}).IsIntegrityEvent())
	assert.True(t, (&AuditLog{Action: AuditActionConsistencySweep}).IsIntegrityEvent())
	assert.False(t, (&AuditLog{Action: AuditActionMemberResolved}).IsIntegrityEvent())
}
