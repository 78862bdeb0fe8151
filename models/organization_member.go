// Package models contains domain entities and business models for the membership back office
package models

import (
	"time"
)

// OrganizationMember is a person's record nested under a corporate Account.
// Its primary key is the person's identity id, drawn from the same id space
// as accounts. The organization_id column is the reverse lookup the original
// schema lacked: person-id to organization-id resolution is a single indexed
// query here instead of a scan over every organization.
type OrganizationMember struct {
	// Composite key: the same person id may appear under several
	// organizations, but only once per organization.
	ID             string   `gorm:"primaryKey;size:128" json:"id"`
	OrganizationID string   `gorm:"primaryKey;size:128;index:idx_org_members_organization_id" json:"organization_id"`
	Organization   *Account `gorm:"foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`

	Email        string  `gorm:"size:255;not null;index:idx_org_members_email" json:"email"`
	PersonalName string  `gorm:"size:255;not null" json:"personal_name"`
	JobTitle     *string `gorm:"size:120" json:"job_title,omitempty"`

	// At most one administrator/primary contact per organization is expected
	// but not enforced structurally; the consistency sweep reports violations.
	IsPrimaryContact       *bool `gorm:"default:false" json:"is_primary_contact"`
	IsAccountAdministrator *bool `gorm:"default:false" json:"is_account_administrator"`

	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}

// OrganizationMemberFilter represents filter criteria for member queries
type OrganizationMemberFilter struct {
	ID                     *string
	OrganizationID         *string
	Email                  *string
	IsPrimaryContact       *bool
	IsAccountAdministrator *bool
	JoinedAfter            *time.Time
	JoinedBefore           *time.Time
}

func (m *OrganizationMember) IsAdministrator() bool {
	return m.IsAccountAdministrator != nil && *m.IsAccountAdministrator
}

func (m *OrganizationMember) IsPrimary() bool {
	return m.IsPrimaryContact != nil && *m.IsPrimaryContact
}
