package models

import (
	"time"

	"github.com/lib/pq"
)

// UnifiedMember is the derived, read-only projection of one person regardless
// of how their record is stored: a standalone individual account, or a member
// sub-record nested under a corporate account. It is never persisted; it is
// assembled by the resolution flow and consumed by policy checks, handlers,
// and exports.
type UnifiedMember struct {
	ID             string `json:"id"`
	MembershipType string `json:"membership_type"`
	Status         string `json:"status"`

	Email        string  `json:"email"`
	PersonalName string  `json:"personal_name"`
	JobTitle     *string `json:"job_title,omitempty"`

	// Organization context. OrganizationID points at the corporate account
	// owning the sub-record this person was found in; it stays empty for
	// individual identities even when the account carries organization
	// fields of its own.
	OrganizationID       string            `json:"organization_id,omitempty"`
	OrganizationName     *string           `json:"organization_name,omitempty"`
	OrganizationType     *string           `json:"organization_type,omitempty"`
	Portfolio            *PortfolioProfile `json:"portfolio,omitempty"`
	HasOtherAssociations *bool             `json:"has_other_associations,omitempty"`
	PrimaryContact       *ContactInfo      `json:"primary_contact,omitempty"`
	RegisteredAddress    *Address          `json:"registered_address,omitempty"`
	BusinessAddress      *Address          `json:"business_address,omitempty"`
	LogoURL              *string           `json:"logo_url,omitempty"`
	LinesOfBusiness      pq.StringArray    `json:"lines_of_business,omitempty"`

	IsPrimaryContact       bool `json:"is_primary_contact"`
	IsAccountAdministrator bool `json:"is_account_administrator"`

	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UnifiedFromIndividual builds the unified view of an individual account.
// Everything comes straight off the account, organization fields included,
// but no OrganizationID is set: that id marks a corporate sub-record's owner.
func UnifiedFromIndividual(account *Account) *UnifiedMember {
	u := &UnifiedMember{
		ID:                   account.ID,
		MembershipType:       MembershipTypeIndividual,
		Status:               account.Status,
		Email:                account.Email,
		JobTitle:             account.JobTitle,
		OrganizationName:     account.OrganizationName,
		OrganizationType:     account.OrganizationType,
		Portfolio:            account.Portfolio,
		HasOtherAssociations: account.HasOtherAssociations,
		PrimaryContact:       account.PrimaryContact,
		RegisteredAddress:    account.RegisteredAddress,
		BusinessAddress:      account.BusinessAddress,
		LogoURL:              account.LogoURL,
		LinesOfBusiness:      account.LinesOfBusiness,
		CreatedAt:            account.CreatedAt,
		UpdatedAt:            account.UpdatedAt,
	}
	if account.PersonalName != nil {
		u.PersonalName = *account.PersonalName
	}
	return u
}

// UnifiedFromCorporate builds the unified view of a member sub-record joined
// with its owning corporate account. Person fields come from the member,
// status and organization context from the account.
func UnifiedFromCorporate(account *Account, member *OrganizationMember) *UnifiedMember {
	return &UnifiedMember{
		ID:                     member.ID,
		MembershipType:         MembershipTypeCorporate,
		Status:                 account.Status,
		Email:                  member.Email,
		PersonalName:           member.PersonalName,
		JobTitle:               member.JobTitle,
		OrganizationID:         account.ID,
		OrganizationName:       account.OrganizationName,
		OrganizationType:       account.OrganizationType,
		Portfolio:              account.Portfolio,
		HasOtherAssociations:   account.HasOtherAssociations,
		PrimaryContact:         account.PrimaryContact,
		RegisteredAddress:      account.RegisteredAddress,
		BusinessAddress:        account.BusinessAddress,
		LogoURL:                account.LogoURL,
		LinesOfBusiness:        account.LinesOfBusiness,
		IsPrimaryContact:       member.IsPrimary(),
		IsAccountAdministrator: member.IsAdministrator(),
		JoinedAt:               member.JoinedAt,
		CreatedAt:              member.CreatedAt,
		UpdatedAt:              member.UpdatedAt,
	}
}
