package dto

import "time"

// UnifiedMemberDTO is the resolved view of one person regardless of whether
// their record lives on an individual account or inside a corporate roster
type UnifiedMemberDTO struct {
	ID             string `json:"id"`
	MembershipType string `json:"membership_type" example:"corporate"`
	Status         string `json:"status" example:"approved"`

	Email        string  `json:"email"`
	PersonalName string  `json:"personal_name"`
	JobTitle     *string `json:"job_title,omitempty"`

	OrganizationID       string        `json:"organization_id,omitempty"`
	OrganizationName     *string       `json:"organization_name,omitempty"`
	OrganizationType     *string       `json:"organization_type,omitempty"`
	Portfolio            *PortfolioDTO `json:"portfolio,omitempty"`
	HasOtherAssociations *bool         `json:"has_other_associations,omitempty"`
	PrimaryContact       *ContactDTO   `json:"primary_contact,omitempty"`
	RegisteredAddress    *AddressDTO   `json:"registered_address,omitempty"`
	BusinessAddress      *AddressDTO   `json:"business_address,omitempty"`
	LogoURL              *string       `json:"logo_url,omitempty"`
	LinesOfBusiness      []string      `json:"lines_of_business,omitempty"`

	IsPrimaryContact       bool `json:"is_primary_contact"`
	IsAccountAdministrator bool `json:"is_account_administrator"`

	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ResolveMemberResponse wraps a single resolution result
type ResolveMemberResponse struct {
	Message string           `json:"message"`
	Member  UnifiedMemberDTO `json:"member"`
}

// AccessCheckRequest asks whether an identity clears a capability tier
type AccessCheckRequest struct {
	MemberID    string `json:"member_id" validate:"omitempty,max=128"`
	AccessLevel string `json:"access_level" validate:"required,oneof=guest member admin"`
}

// AccessCheckResponse reports the policy decision
type AccessCheckResponse struct {
	MemberID    string `json:"member_id,omitempty"`
	AccessLevel string `json:"access_level"`
	Granted     bool   `json:"granted"`
}

// OrganizationMemberDTO is one roster entry of a corporate account
type OrganizationMemberDTO struct {
	ID                     string     `json:"id"`
	OrganizationID         string     `json:"organization_id"`
	Email                  string     `json:"email"`
	PersonalName           string     `json:"personal_name"`
	JobTitle               *string    `json:"job_title,omitempty"`
	IsPrimaryContact       bool       `json:"is_primary_contact"`
	IsAccountAdministrator bool       `json:"is_account_administrator"`
	JoinedAt               *time.Time `json:"joined_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}
