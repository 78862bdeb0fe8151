package dto

import "time"

// AddMemberRequest adds a person to a corporate account's roster
type AddMemberRequest struct {
	OrganizationID         string     `json:"organization_id" validate:"required,max=128"`
	MemberID               string     `json:"member_id" validate:"required,max=128"`
	Email                  string     `json:"email" validate:"required,email,max=255"`
	PersonalName           string     `json:"personal_name" validate:"required,max=255"`
	JobTitle               *string    `json:"job_title,omitempty" validate:"omitempty,max=120"`
	IsPrimaryContact       bool       `json:"is_primary_contact"`
	IsAccountAdministrator bool       `json:"is_account_administrator"`
	JoinedAt               *time.Time `json:"joined_at,omitempty"`
}

// UpdateMemberRequest edits one roster entry
type UpdateMemberRequest struct {
	OrganizationID         string  `json:"organization_id" validate:"required,max=128"`
	MemberID               string  `json:"member_id" validate:"required,max=128"`
	Email                  *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	PersonalName           *string `json:"personal_name,omitempty" validate:"omitempty,max=255"`
	JobTitle               *string `json:"job_title,omitempty" validate:"omitempty,max=120"`
	IsPrimaryContact       *bool   `json:"is_primary_contact,omitempty"`
	IsAccountAdministrator *bool   `json:"is_account_administrator,omitempty"`
}

// RemoveMemberRequest removes one roster entry
type RemoveMemberRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,max=128"`
	MemberID       string `json:"member_id" validate:"required,max=128"`
}

// RosterResponse carries one organization's full roster
type RosterResponse struct {
	Message        string                  `json:"message"`
	OrganizationID string                  `json:"organization_id"`
	Members        []OrganizationMemberDTO `json:"members"`
}

// MemberMutationResponse reports the affected roster entry
type MemberMutationResponse struct {
	Message string                `json:"message"`
	Member  OrganizationMemberDTO `json:"member"`
}
