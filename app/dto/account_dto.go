package dto

import "time"

// PortfolioDTO mirrors the stored portfolio profile of an organization
type PortfolioDTO struct {
	PremiumBand string             `json:"premium_band,omitempty"`
	BusinessMix map[string]float64 `json:"business_mix,omitempty"`
}

// ContactDTO mirrors an embedded contact record
type ContactDTO struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
}

// AddressDTO mirrors an embedded postal address
type AddressDTO struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// AccountDTO contains full account info for back-office views
type AccountDTO struct {
	ID             string `json:"id"`
	MembershipType string `json:"membership_type" example:"corporate"`
	Status         string `json:"status" example:"pending"`

	Email        string  `json:"email"`
	PersonalName *string `json:"personal_name,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`

	OrganizationName     *string       `json:"organization_name,omitempty"`
	OrganizationType     *string       `json:"organization_type,omitempty"`
	Portfolio            *PortfolioDTO `json:"portfolio,omitempty"`
	HasOtherAssociations *bool         `json:"has_other_associations,omitempty"`
	PrimaryContact       *ContactDTO   `json:"primary_contact,omitempty"`
	RegisteredAddress    *AddressDTO   `json:"registered_address,omitempty"`
	BusinessAddress      *AddressDTO   `json:"business_address,omitempty"`
	LogoURL              *string       `json:"logo_url,omitempty"`
	LinesOfBusiness      []string      `json:"lines_of_business,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetAccountResponse carries one account with its roster and activity
type GetAccountResponse struct {
	Message  string                  `json:"message"`
	Account  AccountDTO              `json:"account"`
	Members  []OrganizationMemberDTO `json:"members,omitempty"`
	Activity []AuditEntryDTO         `json:"activity,omitempty"`
}

// ListAccountsRequest filters the back-office account list
type ListAccountsRequest struct {
	Status           *string `json:"status,omitempty" validate:"omitempty,oneof=guest pending approved admin pending_invoice pending_payment invoice_sent flagged rejected paid"`
	MembershipType   *string `json:"membership_type,omitempty" validate:"omitempty,oneof=individual corporate"`
	OrganizationType *string `json:"organization_type,omitempty" validate:"omitempty,oneof=mga carrier provider"`
	NameContains     *string `json:"name_contains,omitempty" validate:"omitempty,max=255"`
	Page             int     `json:"page" validate:"omitempty,min=1"`
	PageSize         int     `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListAccountsResponse is the paged account list
type ListAccountsResponse struct {
	Message    string       `json:"message"`
	Items      []AccountDTO `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// UpdateAccountStatusRequest moves an account through the review lifecycle
type UpdateAccountStatusRequest struct {
	AccountID string  `json:"account_id" validate:"required,max=128"`
	Status    string  `json:"status" validate:"required,oneof=guest pending approved admin pending_invoice pending_payment invoice_sent flagged rejected paid"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

// UpdateAccountStatusResponse reports the applied transition
type UpdateAccountStatusResponse struct {
	Message        string `json:"message"`
	AccountID      string `json:"account_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// UploadLogoResponse reports the stored logo location
type UploadLogoResponse struct {
	Message      string `json:"message"`
	AccountID    string `json:"account_id"`
	LogoURL      string `json:"logo_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
