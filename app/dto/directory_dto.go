package dto

// MembersByStatusRequest lists unified members holding one status
type MembersByStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=guest pending approved admin pending_invoice pending_payment invoice_sent flagged rejected paid"`
	Page     int    `json:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// AccountsByStatusRequest lists accounts holding one status
type AccountsByStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=guest pending approved admin pending_invoice pending_payment invoice_sent flagged rejected paid"`
	Page     int    `json:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// MembersByOrganizationTypeRequest lists members of mga/carrier/provider organizations
type MembersByOrganizationTypeRequest struct {
	OrganizationType string `json:"organization_type" validate:"required,oneof=mga carrier provider"`
	Page             int    `json:"page" validate:"omitempty,min=1"`
	PageSize         int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// MembersWithPortalAccessRequest lists members clearing a capability tier
type MembersWithPortalAccessRequest struct {
	AccessLevel string `json:"access_level" validate:"required,oneof=guest member admin"`
	Page        int    `json:"page" validate:"omitempty,min=1"`
	PageSize    int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// MemberListResponse is the shared paged list of unified members
type MemberListResponse struct {
	Message    string             `json:"message"`
	Items      []UnifiedMemberDTO `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

// ExportDirectoryRequest builds an xlsx workbook of the directory
type ExportDirectoryRequest struct {
	Status           *string `json:"status,omitempty" validate:"omitempty,oneof=guest pending approved admin pending_invoice pending_payment invoice_sent flagged rejected paid"`
	OrganizationType *string `json:"organization_type,omitempty" validate:"omitempty,oneof=mga carrier provider"`
}
