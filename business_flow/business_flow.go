// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToUnifiedMemberDTO converts a resolved member to its API representation
func ToUnifiedMemberDTO(m models.UnifiedMember) dto.UnifiedMemberDTO {
	out := dto.UnifiedMemberDTO{
		ID:                     m.ID,
		MembershipType:         m.MembershipType,
		Status:                 m.Status,
		Email:                  m.Email,
		PersonalName:           m.PersonalName,
		JobTitle:               m.JobTitle,
		OrganizationID:         m.OrganizationID,
		OrganizationName:       m.OrganizationName,
		OrganizationType:       m.OrganizationType,
		HasOtherAssociations:   m.HasOtherAssociations,
		LogoURL:                m.LogoURL,
		LinesOfBusiness:        m.LinesOfBusiness,
		IsPrimaryContact:       m.IsPrimaryContact,
		IsAccountAdministrator: m.IsAccountAdministrator,
		JoinedAt:               m.JoinedAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
	if m.Portfolio != nil {
		out.Portfolio = &dto.PortfolioDTO{
			PremiumBand: m.Portfolio.PremiumBand,
			BusinessMix: m.Portfolio.BusinessMix,
		}
	}
	if m.PrimaryContact != nil {
		out.PrimaryContact = toContactDTO(m.PrimaryContact)
	}
	if m.RegisteredAddress != nil {
		out.RegisteredAddress = toAddressDTO(m.RegisteredAddress)
	}
	if m.BusinessAddress != nil {
		out.BusinessAddress = toAddressDTO(m.BusinessAddress)
	}
	return out
}

// ToAccountDTO converts an account model to its API representation
func ToAccountDTO(a models.Account) dto.AccountDTO {
	out := dto.AccountDTO{
		ID:                   a.ID,
		MembershipType:       a.EffectiveMembershipType(),
		Status:               a.Status,
		Email:                a.Email,
		PersonalName:         a.PersonalName,
		JobTitle:             a.JobTitle,
		OrganizationName:     a.OrganizationName,
		OrganizationType:     a.OrganizationType,
		HasOtherAssociations: a.HasOtherAssociations,
		LogoURL:              a.LogoURL,
		LinesOfBusiness:      a.LinesOfBusiness,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if a.Portfolio != nil {
		out.Portfolio = &dto.PortfolioDTO{
			PremiumBand: a.Portfolio.PremiumBand,
			BusinessMix: a.Portfolio.BusinessMix,
		}
	}
	if a.PrimaryContact != nil {
		out.PrimaryContact = toContactDTO(a.PrimaryContact)
	}
	if a.RegisteredAddress != nil {
		out.RegisteredAddress = toAddressDTO(a.RegisteredAddress)
	}
	if a.BusinessAddress != nil {
		out.BusinessAddress = toAddressDTO(a.BusinessAddress)
	}
	return out
}

func toContactDTO(c *models.ContactInfo) *dto.ContactDTO {
	return &dto.ContactDTO{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		JobTitle: c.JobTitle,
	}
}

func toAddressDTO(a *models.Address) *dto.AddressDTO {
	return &dto.AddressDTO{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// ToOrganizationMemberDTO converts a roster entry to its API representation
func ToOrganizationMemberDTO(m models.OrganizationMember) dto.OrganizationMemberDTO {
	return dto.OrganizationMemberDTO{
		ID:                     m.ID,
		OrganizationID:         m.OrganizationID,
		Email:                  m.Email,
		PersonalName:           m.PersonalName,
		JobTitle:               m.JobTitle,
		IsPrimaryContact:       m.IsPrimary(),
		IsAccountAdministrator: m.IsAdministrator(),
		JoinedAt:               m.JoinedAt,
		CreatedAt:              m.CreatedAt,
	}
}

// ToAdminDTOModel converts an admin model to its API representation
func ToAdminDTOModel(admin models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		ID:        admin.ID,
		UUID:      admin.UUID.String(),
		Username:  admin.Username,
		IsActive:  admin.IsActive,
		CreatedAt: admin.CreatedAt.Format(time.RFC3339),
	}
}

// ToAdminSessionDTO builds the session payload returned on admin login
func ToAdminSessionDTO(accessToken, refreshToken string) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNowRFC3339(),
	}
}

// ToTaskDTO converts a task model to its API representation
func ToTaskDTO(t models.Task) dto.TaskDTO {
	return dto.TaskDTO{
		ID:        t.ID,
		Kind:      t.Kind,
		AccountID: t.AccountID,
		MemberID:  t.MemberID,
		Title:     t.Title,
		Body:      t.Body,
		Status:    t.Status,
		AdminID:   t.AdminID,
		DueAt:     t.DueAt,
		DoneAt:    t.DoneAt,
		CreatedAt: t.CreatedAt,
	}
}

// ToAuditEntryDTO converts an audit entry to its API representation
func ToAuditEntryDTO(e models.AuditLog) dto.AuditEntryDTO {
	return dto.AuditEntryDTO{
		ID:          e.ID,
		AccountID:   e.AccountID,
		MemberID:    e.MemberID,
		AdminID:     e.AdminID,
		Action:      e.Action,
		Description: e.Description,
		Success:     e.Success,
		CreatedAt:   e.CreatedAt,
	}
}

// normalizePage applies the default page and page-size bounds shared by the
// list flows
func normalizePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
