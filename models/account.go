// Package models contains domain entities and business models for the membership back office
package models

import (
	"time"

	"github.com/lib/pq"
)

// Membership type constants. An empty membership type on a stored account is
// treated as individual everywhere (legacy records predate the field).
const (
	MembershipTypeIndividual = "individual"
	MembershipTypeCorporate  = "corporate"
)

// Organization type constants
const (
	OrganizationTypeMGA      = "mga"
	OrganizationTypeCarrier  = "carrier"
	OrganizationTypeProvider = "provider"
)

// Account lifecycle status constants. Status gates directory visibility and
// portal capability; transitions are applied by admin flows, the model does
// not validate them.
const (
	StatusGuest          = "guest"
	StatusPending        = "pending"
	StatusApproved       = "approved"
	StatusAdmin          = "admin"
	StatusPendingInvoice = "pending_invoice"
	StatusPendingPayment = "pending_payment"
	StatusInvoiceSent    = "invoice_sent"
	StatusFlagged        = "flagged"
	StatusRejected       = "rejected"
	StatusPaid           = "paid"
)

// AllStatuses lists every valid account status.
var AllStatuses = []string{
	StatusGuest,
	StatusPending,
	StatusApproved,
	StatusAdmin,
	StatusPendingInvoice,
	StatusPendingPayment,
	StatusInvoiceSent,
	StatusFlagged,
	StatusRejected,
	StatusPaid,
}

// IsValidStatus reports whether s is a known account status.
func IsValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PortfolioProfile describes an organization's premium band and business mix.
type PortfolioProfile struct {
	PremiumBand string             `json:"premium_band,omitempty"`
	BusinessMix map[string]float64 `json:"business_mix,omitempty"`
}

// ContactInfo is an embedded contact record (primary contact on an account).
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
}

// Address is an embedded postal address.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Account is the top-level stored entity representing either one individual
// member or one organization. The primary key is an opaque identity id that
// shares its id space with OrganizationMember: a corporate primary contact's
// personal id and the organization's account id are historically the same
// value.
type Account struct {
	ID             string `gorm:"primaryKey;size:128" json:"id"`
	MembershipType string `gorm:"size:20;index:idx_accounts_membership_type" json:"membership_type"`
	Status         string `gorm:"size:20;not null;default:guest;index:idx_accounts_status" json:"status"`

	// Person fields (authoritative for individual accounts; corporate
	// accounts keep person fields on their member sub-records instead)
	Email        string  `gorm:"size:255;not null;index:idx_accounts_email" json:"email"`
	PersonalName *string `gorm:"size:255" json:"personal_name,omitempty"`
	JobTitle     *string `gorm:"size:120" json:"job_title,omitempty"`

	// Organization fields (corporate and some individual accounts)
	OrganizationName     *string           `gorm:"size:255;index:idx_accounts_organization_name" json:"organization_name,omitempty"`
	OrganizationType     *string           `gorm:"size:20;index:idx_accounts_organization_type" json:"organization_type,omitempty"`
	Portfolio            *PortfolioProfile `gorm:"type:jsonb;serializer:json" json:"portfolio,omitempty"`
	HasOtherAssociations *bool             `gorm:"default:false" json:"has_other_associations,omitempty"`
	PrimaryContact       *ContactInfo      `gorm:"type:jsonb;serializer:json" json:"primary_contact,omitempty"`
	RegisteredAddress    *Address          `gorm:"type:jsonb;serializer:json" json:"registered_address,omitempty"`
	BusinessAddress      *Address          `gorm:"type:jsonb;serializer:json" json:"business_address,omitempty"`
	LogoURL              *string           `gorm:"size:512" json:"logo_url,omitempty"`
	LinesOfBusiness      pq.StringArray    `gorm:"type:text[]" json:"lines_of_business,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID               *string
	MembershipType   *string
	Status           *string
	Email            *string
	OrganizationName *string
	OrganizationType *string
	NameContains     *string
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
}

// EffectiveMembershipType maps an empty membership type to individual.
func (a *Account) EffectiveMembershipType() string {
	if a.MembershipType == MembershipTypeCorporate {
		return MembershipTypeCorporate
	}
	return MembershipTypeIndividual
}

func (a *Account) IsCorporate() bool {
	return a.MembershipType == MembershipTypeCorporate
}

func (a *Account) IsIndividual() bool {
	return !a.IsCorporate()
}
