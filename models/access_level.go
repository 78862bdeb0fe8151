package models

// AccessLevel is a portal capability tier checked against a resolved member's
// status. Levels are not a strict ladder; each is evaluated on its own rule.
type AccessLevel string

const (
	AccessLevelGuest  AccessLevel = "guest"
	AccessLevelMember AccessLevel = "member"
	AccessLevelAdmin  AccessLevel = "admin"
)

// HasAccessLevel reports whether the member clears the given capability tier.
// A nil member is an anonymous visitor: guest access only. Unknown levels and
// unknown statuses deny.
func HasAccessLevel(m *UnifiedMember, level AccessLevel) bool {
	if level == AccessLevelGuest {
		return true
	}
	if m == nil {
		return false
	}
	switch level {
	case AccessLevelMember:
		return m.Status == StatusApproved || m.Status == StatusAdmin
	case AccessLevelAdmin:
		return m.Status == StatusAdmin
	}
	return false
}
