package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAccessLevel(t *testing.T) {
	member := func(status string) *UnifiedMember {
		return &UnifiedMember{ID: "m-1", Status: status}
	}

	tests := []struct {
		name    string
		member  *UnifiedMember
		level   AccessLevel
		granted bool
	}{
		{"guest for anonymous", nil, AccessLevelGuest, true},
		{"guest for any status", member(StatusRejected), AccessLevelGuest, true},
		{"member for approved", member(StatusApproved), AccessLevelMember, true},
		{"member for admin status", member(StatusAdmin), AccessLevelMember, true},
		{"member denied for pending", member(StatusPending), AccessLevelMember, false},
		{"member denied for guest status", member(StatusGuest), AccessLevelMember, false},
		{"member denied for pending_payment", member(StatusPendingPayment), AccessLevelMember, false},
		{"member denied for anonymous", nil, AccessLevelMember, false},
		{"admin for admin status", member(StatusAdmin), AccessLevelAdmin, true},
		{"admin denied for approved", member(StatusApproved), AccessLevelAdmin, false},
		{"admin denied for anonymous", nil, AccessLevelAdmin, false},
		{"unknown level denied", member(StatusAdmin), AccessLevel("owner"), false},
		{"unknown status denied member", member("mystery"), AccessLevelMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.granted, HasAccessLevel(tt.member, tt.level))
		})
	}
}
