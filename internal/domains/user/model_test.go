package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities(t *testing.T) {
	cases := []struct {
		cap     Capability
		allowed []Role
	}{
		{CapManageTours, []Role{RoleAdmin, RoleLeadGuide}},
		{CapViewMonthlyPlan, []Role{RoleAdmin, RoleLeadGuide, RoleGuide}},
		{CapWriteReview, []Role{RoleUser}},
		{CapEditReview, []Role{RoleUser, RoleAdmin}},
		{CapManageUsers, []Role{RoleAdmin}},
	}

	for _, tc := range cases {
		for _, role := range AllRoles() {
			assert.Equal(t, role.In(tc.allowed...), role.Can(tc.cap), "%s / %d", role, tc.cap)
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("lead-guide")
	assert.NoError(t, err)
	assert.Equal(t, RoleLeadGuide, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(issued))

	same := issued.Add(500 * time.Millisecond)
	u.PasswordChangedAt = &same
	assert.False(t, u.ChangedPasswordAfter(issued), "same second is not after")

	later := issued.Add(2 * time.Second)
	u.PasswordChangedAt = &later
	assert.True(t, u.ChangedPasswordAfter(issued))
}
