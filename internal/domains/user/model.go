package user

import (
	"time"

	"github.com/google/uuid"
)

// User maps 1:1 onto the users table.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
	Photo string    `db:"photo" json:"photo"`
	Role  Role      `db:"role" json:"role"`

	// Never serialized.
	PasswordHash         string     `db:"password" json:"-"`
	PasswordChangedAt    *time.Time `db:"password_changed_at" json:"-"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
	Active               bool       `db:"active" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at issuedAt. Both sides are compared at second precision, the
// resolution of the token's iat claim.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// Profile is the public projection embedded in other entities
// (tour guides, review authors).
type Profile struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email,omitempty"`
	Photo string    `db:"photo" json:"photo"`
	Role  Role      `db:"role" json:"role,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Photo: u.Photo, Role: u.Role}
}

// Role is a closed set; anything else fails ParseRole.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

func AllRoles() []Role {
	return []Role{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin}
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Capability names an action gated by role.
type Capability int

const (
	CapManageTours Capability = iota
	CapViewMonthlyPlan
	CapWriteReview
	CapEditReview
	CapManageUsers
)

var capabilityRoles = map[Capability][]Role{
	CapManageTours:     {RoleAdmin, RoleLeadGuide},
	CapViewMonthlyPlan: {RoleAdmin, RoleLeadGuide, RoleGuide},
	CapWriteReview:     {RoleUser},
	CapEditReview:      {RoleUser, RoleAdmin},
	CapManageUsers:     {RoleAdmin},
}

// Roles returns the roles granted the capability.
func (c Capability) Roles() []Role {
	return capabilityRoles[c]
}

// Can is the single authorization check used by the route gates.
func (r Role) Can(c Capability) bool {
	return r.In(c.Roles()...)
}
