package model

import "time"

// Role is a built-in authorization role. Custom roles are represented
// separately (see CustomRole) and are tenant-scoped.
type Role string

const (
	RoleMasterAdmin Role = "master_admin"
	RoleAdmin       Role = "admin"
	RoleAnalyst     Role = "analyst"
	RoleViewer      Role = "viewer"
	RoleUser        Role = "user"
)

// IsBuiltIn reports whether r names one of the five roles that cannot be
// deleted, renamed, or shadowed by a custom role (spec.md §4.9).
func (r Role) IsBuiltIn() bool {
	switch r {
	case RoleMasterAdmin, RoleAdmin, RoleAnalyst, RoleViewer, RoleUser:
		return true
	default:
		return false
	}
}

// User is an identity plus credential state, scoped to at most one Tenant.
type User struct {
	ID             string
	Email          string
	Username       string
	HashedPassword string
	Role           Role
	CustomRoleID   *string // set when Role doesn't name a built-in
	TenantID       string

	MagicLinkToken   *string
	MagicLinkCode    *string
	MagicLinkExpiry  *time.Time

	TOTPSecret       *string
	TOTPRecoveryCodes []string
	TOTPEnabled      bool

	InvitationToken  *string
	InvitationExpiry *time.Time

	Verified  bool
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the user may authenticate: not soft-deleted.
func (u *User) IsActive() bool {
	return u.DeletedAt == nil
}

// RequiresTwoFactor reports whether a successful password check must still
// be followed by a TOTP challenge before a session is issued.
func (u *User) RequiresTwoFactor() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
