package model

import "time"

// Page identifies a gated dashboard page/permission surface.
type Page string

// CustomRole is a tenant-scoped role inheriting the restrictive page-access
// model (spec.md §4.9). Names are normalized (lowercased, non-alphanumerics
// stripped) and must not collide with built-in role names.
type CustomRole struct {
	ID       string
	TenantID string
	Name     string
}

// RolePageAccess grants a role (built-in or custom) access to a page,
// scoped to a tenant.
type RolePageAccess struct {
	TenantID string
	RoleName string // either a Role value or a CustomRole.Name
	Page     Page
}

// CompanyAvailablePages lists which pages a tenant's master-admin has
// enabled for the tenant at all — step 3(a) of the resolution order in
// spec.md §4.9.
type CompanyAvailablePages struct {
	TenantID string
	Pages    map[Page]bool
}

// UserPermission is a time-limited per-user override that grants or
// revokes a named capability outside of the role model.
type UserPermission struct {
	UserID    string
	Name      string
	Granted   bool // true = grant, false = explicit revoke
	ExpiresAt *time.Time
}

// Active reports whether the override is still in force.
func (p *UserPermission) Active(now time.Time) bool {
	return p.ExpiresAt == nil || now.Before(*p.ExpiresAt)
}

// MasterAdminOnlyPages are subtracted from non-master-admin users in the
// final step of page-access resolution (spec.md §4.9 step 4).
var MasterAdminOnlyPages = map[Page]bool{
	"platform_billing": true,
	"tenant_management": true,
}

// BuiltInRolePages are the broad built-ins for master_admin/admin and the
// base set for the restrictive roles (spec.md §4.9 step 2).
var BuiltInRolePages = map[Role][]Page{
	RoleMasterAdmin: {"dashboard", "game", "admin", "tenant_management", "platform_billing", "audit_log"},
	RoleAdmin:       {"dashboard", "game", "admin", "audit_log"},
	RoleAnalyst:     {"dashboard", "game"},
	RoleViewer:      {"dashboard"},
	RoleUser:        {"dashboard", "game"},
}
