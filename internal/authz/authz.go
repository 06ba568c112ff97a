// Package authz implements the page-access resolution order of spec.md
// §4.9 and the management operations around it: custom roles, role-page
// grants, tenant-wide page enablement, and per-user permission overrides.
package authz

import (
	"context"
	"regexp"
	"strings"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// Service resolves page access and manages the authorization metadata it
// is computed from.
type Service struct {
	repo repository.AuthzRepository
}

func NewService(repo repository.AuthzRepository) *Service {
	return &Service{repo: repo}
}

// ResolvePages computes the set of pages a user may see, following the
// four-step order of spec.md §4.9.
func (s *Service) ResolvePages(ctx context.Context, u *model.User) (map[model.Page]bool, error) {
	accessible := map[model.Page]bool{}

	if u.Role == model.RoleMasterAdmin {
		for _, p := range model.BuiltInRolePages[model.RoleMasterAdmin] {
			accessible[p] = true
		}
		return accessible, nil
	}

	// Step 2: built-in pages for the role (admin gets the broad set; the
	// restrictive roles get their base set).
	for _, p := range model.BuiltInRolePages[u.Role] {
		accessible[p] = true
	}
	if u.Role == model.RoleAdmin {
		return accessible, nil // admin: full access within its own tenant
	}

	// Step 3: union (tenant-enabled pages) ∩ (role-assigned pages).
	tenantPages, err := s.repo.GetTenantPages(ctx, u.TenantID)
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	roleName := string(u.Role)
	if u.CustomRoleID != nil {
		// Custom roles are looked up by name, not id, for ListRolePages;
		// the caller is expected to have resolved CustomRoleID to a name
		// via GetCustomRole if it differs from u.Role's string form.
		roleName = string(u.Role)
	}
	rolePages, err := s.repo.ListRolePages(ctx, u.TenantID, roleName)
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	for _, p := range rolePages {
		if tenantPages.Pages[p] {
			accessible[p] = true
		}
	}

	// Step 4: master-admin-only pages never leak to non-master-admins.
	for p := range model.MasterAdminOnlyPages {
		delete(accessible, p)
	}

	return accessible, nil
}

// CanAccess is a convenience check for a single page.
func (s *Service) CanAccess(ctx context.Context, u *model.User, page model.Page) (bool, error) {
	pages, err := s.ResolvePages(ctx, u)
	if err != nil {
		return false, err
	}
	return pages[page], nil
}

var normalizeNonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeRoleName lowercases and strips non-alphanumeric characters, the
// normalization spec.md §4.9 requires for custom role names.
func NormalizeRoleName(name string) string {
	return normalizeNonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// CreateCustomRole provisions a tenant-scoped role. Names must not collide
// with a built-in role after normalization.
func (s *Service) CreateCustomRole(ctx context.Context, tenantID, name string) (*model.CustomRole, error) {
	normalized := NormalizeRoleName(name)
	if normalized == "" {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "role name must contain at least one alphanumeric character")
	}
	for _, builtIn := range []model.Role{model.RoleMasterAdmin, model.RoleAdmin, model.RoleAnalyst, model.RoleViewer, model.RoleUser} {
		if normalized == string(builtIn) {
			return nil, gameerrors.Precondition("role name %q collides with a built-in role", normalized)
		}
	}
	r := &model.CustomRole{TenantID: tenantID, Name: normalized}
	if err := s.repo.CreateCustomRole(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteCustomRole removes a custom role. Built-in roles are never passed
// here — callers enforce that a role id actually names a CustomRole row.
func (s *Service) DeleteCustomRole(ctx context.Context, id string) error {
	return s.repo.DeleteCustomRole(ctx, id)
}

// GrantRolePage and RevokeRolePage manage which pages a role (built-in or
// custom) sees once unioned against the tenant's enabled-page set.
func (s *Service) GrantRolePage(ctx context.Context, tenantID, roleName string, page model.Page) error {
	return s.repo.GrantRolePage(ctx, model.RolePageAccess{TenantID: tenantID, RoleName: roleName, Page: page})
}

func (s *Service) RevokeRolePage(ctx context.Context, tenantID, roleName string, page model.Page) error {
	return s.repo.RevokeRolePage(ctx, model.RolePageAccess{TenantID: tenantID, RoleName: roleName, Page: page})
}

// SetTenantPages is the master-admin-only step 3(a) control: which pages
// exist at all for a tenant, independent of per-role grants.
func (s *Service) SetTenantPages(ctx context.Context, tenantID string, pages map[model.Page]bool) error {
	return s.repo.SetTenantPages(ctx, model.CompanyAvailablePages{TenantID: tenantID, Pages: pages})
}

// GrantUserPermission and RevokeUserPermission set a time-limited override
// outside of the role model (spec.md §4.9's fifth bullet).
func (s *Service) GrantUserPermission(ctx context.Context, userID, name string, expiresAt *time.Time) error {
	return s.repo.SetUserPermission(ctx, model.UserPermission{UserID: userID, Name: name, Granted: true, ExpiresAt: expiresAt})
}

func (s *Service) RevokeUserPermission(ctx context.Context, userID, name string, expiresAt *time.Time) error {
	return s.repo.SetUserPermission(ctx, model.UserPermission{UserID: userID, Name: name, Granted: false, ExpiresAt: expiresAt})
}

// HasPermission checks an active per-user override, returning (granted,
// found). found is false when no override exists or it has expired.
func (s *Service) HasPermission(ctx context.Context, userID, name string) (granted bool, found bool, err error) {
	perms, err := s.repo.ListUserPermissions(ctx, userID)
	if err != nil {
		return false, false, gameerrors.Internal(err)
	}
	now := time.Now().UTC()
	for _, p := range perms {
		if p.Name == name && p.Active(now) {
			return p.Granted, true, nil
		}
	}
	return false, false, nil
}
