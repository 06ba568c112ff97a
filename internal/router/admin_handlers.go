package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"citytycoon-backend/internal/mapsvc"
	"citytycoon-backend/internal/model"
)

func registerAdminRoutes(g *gin.RouterGroup, d *Deps) {
	g.POST("/invitations", d.handleCreateInvitation)

	g.POST("/roles", d.handleCreateCustomRole)
	g.DELETE("/roles/:roleID", d.handleDeleteCustomRole)
	g.POST("/roles/:roleName/pages", d.handleGrantRolePage)
	g.DELETE("/roles/:roleName/pages/:page", d.handleRevokeRolePage)

	g.PUT("/tenants/:tenantID/pages", d.handleSetTenantPages)

	g.PUT("/users/:userID/permissions", d.handleSetUserPermission)

	g.POST("/maps", d.handleCreateMap)
	g.GET("/audit-log/:tenantID", d.handleListAuditLog)
}

type createInvitationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (d *Deps) handleCreateInvitation(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, username, and role are required")
		return
	}
	admin := CurrentUser(c)
	user, err := d.Auth.CreateInvitation(c.Request.Context(), req.Email, req.Username, model.Role(req.Role), admin.TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, user)
}

type createCustomRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

func (d *Deps) handleCreateCustomRole(c *gin.Context) {
	var req createCustomRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	admin := CurrentUser(c)
	role, err := d.Authz.CreateCustomRole(c.Request.Context(), admin.TenantID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, role)
}

func (d *Deps) handleDeleteCustomRole(c *gin.Context) {
	if err := d.Authz.DeleteCustomRole(c.Request.Context(), c.Param("roleID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

type grantRolePageRequest struct {
	Page string `json:"page" binding:"required"`
}

func (d *Deps) handleGrantRolePage(c *gin.Context) {
	var req grantRolePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "page is required")
		return
	}
	admin := CurrentUser(c)
	if err := d.Authz.GrantRolePage(c.Request.Context(), admin.TenantID, c.Param("roleName"), model.Page(req.Page)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"granted": true})
}

func (d *Deps) handleRevokeRolePage(c *gin.Context) {
	admin := CurrentUser(c)
	if err := d.Authz.RevokeRolePage(c.Request.Context(), admin.TenantID, c.Param("roleName"), model.Page(c.Param("page"))); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"revoked": true})
}

type setTenantPagesRequest struct {
	Pages map[string]bool `json:"pages" binding:"required"`
}

func (d *Deps) handleSetTenantPages(c *gin.Context) {
	var req setTenantPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "pages is required")
		return
	}
	pages := make(map[model.Page]bool, len(req.Pages))
	for k, v := range req.Pages {
		pages[model.Page(k)] = v
	}
	if err := d.Authz.SetTenantPages(c.Request.Context(), c.Param("tenantID"), pages); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"updated": true})
}

type setUserPermissionRequest struct {
	Name      string     `json:"name" binding:"required"`
	Granted   bool       `json:"granted"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (d *Deps) handleSetUserPermission(c *gin.Context) {
	var req setUserPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	var err error
	if req.Granted {
		err = d.Authz.GrantUserPermission(c.Request.Context(), c.Param("userID"), req.Name, req.ExpiresAt)
	} else {
		err = d.Authz.RevokeUserPermission(c.Request.Context(), c.Param("userID"), req.Name, req.ExpiresAt)
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"updated": true})
}

type createMapRequest struct {
	Country         string `json:"country" binding:"required"`
	Tier            string `json:"tier" binding:"required"`
	Width           int    `json:"width" binding:"required"`
	Height          int    `json:"height" binding:"required"`
	PoliceStrikeDay int    `json:"police_strike_day"`
}

func (d *Deps) handleCreateMap(c *gin.Context) {
	var req createMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "country, tier, width, and height are required")
		return
	}
	m, err := d.Maps.Create(c.Request.Context(), mapsvc.CreateInput{
		Country:         req.Country,
		Tier:            model.Tier(req.Tier),
		Width:           req.Width,
		Height:          req.Height,
		PoliceStrikeDay: req.PoliceStrikeDay,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, m)
}

func (d *Deps) handleListAuditLog(c *gin.Context) {
	entries, err := d.AuditLog.ListDisplay(c.Request.Context(), c.Param("tenantID"), 100)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}
