package router

import (
	"github.com/gin-gonic/gin"
)

func registerTenantRoutes(g *gin.RouterGroup, d *Deps) {
	g.GET("/:tenantID", d.handleGetTenant)
	g.GET("/:tenantID/users", d.handleListTenantUsers)
}

func (d *Deps) handleGetTenant(c *gin.Context) {
	tenant, err := d.Tenants.Get(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tenant)
}

func (d *Deps) handleListTenantUsers(c *gin.Context) {
	users, err := d.Users.ListByTenant(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, users)
}
