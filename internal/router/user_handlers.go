package router

import (
	"github.com/gin-gonic/gin"
)

func registerUserRoutes(g *gin.RouterGroup, d *Deps) {
	g.GET("/me", d.handleGetMe)
	g.GET("/me/game-companies", d.handleListMyCompanies)
}

func (d *Deps) handleGetMe(c *gin.Context) {
	user := CurrentUser(c)
	pages, err := d.Authz.ResolvePages(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"role":       user.Role,
		"tenant_id":  user.TenantID,
		"verified":   user.Verified,
		"totp_on":    user.TOTPEnabled,
		"pages":      pages,
	})
}
