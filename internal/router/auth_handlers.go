package router

import (
	"github.com/gin-gonic/gin"
)

func registerAuthRoutes(g *gin.RouterGroup, d *Deps, authLimit gin.HandlerFunc) {
	a := g.Group("/auth")
	a.Use(authLimit)

	a.POST("/login", d.handleLogin)
	a.POST("/two-factor", d.handleTwoFactor)
	a.POST("/magic-link", d.handleRequestMagicLink)
	a.GET("/magic-link/verify", d.handleVerifyMagicLinkToken)
	a.POST("/magic-link/verify-code", d.handleVerifyMagicLinkCode)
	a.POST("/invitations/accept", d.handleAcceptInvitation)

	authed := a.Group("")
	authed.Use(d.AuthRequired)
	authed.POST("/logout", d.handleLogout)
	authed.POST("/totp/enroll", d.handleTOTPEnroll)
	authed.POST("/totp/verify-setup", d.handleTOTPVerifySetup)
	authed.POST("/totp/disable", d.handleTOTPDisable)
	authed.POST("/switch-company", d.handleSwitchCompany)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (d *Deps) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	result, err := d.Auth.PasswordLogin(c.Request.Context(), req.Email, req.Password,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type twoFactorRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

func (d *Deps) handleTwoFactor(c *gin.Context) {
	var req twoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id and code are required")
		return
	}
	result, err := d.Auth.CompleteTwoFactor(c.Request.Context(), req.UserID, req.Code,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (d *Deps) handleRequestMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email is required")
		return
	}
	if err := d.Auth.RequestMagicLink(c.Request.Context(), req.Email, c.ClientIP()); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"sent": true})
}

func (d *Deps) handleVerifyMagicLinkToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		badRequest(c, "token query parameter is required")
		return
	}
	result, err := d.Auth.VerifyMagicLinkToken(c.Request.Context(), token,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (d *Deps) handleVerifyMagicLinkCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and code are required")
		return
	}
	result, err := d.Auth.VerifyMagicLinkCode(c.Request.Context(), req.Email, req.Code,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type acceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

func (d *Deps) handleAcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}
	result, err := d.Auth.AcceptInvitation(c.Request.Context(), req.Token,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, result)
}

func (d *Deps) handleLogout(c *gin.Context) {
	token := bearerToken(c)
	if err := d.Auth.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"loggedOut": true})
}

func (d *Deps) handleTOTPEnroll(c *gin.Context) {
	user := CurrentUser(c)
	secret, codes, err := d.Auth.EnrollTOTP(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"secret": secret, "recovery_codes": codes})
}

func (d *Deps) handleTOTPVerifySetup(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code is required")
		return
	}
	user := CurrentUser(c)
	if err := d.Auth.VerifyTOTPSetup(c.Request.Context(), user.ID, req.Code); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"enabled": true})
}

func (d *Deps) handleTOTPDisable(c *gin.Context) {
	user := CurrentUser(c)
	if err := d.Auth.DisableTOTP(c.Request.Context(), user.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"disabled": true})
}

func (d *Deps) handleSwitchCompany(c *gin.Context) {
	var req struct {
		CompanyID string `json:"company_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "company_id is required")
		return
	}
	result, err := d.Auth.SwitchCompany(c.Request.Context(), bearerToken(c), req.CompanyID,
		c.Request.UserAgent(), c.ClientIP(), c.GetHeader("X-Device-Fingerprint"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}
